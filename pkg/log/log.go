// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/translaterc/pkg/status"
)

// 🎯 FileOperation is one file line of console output
type FileOperation struct {
	Path        string           // Source path relative to the source root
	Destination string           // Destination path
	State       status.FileState // Final or current state
	Chunks      int              // Number of chunks
	Err         error            // Failure or skip reason
}

// 📦 RunOperation describes the run being logged
type RunOperation struct {
	SourceRoot      string
	DestinationRoot string
	Provider        string
	Model           string
}

// 📊 Summary is the tally printed when a run ends
type Summary struct {
	Written   int
	Failed    int
	Skipped   int
	Cancelled int
	Done      int // already present before the run
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentRun *RunOperation
	operations []FileOperation
}

// 🏭 New creates a logger printing to console and mirroring to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or one that discards output
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, zerolog.Nop())
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogFileOperation prints one file line
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	line := status.FormatFileLine(op.Path, op.Destination, op.State)
	if op.Err != nil {
		line += color.New(color.Faint).Sprint(op.Err.Error())
	}
	fmt.Fprintln(l.console, line)

	ev := l.zlog.Info()
	if op.State == status.StateFailed {
		ev = l.zlog.Error()
	}
	ev.Str("file", op.Path).
		Str("destination", op.Destination).
		Str("state", op.State.String()).
		Int("chunks", op.Chunks).
		AnErr("reason", op.Err).
		Msg("file operation")
}

// 📝 StartRunOperation prints the run header
func (l *Logger) StartRunOperation(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRun = &op
	l.operations = nil

	fmt.Fprintf(l.console, "[translating %s]\n",
		color.New(color.FgCyan).Sprint(op.DestinationRoot))

	backend := op.Provider
	if op.Model != "" {
		backend += "/" + op.Model
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.SourceRoot),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(backend))

	l.zlog.Info().
		Str("source", op.SourceRoot).
		Str("destination", op.DestinationRoot).
		Str("provider", op.Provider).
		Str("model", op.Model).
		Msg("starting translation run")
}

// 📝 EndRunOperation prints the summary of the current run
func (l *Logger) EndRunOperation(ctx context.Context, s Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentRun == nil {
		return
	}

	fmt.Fprintf(l.console, "\n%s written, %s failed, %s skipped, %s cancelled, %s already done\n",
		color.GreenString("%d", s.Written),
		color.RedString("%d", s.Failed),
		color.CyanString("%d", s.Skipped),
		color.MagentaString("%d", s.Cancelled),
		color.New(color.Faint).Sprintf("%d", s.Done))

	l.zlog.Info().
		Str("source", l.currentRun.SourceRoot).
		Int("files", len(l.operations)).
		Int("written", s.Written).
		Int("failed", s.Failed).
		Int("skipped", s.Skipped).
		Int("cancelled", s.Cancelled).
		Int("done", s.Done).
		Msg("translation run complete")

	l.currentRun = nil
	l.operations = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("translaterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}
