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

package operation

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/chunk"
	"github.com/walteh/translaterc/pkg/generate"
	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/prompt"
	"github.com/walteh/translaterc/pkg/resume"
	"github.com/walteh/translaterc/pkg/rewrite"
	"github.com/walteh/translaterc/pkg/status"
)

// 🧹 LineFilter drops source lines before they are chunked
type LineFilter interface {
	Filter(lines []string) []string
}

// 🔄 Replacer rewrites generated text before it is written. path is the
// destination relative to the destination root, slash separated.
type Replacer interface {
	Replace(path, s string) (string, int)
}

// 🔧 Options contains configuration for the orchestrator
type Options struct {
	// Builder renders one request per chunk
	Builder *prompt.Builder
	// Client is the generation backend
	Client generate.Client
	// Files reads sources and creates destinations
	Files status.FileManager
	// Tracker records per-file state. A silent tracker is used when nil.
	Tracker *status.Tracker
	// Hinter adds per-file instruction lines
	Hinter prompt.Hinter
	// LineFilter strips source lines before chunking
	LineFilter LineFilter
	// Replacer rewrites generated text
	Replacer Replacer
	// ChunkSize is the number of lines per request, chunk.DefaultSize when zero
	ChunkSize int
	// CarryContext sends earlier chunks of the same file as conversation history
	CarryContext bool
	// CallTimeout bounds each backend call when positive
	CallTimeout time.Duration
	// TranscriptDir receives one JSON chat transcript per file when set
	TranscriptDir string
	// Model labels transcripts
	Model string
}

// 🏭 New creates a new orchestrator with the given options
func New(opts Options) (*Orchestrator, error) {
	if opts.Builder == nil {
		return nil, errors.Errorf("builder is required")
	}
	if opts.Client == nil {
		return nil, errors.Errorf("client is required")
	}
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if opts.ChunkSize < 0 {
		return nil, errors.Errorf("chunk size %d: %w", opts.ChunkSize, chunk.ErrInvalidChunkSize)
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = chunk.DefaultSize
	}
	if opts.CallTimeout < 0 {
		return nil, errors.Errorf("call timeout must not be negative")
	}
	if opts.Tracker == nil {
		opts.Tracker = status.NewTracker(nil)
	}
	return &Orchestrator{opts: opts}, nil
}

// 🎮 Orchestrator translates every pending file of a mapping, one file and one
// chunk at a time
type Orchestrator struct {
	opts Options
}

// Pending splits m into files still to translate and files already written
func (o *Orchestrator) Pending(ctx context.Context, m *mapping.FileMapping) (*resume.Result, error) {
	res, err := resume.FilterPending(ctx, m, o.opts.Files)
	if err != nil {
		return nil, errors.Errorf("filtering finished files: %w", err)
	}
	return res, nil
}

// 🚀 Run translates every entry of m whose destination does not exist yet.
// A failing file never stops the run. When ctx is cancelled the remaining files
// are marked cancelled and the returned error wraps the context error.
func (o *Orchestrator) Run(ctx context.Context, m *mapping.FileMapping) (*Report, error) {
	logger := zerolog.Ctx(ctx)

	res, err := o.Pending(ctx, m)
	if err != nil {
		return nil, err
	}

	report := &Report{Done: res.Done}
	entries := res.Pending.Entries()
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Rel
	}

	logger.Debug().
		Int("pending", len(entries)).
		Int("done", len(res.Done)).
		Msg("starting translation run")

	o.opts.Tracker.Start(ctx, paths)
	defer o.opts.Tracker.Finish(ctx)

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			for _, rest := range entries[i:] {
				o.transition(ctx, rest, status.StateCancelled, err)
				report.Outcomes = append(report.Outcomes, Outcome{Entry: rest, State: status.StateCancelled, Err: err})
			}
			break
		}
		report.Outcomes = append(report.Outcomes, o.translate(ctx, res.Pending.DestinationRoot, e))
	}

	if err := ctx.Err(); err != nil {
		return report, errors.Errorf("run cancelled: %w", err)
	}
	return report, nil
}

// fileRun is the per-file working state
type fileRun struct {
	entry      mapping.FileEntry
	destRel    string
	out        Outcome
	w          io.WriteCloser
	transcript *Transcript
}

func (o *Orchestrator) translate(ctx context.Context, destRoot string, e mapping.FileEntry) Outcome {
	f := &fileRun{entry: e, destRel: destinationRel(destRoot, e.Destination), out: Outcome{Entry: e}}
	if o.opts.TranscriptDir != "" {
		f.transcript = o.newTranscript(e)
	}

	o.transition(ctx, e, status.StateReading, nil)

	data, err := o.opts.Files.ReadFile(ctx, e.Source)
	if err != nil {
		return o.fail(ctx, f, &SourceReadError{Path: e.Source, Err: err})
	}

	w, err := o.opts.Files.Create(ctx, e.Destination)
	if err != nil {
		if errors.Is(err, status.ErrExists) {
			conflict := &DestinationConflictError{Path: e.Destination, Err: err}
			f.out.State = status.StateSkipped
			f.out.Err = conflict
			o.transition(ctx, e, status.StateSkipped, conflict)
			return f.out
		}
		return o.fail(ctx, f, &DestinationWriteError{Path: e.Destination, Err: err})
	}
	f.w = w

	if e.Role == rewrite.RoleAuxiliary {
		if err := f.write(string(data)); err != nil {
			return o.fail(ctx, f, err)
		}
		return o.finish(ctx, f)
	}

	lines, err := chunk.ReadLines(bytes.NewReader(data))
	if err != nil {
		return o.fail(ctx, f, &SourceReadError{Path: e.Source, Err: err})
	}
	if o.opts.LineFilter != nil {
		lines = o.opts.LineFilter.Filter(lines)
	}

	var hints []string
	if o.opts.Hinter != nil {
		hints = o.opts.Hinter.Hints(e.Rel)
	}

	header := prompt.Provenance(o.opts.Builder.Template(), hints, filepath.Ext(e.Destination))
	if err := f.write(header); err != nil {
		return o.fail(ctx, f, err)
	}

	chunks, err := chunk.Split(lines, o.opts.ChunkSize)
	if err != nil {
		return o.fail(ctx, f, err)
	}
	f.out.Chunks = chunk.Count(len(lines), o.opts.ChunkSize)

	o.transition(ctx, e, status.StateGenerating, nil)

	var history []generate.Message
	for c := range chunks {
		if ctx.Err() != nil {
			return o.cancel(ctx, f)
		}
		o.opts.Tracker.Progress(ctx, e.Rel, c.Index, f.out.Chunks)

		req := o.opts.Builder.Render(c.Text(), hints, history)
		results, err := o.call(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return o.cancel(ctx, f)
			}
			f.recordChat(req.Messages, "")
			return o.fail(ctx, f, &GenerationError{Path: e.Source, Chunk: c.Index, Err: err})
		}

		var text strings.Builder
		for _, r := range results {
			out := r.GeneratedText
			if o.opts.Replacer != nil {
				out, _ = o.opts.Replacer.Replace(f.destRel, out)
			}
			text.WriteString(out)
		}
		if err := f.write(text.String()); err != nil {
			return o.fail(ctx, f, err)
		}
		f.recordChat(req.Messages, text.String())
		f.out.Generated++

		if o.opts.CarryContext {
			history = append(history,
				generate.Message{Role: generate.RoleUser, Content: c.Text()},
				generate.Message{Role: generate.RoleAssistant, Content: text.String()},
			)
		}
	}

	return o.finish(ctx, f)
}

// destinationRel returns dest relative to root in slash form. A destination
// outside root is returned whole.
func destinationRel(root, dest string) string {
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(dest)
	}
	return filepath.ToSlash(rel)
}

func (o *Orchestrator) call(ctx context.Context, req generate.Request) ([]generate.Result, error) {
	if o.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
	}
	return o.opts.Client.Generate(ctx, req)
}

func (f *fileRun) write(s string) error {
	n, err := io.WriteString(f.w, s)
	f.out.Written += n
	if err != nil {
		return &DestinationWriteError{Path: f.entry.Destination, Err: err}
	}
	return nil
}

func (f *fileRun) recordChat(msgs []generate.Message, reply string) {
	if f.transcript == nil {
		return
	}
	f.transcript.Chat = append(f.transcript.Chat, msgs[len(msgs)-1])
	if reply != "" {
		f.transcript.Chat = append(f.transcript.Chat, generate.Message{Role: generate.RoleAssistant, Content: reply})
	}
}

func (f *fileRun) close() error {
	if f.w == nil {
		return nil
	}
	w := f.w
	f.w = nil
	if err := w.Close(); err != nil {
		return &DestinationWriteError{Path: f.entry.Destination, Err: err}
	}
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, f *fileRun) Outcome {
	if err := f.close(); err != nil {
		return o.fail(ctx, f, err)
	}
	f.out.State = status.StateWritten
	o.transition(ctx, f.entry, status.StateWritten, nil)
	o.saveTranscript(ctx, f)
	return f.out
}

// fail leaves any partial destination in place
func (o *Orchestrator) fail(ctx context.Context, f *fileRun, err error) Outcome {
	if cerr := f.close(); cerr != nil {
		zerolog.Ctx(ctx).Warn().Err(cerr).Str("path", f.entry.Destination).Msg("closing partial destination")
	}
	f.out.State = status.StateFailed
	f.out.Err = err
	o.transition(ctx, f.entry, status.StateFailed, err)
	o.saveTranscript(ctx, f)
	return f.out
}

// cancel removes the partial destination so the next run retries the file
func (o *Orchestrator) cancel(ctx context.Context, f *fileRun) Outcome {
	logger := zerolog.Ctx(ctx)
	if err := f.close(); err != nil {
		logger.Warn().Err(err).Str("path", f.entry.Destination).Msg("closing partial destination")
	}
	// ctx is done, so cleanup runs without it
	if err := o.opts.Files.Remove(context.WithoutCancel(ctx), f.entry.Destination); err != nil {
		logger.Error().Err(err).Str("path", f.entry.Destination).Msg("removing partial destination")
	}
	f.out.State = status.StateCancelled
	f.out.Err = ctx.Err()
	o.transition(ctx, f.entry, status.StateCancelled, ctx.Err())
	return f.out
}

func (o *Orchestrator) transition(ctx context.Context, e mapping.FileEntry, to status.FileState, err error) {
	if terr := o.opts.Tracker.Transition(ctx, e.Rel, to, err); terr != nil {
		zerolog.Ctx(ctx).Debug().Err(terr).Str("path", e.Rel).Msg("untracked transition")
	}
}
