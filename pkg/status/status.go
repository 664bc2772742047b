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

package status

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileState is where a file is in the translation pipeline
type FileState int

const (
	StatePending    FileState = iota
	StateReading              // Source is being read
	StateGenerating           // Chunks are being sent to the backend
	StateWritten              // Destination is complete
	StateFailed               // Source read or generation failed
	StateSkipped              // Destination appeared before it could be created
	StateCancelled            // Run was stopped while this file was in progress
)

// String returns a string representation of FileState
func (s FileState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReading:
		return "reading"
	case StateGenerating:
		return "generating"
	case StateWritten:
		return "written"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed
func (s FileState) Terminal() bool {
	switch s {
	case StateWritten, StateFailed, StateSkipped, StateCancelled:
		return true
	}
	return false
}

// ErrInvalidTransition is returned for moves the state machine does not allow
var ErrInvalidTransition = errors.Base("invalid state transition")

var transitions = map[FileState][]FileState{
	StatePending:    {StateReading, StateCancelled},
	StateReading:    {StateGenerating, StateWritten, StateFailed, StateSkipped, StateCancelled},
	StateGenerating: {StateGenerating, StateWritten, StateFailed, StateCancelled},
}

// CanTransition reports whether from may move to to
func CanTransition(from, to FileState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 📄 FileInfo is the tracked state of one file
type FileInfo struct {
	Path   string    // Relative source path
	State  FileState // Current state
	Chunk  int       // Chunk being generated, zero based
	Chunks int       // Total chunks
	Err    error     // Error that moved the file to failed or skipped
}

// 📈 Tracker records the state of every file in a run and reports each change
type Tracker struct {
	formatter FileFormatter
	reporter  Reporter

	mu    sync.RWMutex
	files map[string]*FileInfo
	order []string
}

// 🏭 NewTracker creates a tracker. A nil reporter discards progress.
func NewTracker(reporter Reporter) *Tracker {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Tracker{
		formatter: NewDefaultFileFormatter(),
		reporter:  reporter,
		files:     make(map[string]*FileInfo),
	}
}

// Start registers paths as pending and starts progress reporting
func (t *Tracker) Start(ctx context.Context, paths []string) {
	t.mu.Lock()
	for _, p := range paths {
		if _, ok := t.files[p]; !ok {
			t.order = append(t.order, p)
		}
		t.files[p] = &FileInfo{Path: p, State: StatePending}
	}
	t.mu.Unlock()

	zerolog.Ctx(ctx).Info().Int("total", len(paths)).Msg(t.formatter.FormatProgress(0, len(paths)))
	t.reporter.Start(len(paths))
}

// 🔄 Transition moves path to state. err is recorded for failed and skipped files.
func (t *Tracker) Transition(ctx context.Context, path string, to FileState, err error) error {
	t.mu.Lock()
	info, ok := t.files[path]
	if !ok {
		t.mu.Unlock()
		return errors.Errorf("file not tracked: %s", path)
	}
	from := info.State
	if !CanTransition(from, to) {
		t.mu.Unlock()
		return errors.Errorf("%s: %s -> %s: %w", path, from, to, ErrInvalidTransition)
	}
	info.State = to
	if err != nil {
		info.Err = err
	}
	snapshot := *info
	t.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	msg := t.formatter.FormatFileOperation(path, to, snapshot.Chunk, snapshot.Chunks)
	switch to {
	case StateFailed:
		logger.Error().Err(err).Str("path", path).Msg(msg)
	case StateSkipped, StateCancelled:
		logger.Warn().Err(err).Str("path", path).Msg(msg)
	case StateWritten:
		logger.Info().Str("path", path).Msg(msg)
	default:
		logger.Debug().Str("path", path).Msg(msg)
	}

	if to.Terminal() {
		t.reporter.Step(path, to)
	}
	return nil
}

// Progress records chunk progress for a file that is generating
func (t *Tracker) Progress(ctx context.Context, path string, chunk, chunks int) {
	t.mu.Lock()
	if info, ok := t.files[path]; ok {
		info.Chunk = chunk
		info.Chunks = chunks
	}
	t.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("chunk", chunk+1).
		Int("chunks", chunks).
		Msg(t.formatter.FormatChunk(path, chunk, chunks))
}

// Finish stops progress reporting and logs the totals
func (t *Tracker) Finish(ctx context.Context) {
	counts := t.Counts()
	done := 0
	for s, n := range counts {
		if s.Terminal() {
			done += n
		}
	}
	total := t.Len()

	t.reporter.Finish()
	zerolog.Ctx(ctx).Info().
		Int("processed", done).
		Int("total", total).
		Int("written", counts[StateWritten]).
		Int("failed", counts[StateFailed]).
		Int("skipped", counts[StateSkipped]).
		Int("cancelled", counts[StateCancelled]).
		Msg(t.formatter.FormatProgress(done, total))
}

// Get returns the tracked state of path
func (t *Tracker) Get(path string) (FileInfo, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, ok := t.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return *info, nil
}

// List returns every tracked file in registration order
func (t *Tracker) List() []FileInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]FileInfo, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, *t.files[p])
	}
	return out
}

// Len returns the number of tracked files
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// Counts returns the number of files in each state
func (t *Tracker) Counts() map[FileState]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[FileState]int)
	for _, info := range t.files {
		out[info.State]++
	}
	return out
}

// States lists every state, in pipeline order
func States() []FileState {
	return []FileState{StatePending, StateReading, StateGenerating, StateWritten, StateFailed, StateSkipped, StateCancelled}
}
