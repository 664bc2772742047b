package status

import (
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// 📈 Reporter displays run progress, one step per finished file
type Reporter interface {
	Start(total int)
	Step(path string, state FileState)
	Finish()
}

// NopReporter discards progress
type NopReporter struct{}

func (NopReporter) Start(int) {}

func (NopReporter) Step(string, FileState) {}

func (NopReporter) Finish() {}

// 📊 BarReporter draws a pterm progress bar
type BarReporter struct {
	w     io.Writer
	title string

	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

// NewBarReporter returns a progress bar writing to w
func NewBarReporter(w io.Writer, title string) *BarReporter {
	return &BarReporter{w: w, title: title}
}

func (r *BarReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if total == 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(r.title).
		WithWriter(r.w).
		WithRemoveWhenDone(false).
		Start()
	if err != nil {
		return
	}
	r.bar = bar
}

func (r *BarReporter) Step(path string, state FileState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}
	r.bar.UpdateTitle(fmt.Sprintf("%s %s", state, path))
	r.bar.Increment()
}

func (r *BarReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}
	_, _ = r.bar.Stop()
	r.bar = nil
}

// RecordingReporter keeps every step, for tests and summaries
type RecordingReporter struct {
	mu     sync.Mutex
	Total  int
	Steps  []string
	Closed bool
}

func (r *RecordingReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Total = total
}

func (r *RecordingReporter) Step(path string, state FileState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps = append(r.Steps, fmt.Sprintf("%s:%s", state, path))
}

func (r *RecordingReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
}
