package operation

import (
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/status"
)

// 📋 Outcome is the result of one file
type Outcome struct {
	Entry mapping.FileEntry
	State status.FileState
	// Chunks is the number of chunks the file was split into
	Chunks int
	// Generated is the number of chunks whose output reached the destination
	Generated int
	// Written is the number of bytes written to the destination
	Written int
	Err     error
}

// 📊 Report summarizes a run
type Report struct {
	Outcomes []Outcome
	// Done lists entries skipped because their destination already existed
	Done []mapping.FileEntry
}

// Count returns the number of outcomes in state
func (r *Report) Count(state status.FileState) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Written returns the number of files written in this run
func (r *Report) Written() int { return r.Count(status.StateWritten) }

// Failures returns the failed outcomes in run order
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State == status.StateFailed {
			out = append(out, o)
		}
	}
	return out
}

// Err joins the errors of every failed file, nil when none failed
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failures() {
		errs = append(errs, o.Err)
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
