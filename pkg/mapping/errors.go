package mapping

import (
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/rewrite"
)

var (
	// ErrClassification marks a matched file with no applicable rewrite rule.
	ErrClassification = errors.Base("classification failed")
	// ErrLengthMismatch marks source and destination lists that diverged.
	ErrLengthMismatch = errors.Base("source and destination lists differ in length")
	// ErrDestinationCollision marks two sources that rewrite to the same destination.
	ErrDestinationCollision = errors.Base("destination collision")
)

// ❌ ClassificationError is returned when a manifest-matched file has an extension
// outside the table for its role. It is fatal to mapping construction.
type ClassificationError struct {
	Path string
	Ext  string
	Role rewrite.Role
	Err  error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s %s: extension %q not recognized", e.Role, e.Path, e.Ext)
}

func (e *ClassificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrClassification}
	}
	return []error{ErrClassification, e.Err}
}

// ❌ LengthMismatchError is returned when a mapping would pair lists of different length.
type LengthMismatchError struct {
	Sources      int
	Destinations int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%d sources but %d destinations", e.Sources, e.Destinations)
}

func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}
