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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrSourceRead marks a source file that could not be read
	ErrSourceRead = errors.Base("source read failed")
	// ErrGeneration marks a backend call that failed
	ErrGeneration = errors.Base("generation failed")
	// ErrDestinationConflict marks a destination that already exists at creation time
	ErrDestinationConflict = errors.Base("destination exists")
	// ErrDestinationWrite marks a destination that could not be written
	ErrDestinationWrite = errors.Base("destination write failed")
)

// 📖 SourceReadError is returned when a source file cannot be read
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return "reading " + e.Path + ": " + e.Err.Error()
}

func (e *SourceReadError) Unwrap() []error { return []error{ErrSourceRead, e.Err} }

// 🤖 GenerationError is returned when the backend fails on a chunk.
// Chunk is zero based.
type GenerationError struct {
	Path  string
	Chunk int
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s chunk %d: %v", e.Path, e.Chunk+1, e.Err)
}

func (e *GenerationError) Unwrap() []error { return []error{ErrGeneration, e.Err} }

// 🚧 DestinationConflictError is returned when the destination appeared after
// resume filtering
type DestinationConflictError struct {
	Path string
	Err  error
}

func (e *DestinationConflictError) Error() string {
	return "destination " + e.Path + " already exists"
}

func (e *DestinationConflictError) Unwrap() []error { return []error{ErrDestinationConflict, e.Err} }

// DestinationWriteError is returned when creating or writing the destination fails
type DestinationWriteError struct {
	Path string
	Err  error
}

func (e *DestinationWriteError) Error() string {
	return "writing " + e.Path + ": " + e.Err.Error()
}

func (e *DestinationWriteError) Unwrap() []error { return []error{ErrDestinationWrite, e.Err} }
