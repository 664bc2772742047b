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

// Package chunk splits source files into bounded windows of lines.
package chunk

import (
	"bufio"
	"io"
	"iter"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultSize is the number of lines per chunk when none is configured
const DefaultSize = 100

// ErrInvalidChunkSize is returned for sizes below one
var ErrInvalidChunkSize = errors.Base("chunk size must be at least 1")

// 🧩 Chunk is one window of lines. Lines keep their terminators.
type Chunk struct {
	Index int
	Lines []string
}

// Text joins the lines back into their original form
func (c Chunk) Text() string {
	return strings.Join(c.Lines, "")
}

// ✂️ Split returns a sequence of consecutive windows over lines. Ranging it more
// than once yields the same chunks.
func Split(lines []string, size int) (iter.Seq[Chunk], error) {
	if size < 1 {
		return nil, errors.Errorf("size %d: %w", size, ErrInvalidChunkSize)
	}
	return func(yield func(Chunk) bool) {
		for i, start := 0, 0; start < len(lines); i, start = i+1, start+size {
			end := min(start+size, len(lines))
			if !yield(Chunk{Index: i, Lines: lines[start:end:end]}) {
				return
			}
		}
	}, nil
}

// Count returns how many chunks Split yields for n lines
func Count(n, size int) int {
	if size < 1 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// 📖 ReadLines reads r fully, keeping each line's terminator. A final line
// without a newline is kept as-is.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, errors.Errorf("reading lines: %w", err)
		}
	}
}
