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

package mapping

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/walteh/translaterc/pkg/rewrite"
)

// 📄 FileEntry pairs one source file with its destination
type FileEntry struct {
	Source      string       // Absolute source path
	Destination string       // Absolute destination path
	Rel         string       // Slash-separated source path relative to the source root
	Role        rewrite.Role // Role that selected the rewrite rule
}

// 🗺️ FileMapping is the ordered set of entries for one run.
// It is never modified after Build; filters return new mappings.
type FileMapping struct {
	SourceRoot      string
	DestinationRoot string
	entries         []FileEntry
}

// New builds a mapping from already classified entries
func New(sourceRoot, destinationRoot string, entries []FileEntry) *FileMapping {
	cp := make([]FileEntry, len(entries))
	copy(cp, entries)
	return &FileMapping{SourceRoot: sourceRoot, DestinationRoot: destinationRoot, entries: cp}
}

// FromLists pairs parallel source and destination lists. Roles may be nil, in which
// case every entry is a source.
func FromLists(sourceRoot, destinationRoot string, sources, destinations []string, roles []rewrite.Role) (*FileMapping, error) {
	if len(sources) != len(destinations) {
		return nil, &LengthMismatchError{Sources: len(sources), Destinations: len(destinations)}
	}
	if roles != nil && len(roles) != len(sources) {
		return nil, &LengthMismatchError{Sources: len(sources), Destinations: len(roles)}
	}
	entries := make([]FileEntry, len(sources))
	for i := range sources {
		rel, err := filepath.Rel(sourceRoot, sources[i])
		if err != nil {
			rel = sources[i]
		}
		role := rewrite.RoleSource
		if roles != nil {
			role = roles[i]
		}
		entries[i] = FileEntry{
			Source:      sources[i],
			Destination: destinations[i],
			Rel:         filepath.ToSlash(rel),
			Role:        role,
		}
	}
	return New(sourceRoot, destinationRoot, entries), nil
}

// Len returns the number of entries
func (m *FileMapping) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in traversal order
func (m *FileMapping) Entries() []FileEntry {
	cp := make([]FileEntry, len(m.entries))
	copy(cp, m.entries)
	return cp
}

// Sources returns the source paths in order
func (m *FileMapping) Sources() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Source
	}
	return out
}

// Destinations returns the destination paths in order
func (m *FileMapping) Destinations() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Destination
	}
	return out
}

// 🔍 Filter returns a new mapping with the entries keep accepts
func (m *FileMapping) Filter(keep func(FileEntry) bool) *FileMapping {
	out := make([]FileEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return &FileMapping{SourceRoot: m.SourceRoot, DestinationRoot: m.DestinationRoot, entries: out}
}

// 📁 SelectDirs keeps entries whose relative directory is one of dirs or below it.
// Dirs may be doublestar patterns. An empty list or "*" keeps everything.
func (m *FileMapping) SelectDirs(dirs []string) (*FileMapping, error) {
	patterns := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.Trim(filepath.ToSlash(strings.TrimSpace(d)), "/")
		switch d {
		case "":
			continue
		case "*", ".":
			return m, nil
		}
		if !doublestar.ValidatePattern(d) {
			return nil, &invalidPatternError{pattern: d}
		}
		patterns = append(patterns, d, d+"/**")
	}
	if len(patterns) == 0 {
		return m, nil
	}

	return m.Filter(func(e FileEntry) bool {
		dir := path.Dir(e.Rel)
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, dir); ok {
				return true
			}
		}
		return false
	}), nil
}

type invalidPatternError struct{ pattern string }

func (e *invalidPatternError) Error() string { return "invalid directory pattern " + e.pattern }
