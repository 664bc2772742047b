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

// Package prompt assembles backend requests from an instruction template, per-file
// hints and one chunk of source text.
package prompt

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/generate"
)

// 📜 Segment is one role-tagged instruction
type Segment struct {
	Role    string `toml:"role" yaml:"role" json:"role" hcl:"role"`
	Content string `toml:"content" yaml:"content" json:"content" hcl:"content"`
}

// 📋 Template is an ordered, immutable list of instruction segments. The last
// segment is the trailing slot that chunk text is attached to.
type Template struct {
	segments []Segment
}

// NewTemplate validates segs and keeps a private copy
func NewTemplate(segs []Segment) (*Template, error) {
	if len(segs) == 0 {
		return nil, errors.Errorf("template needs at least one instruction")
	}
	cp := make([]Segment, len(segs))
	for i, s := range segs {
		role := strings.ToLower(strings.TrimSpace(s.Role))
		switch role {
		case "":
			return nil, errors.Errorf("instruction %d: role is required", i)
		case generate.RoleSystem, generate.RoleUser, generate.RoleAssistant:
		default:
			return nil, errors.Errorf("instruction %d: unknown role %q", i, s.Role)
		}
		cp[i] = Segment{Role: role, Content: s.Content}
	}
	return &Template{segments: cp}, nil
}

// Segments returns a copy of the segments
func (t *Template) Segments() []Segment {
	cp := make([]Segment, len(t.segments))
	copy(cp, t.segments)
	return cp
}

// Trailing returns the last segment
func (t *Template) Trailing() Segment {
	return t.segments[len(t.segments)-1]
}

// Len returns the number of segments
func (t *Template) Len() int { return len(t.segments) }
