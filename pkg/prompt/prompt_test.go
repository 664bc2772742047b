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

package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/translaterc/pkg/generate"
)

func mustTemplate(t *testing.T, segs ...Segment) *Template {
	t.Helper()
	tmpl, err := NewTemplate(segs)
	require.NoError(t, err)
	return tmpl
}

func TestNewTemplate(t *testing.T) {
	tests := []struct {
		name        string
		segs        []Segment
		errContains string
	}{
		{name: "single_user", segs: []Segment{{Role: "user", Content: "Translate."}}},
		{name: "role_normalized", segs: []Segment{{Role: " System ", Content: "a"}, {Role: "USER", Content: "b"}}},
		{name: "empty", segs: nil, errContains: "at least one"},
		{name: "missing_role", segs: []Segment{{Content: "x"}}, errContains: "role is required"},
		{name: "unknown_role", segs: []Segment{{Role: "tool", Content: "x"}}, errContains: "unknown role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTemplate(tt.segs)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTemplateIsACopy(t *testing.T) {
	segs := []Segment{{Role: "user", Content: "original"}}
	tmpl := mustTemplate(t, segs...)

	segs[0].Content = "mutated"
	got := tmpl.Segments()
	got[0].Content = "also mutated"

	assert.Equal(t, "original", tmpl.Trailing().Content)
}

func TestRenderSingle(t *testing.T) {
	tmpl := mustTemplate(t,
		Segment{Role: "system", Content: "You convert Fortran to C++."},
		Segment{Role: "user", Content: "Convert the following code:"},
	)
	b, err := NewBuilder(tmpl, "", generate.Params{MaxNewTokens: 4096})
	require.NoError(t, err)
	assert.Equal(t, LayoutSingle, b.Layout())

	req := b.Render("x = 1\n", []string{"File lives in src/phys."}, nil)

	require.Len(t, req.Messages, 1)
	assert.Equal(t, generate.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "You convert Fortran to C++.\nConvert the following code:\nFile lives in src/phys.\nx = 1\n", req.Messages[0].Content)
	assert.Equal(t, 4096, req.Params.MaxNewTokens)
}

func TestRenderChat(t *testing.T) {
	tmpl := mustTemplate(t,
		Segment{Role: "system", Content: "You convert Fortran to C++."},
		Segment{Role: "user", Content: "Convert:"},
	)
	b, err := NewBuilder(tmpl, LayoutChat, generate.Params{})
	require.NoError(t, err)

	history := []generate.Message{
		{Role: generate.RoleUser, Content: "Convert:\nold chunk"},
		{Role: generate.RoleAssistant, Content: "old answer"},
	}
	req := b.Render("new chunk", nil, history)

	assert.Equal(t, []generate.Message{
		{Role: "system", Content: "You convert Fortran to C++."},
		{Role: "user", Content: "Convert:\nold chunk"},
		{Role: "assistant", Content: "old answer"},
		{Role: "user", Content: "Convert:\nnew chunk"},
	}, req.Messages)
}

func TestRenderRestoresTemplate(t *testing.T) {
	tmpl := mustTemplate(t, Segment{Role: "user", Content: "Translate:"})
	before := tmpl.Segments()

	for _, layout := range []Layout{LayoutSingle, LayoutChat} {
		b, err := NewBuilder(tmpl, layout, generate.Params{})
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			req := b.Render("chunk", []string{"hint"}, nil)
			req.Messages[len(req.Messages)-1].Content = "tampered"
		}
	}

	assert.Equal(t, before, tmpl.Segments(), "rendering should never change the template")
	assert.Equal(t, "Translate:", tmpl.Trailing().Content)
}

func TestNewBuilderUnknownLayout(t *testing.T) {
	_, err := NewBuilder(mustTemplate(t, Segment{Role: "user"}), "tree", generate.Params{})
	require.Error(t, err)
	_, err = NewBuilder(nil, LayoutChat, generate.Params{})
	require.Error(t, err)
}

func TestGlobHinter(t *testing.T) {
	h, err := NewGlobHinter([]HintRule{
		{Glob: "phys/**", Lines: []string{"Physics module."}},
		{Glob: "**/*.f90", Lines: []string{"This is a module header."}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Physics module.", "This is a module header."}, h.Hints("phys/rad/a.f90"))
	assert.Equal(t, []string{"Physics module."}, h.Hints("phys/b.f"))
	assert.Empty(t, h.Hints("dyn/c.f"))

	chained := Hinters{h, StaticHinter{"The following code is part of a single file"}}
	assert.Equal(t, []string{"Physics module.", "The following code is part of a single file"}, chained.Hints("phys/b.f"))

	_, err = NewGlobHinter([]HintRule{{Glob: "phys/["}})
	require.Error(t, err)
}

func TestProvenance(t *testing.T) {
	tmpl := mustTemplate(t, Segment{Role: "user", Content: "Convert to C++.\nKeep names."})

	tests := []struct {
		name  string
		hints []string
		ext   string
		want  string
	}{
		{
			name: "c_block",
			ext:  ".cpp",
			want: "/* LLM INSTRUCTIONS START\n * Convert to C++.\n * Keep names.\n * LLM INSTRUCTIONS END */\n\n",
		},
		{
			name:  "c_block_with_hints",
			hints: []string{"Header file."},
			ext:   ".hpp",
			want:  "/* LLM INSTRUCTIONS START\n * Convert to C++.\n * Keep names.\n * Header file.\n * LLM INSTRUCTIONS END */\n\n",
		},
		{
			name: "fortran_lines",
			ext:  ".f90",
			want: "! LLM INSTRUCTIONS START\n! Convert to C++.\n! Keep names.\n! LLM INSTRUCTIONS END\n\n",
		},
		{
			name: "hash_lines",
			ext:  ".py",
			want: "# LLM INSTRUCTIONS START\n# Convert to C++.\n# Keep names.\n# LLM INSTRUCTIONS END\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Provenance(tmpl, tt.hints, tt.ext))
		})
	}
}

func TestProvenanceEscapesBlockEnd(t *testing.T) {
	tmpl := mustTemplate(t, Segment{Role: "user", Content: "Never emit */ inside code."})
	got := Provenance(tmpl, nil, ".c")
	assert.Equal(t, "/* LLM INSTRUCTIONS START\n * Never emit * / inside code.\n * LLM INSTRUCTIONS END */\n\n", got)
}
