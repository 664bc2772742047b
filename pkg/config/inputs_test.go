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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/translaterc/pkg/generate"
	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/prompt"
	"github.com/walteh/translaterc/pkg/rewrite"
)

func TestLoadManifest(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		want        *mapping.Manifest
		errContains string
	}{
		{
			name:    "toml",
			file:    "manifest.toml",
			content: "sources = [\"a.f\", \"sub/c.f\"]\nheaders = [\"b.f90\"]\n",
			want:    &mapping.Manifest{Sources: []string{"a.f", "sub/c.f"}, Headers: []string{"b.f90"}},
		},
		{
			name:    "yaml",
			file:    "manifest.yaml",
			content: "sources: [a.f]\nheaders: [b.f90]\nauxiliary: [AllModules.h]\n",
			want:    &mapping.Manifest{Sources: []string{"a.f"}, Headers: []string{"b.f90"}, Auxiliary: []string{"AllModules.h"}},
		},
		{
			name:    "json",
			file:    "manifest.json",
			content: `{"sources": ["a.f"], "headers": []}`,
			want:    &mapping.Manifest{Sources: []string{"a.f"}, Headers: []string{}},
		},
		{
			name:        "source_and_header",
			file:        "manifest.toml",
			content:     "sources = [\"a.f\"]\nheaders = [\"./a.f\"]\n",
			errContains: "both source and header",
		},
		{
			name:        "unknown_key",
			file:        "manifest.toml",
			content:     "sources = [\"a.f\"]\nmodules = [\"b.f90\"]\n",
			errContains: "unknown keys modules",
		},
		{
			name:        "unsupported_extension",
			file:        "manifest.txt",
			content:     "a.f\n",
			errContains: "unsupported file extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			got, err := LoadManifest(testContext(t), path)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		want        []prompt.Segment
		errContains string
	}{
		{
			name: "toml",
			file: "prompt.toml",
			content: `
[[instructions]]
role = "system"
content = "You translate Fortran."

[[instructions]]
role = "user"
content = """
Translate the following code to C++.
Keep the comments."""
`,
			want: []prompt.Segment{
				{Role: "system", Content: "You translate Fortran."},
				{Role: "user", Content: "Translate the following code to C++.\nKeep the comments."},
			},
		},
		{
			name:    "yaml",
			file:    "prompt.yaml",
			content: "instructions:\n  - role: USER\n    content: Translate.\n",
			want:    []prompt.Segment{{Role: "user", Content: "Translate."}},
		},
		{
			name:        "empty",
			file:        "prompt.toml",
			content:     "",
			errContains: "at least one instruction",
		},
		{
			name:        "bad_role",
			file:        "prompt.yaml",
			content:     "instructions:\n  - role: narrator\n    content: x\n",
			errContains: "unknown role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			got, err := LoadTemplate(testContext(t), path)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Segments())
		})
	}
}

func TestConfigMapping(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fortran/a.f", "      program a\n")
	writeFile(t, dir, "fortran/b.f90", "module b\n")
	writeFile(t, dir, "fortran/io/c.f", "      program c\n")
	writeFile(t, dir, "fortran/skip.f", "      program skip\n")
	writeFile(t, dir, "manifest.toml", "sources = [\"a.f\", \"io/c.f\"]\nheaders = [\"b.f90\"]\n")
	writeFile(t, dir, "prompt.toml", "[[instructions]]\nrole = \"user\"\ncontent = \"Translate.\"\n")
	path := writeFile(t, dir, ".translaterc.toml", `
destination = "cpp"

[source]
root = "fortran"
manifest = "manifest.toml"

[prompt]
template = "prompt.toml"
layout = "chat"
strip_comments = true

[[prompt.hints]]
glob = "io/**"
lines = ["Use std::fstream."]
`)

	ctx := testContext(t)
	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	m, err := cfg.Mapping(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mapping.FileEntry{
		{Source: filepath.Join(dir, "fortran", "a.f"), Destination: filepath.Join(dir, "cpp", "a.cpp"), Rel: "a.f", Role: rewrite.RoleSource},
		{Source: filepath.Join(dir, "fortran", "b.f90"), Destination: filepath.Join(dir, "cpp", "b.hpp"), Rel: "b.f90", Role: rewrite.RoleHeader},
		{Source: filepath.Join(dir, "fortran", "io", "c.f"), Destination: filepath.Join(dir, "cpp", "io", "c.cpp"), Rel: "io/c.f", Role: rewrite.RoleSource},
	}, m.Entries())

	cfg.Source.Dirs = []string{"io"}
	selected, err := cfg.Mapping(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, selected.Len())

	b, err := cfg.Builder(ctx)
	require.NoError(t, err)
	assert.Equal(t, prompt.LayoutChat, b.Layout())
	req := b.Render("x = 1\n", nil, nil)
	assert.Equal(t, []generate.Message{{Role: "user", Content: "Translate.\nx = 1\n"}}, req.Messages)

	hinter, err := cfg.Hinter()
	require.NoError(t, err)
	assert.Equal(t, []string{"Use std::fstream."}, hinter.Hints("io/c.f"))
	assert.Empty(t, hinter.Hints("a.f"))

	require.NotNil(t, cfg.LineFilter())
	assert.Equal(t, []string{"x = 1\n"}, cfg.LineFilter().Filter([]string{"! comment\n", "x = 1\n"}))
}
