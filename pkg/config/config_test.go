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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/prompt"
	"github.com/walteh/translaterc/pkg/rewrite"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t})
	return logger.WithContext(context.Background())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: ".translaterc.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: ".translaterc.yml", want: &YAMLParser{}},
		{name: "hcl_file", filename: ".translaterc.hcl", want: &HCLParser{}},
		{name: "json_file", filename: "config.json", want: &JSONParser{}},
		{name: "toml_file", filename: ".translaterc.toml", want: &TOMLParser{}},
		{name: "unknown_extension", filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

func TestLoadFormats(t *testing.T) {
	t.Setenv("TRANSLATERC_TEST_MODEL", "m1")

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: ".translaterc.yaml",
			content: `
source:
  root: fortran
  manifest: manifest.toml
destination: cpp
prompt:
  template: prompt.toml
  chunk_size: 50
  hints:
    - glob: "**/io/**"
      lines: ["Use std::fstream."]
backend:
  provider: echo
  model: m1
  max_new_tokens: 1024
  timeout: 30s
output:
  replacements:
    - from_text: FIXME
      to_text: TODO
fail_on_error: true
`,
		},
		{
			name: "hcl",
			file: ".translaterc.hcl",
			content: `
source {
  root     = "fortran"
  manifest = "manifest.toml"
}
destination = "cpp"

prompt {
  template   = "prompt.toml"
  chunk_size = 50

  hint "**/io/**" {
    lines = ["Use std::fstream."]
  }
}

backend {
  provider       = "echo"
  model          = env.TRANSLATERC_TEST_MODEL
  max_new_tokens = 1024
  timeout        = "30s"
}

output {
  replacement {
    from_text = "FIXME"
    to_text   = "TODO"
  }
}

fail_on_error = true
`,
		},
		{
			name: "toml",
			file: ".translaterc.toml",
			content: `
destination = "cpp"
fail_on_error = true

[source]
root = "fortran"
manifest = "manifest.toml"

[prompt]
template = "prompt.toml"
chunk_size = 50

[[prompt.hints]]
glob = "**/io/**"
lines = ["Use std::fstream."]

[backend]
provider = "echo"
model = "m1"
max_new_tokens = 1024
timeout = "30s"

[[output.replacements]]
from_text = "FIXME"
to_text = "TODO"
`,
		},
		{
			name: "json",
			file: "config.json",
			content: `{
  "source": {"root": "fortran", "manifest": "manifest.toml"},
  "destination": "cpp",
  "prompt": {
    "template": "prompt.toml",
    "chunk_size": 50,
    "hints": [{"glob": "**/io/**", "lines": ["Use std::fstream."]}]
  },
  "backend": {"provider": "echo", "model": "m1", "max_new_tokens": 1024, "timeout": "30s"},
  "output": {"replacements": [{"from_text": "FIXME", "to_text": "TODO"}]},
  "fail_on_error": true
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(testContext(t), path)
			require.NoError(t, err)

			assert.Equal(t, "fortran", cfg.Source.Root)
			assert.Equal(t, string(mapping.ModeManifest), cfg.Source.Mode)
			assert.Equal(t, "cpp", cfg.Destination)
			assert.Equal(t, DefaultPreset, cfg.Rewrite.Preset)
			assert.Equal(t, string(rewrite.DirectionForward), cfg.Rewrite.Direction)
			assert.Equal(t, string(prompt.LayoutSingle), cfg.Prompt.Layout)
			assert.Equal(t, 50, cfg.Prompt.ChunkSize)
			require.Len(t, cfg.Prompt.Hints, 1)
			assert.Equal(t, "**/io/**", cfg.Prompt.Hints[0].Glob)
			assert.True(t, cfg.FailOnError)

			settings := cfg.Generation()
			assert.Equal(t, "echo", settings.Provider)
			assert.Equal(t, "m1", settings.Model)
			assert.Equal(t, 30*time.Second, settings.Timeout)

			params := cfg.Params()
			assert.Equal(t, 1024, params.MaxNewTokens)
			assert.Equal(t, DefaultBatchSize, params.BatchSize)

			replacer, err := cfg.Replacer()
			require.NoError(t, err)
			out, n := replacer.Replace("a.cpp", "// FIXME")
			assert.Equal(t, "// TODO", out)
			assert.Equal(t, 1, n)

			assert.Equal(t, filepath.Join(dir, "manifest.toml"), cfg.Path(cfg.Source.Manifest))
			assert.Equal(t, "/abs/path", cfg.Path("/abs/path"))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		errContains string
	}{
		{
			name:        "missing_root",
			config:      "destination: out\nsource: {sources: [a.f]}\nprompt: {template: p.toml}\n",
			errContains: "source.root is required",
		},
		{
			name:        "missing_destination",
			config:      "source: {root: src, sources: [a.f]}\nprompt: {template: p.toml}\n",
			errContains: "destination is required",
		},
		{
			name:        "unknown_mode",
			config:      "source: {root: src, mode: some}\ndestination: out\nprompt: {template: p.toml}\n",
			errContains: "unknown mode",
		},
		{
			name:        "manifest_mode_needs_manifest",
			config:      "source: {root: src}\ndestination: out\nprompt: {template: p.toml}\n",
			errContains: "required in manifest mode",
		},
		{
			name:        "manifest_file_and_inline_lists",
			config:      "source: {root: src, manifest: m.toml, sources: [a.f]}\ndestination: out\nprompt: {template: p.toml}\n",
			errContains: "mutually exclusive",
		},
		{
			name:        "preset_and_rules",
			config:      "source: {root: src, mode: all}\ndestination: out\nrewrite: {preset: c-cpp, sources: {.c: .cc}}\nprompt: {template: p.toml}\n",
			errContains: "mutually exclusive",
		},
		{
			name:        "unknown_preset",
			config:      "source: {root: src, mode: all}\ndestination: out\nrewrite: {preset: cobol-go}\nprompt: {template: p.toml}\n",
			errContains: "unknown rewrite preset",
		},
		{
			name:        "unknown_direction",
			config:      "source: {root: src, mode: all}\ndestination: out\nrewrite: {direction: sideways}\nprompt: {template: p.toml}\n",
			errContains: "unknown direction",
		},
		{
			name:        "non_injective_inverse",
			config:      "source: {root: src, mode: all}\ndestination: out\nrewrite: {preset: fortran-cxx, direction: inverse}\nprompt: {template: p.toml}\n",
			errContains: "rewrite",
		},
		{
			name:        "missing_prompt",
			config:      "source: {root: src, mode: all}\ndestination: out\nprompt: {}\n",
			errContains: "prompt.template or prompt.instructions is required",
		},
		{
			name:        "unknown_layout",
			config:      "source: {root: src, mode: all}\ndestination: out\nprompt: {template: p.toml, layout: fancy}\n",
			errContains: "unknown layout",
		},
		{
			name:        "negative_chunk_size",
			config:      "source: {root: src, mode: all}\ndestination: out\nprompt: {template: p.toml, chunk_size: -1}\n",
			errContains: "chunk_size",
		},
		{
			name:        "bad_hint_glob",
			config:      "source: {root: src, mode: all}\ndestination: out\nprompt: {template: p.toml, hints: [{glob: \"src/[\", lines: [x]}]}\n",
			errContains: "prompt.hints",
		},
		{
			name:        "bad_timeout",
			config:      "source: {root: src, mode: all}\ndestination: out\nprompt: {template: p.toml}\nbackend: {timeout: soon}\n",
			errContains: "backend.timeout",
		},
		{
			name:        "bad_replacement",
			config:      "source: {root: src, mode: all}\ndestination: out\nprompt: {template: p.toml}\noutput: {replacements: [{from_text: \"(\", regexp: true}]}\n",
			errContains: "output.replacements",
		},
		{
			name:        "unknown_field",
			config:      "source: {root: src, mode: all}\ndestination: out\nprompt: {template: p.toml}\nmystery: true\n",
			errContains: "parsing YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&YAMLParser{}).Parse(testContext(t), []byte(tt.config))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg, err := (&YAMLParser{}).Parse(testContext(t), []byte(`
source:
  root: ./src/
  sources: [a.f]
destination: out
prompt:
  instructions:
    - role: user
      content: Translate to C++.
`))
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Source.Root)
	assert.Equal(t, 100, cfg.Prompt.ChunkSize)
	assert.Equal(t, DefaultProvider, cfg.Backend.Provider)
	assert.Equal(t, DefaultMaxNewTokens, cfg.Backend.MaxNewTokens)
	assert.Equal(t, DefaultBatchSize, cfg.Backend.BatchSize)
	assert.Nil(t, cfg.LineFilter(), "comment stripping is off by default")
	assert.Zero(t, cfg.CallTimeout())
	assert.Empty(t, cfg.TranscriptDir())
	assert.Equal(t, "src -> out (openai)", cfg.String())

	tmpl, err := cfg.Template(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 1, tmpl.Len())
}

func TestDefaultExcludes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		extra  string
		want   []string
	}{
		{
			name:   "manifest_mode_has_none",
			source: "{root: src, sources: [a.f]}",
		},
		{
			name:   "all_mode_uses_default_preset",
			source: "{root: src, mode: all}",
			want:   rewrite.PresetExcludes(DefaultPreset),
		},
		{
			name:   "all_mode_uses_named_preset",
			source: "{root: src, mode: all}",
			extra:  "rewrite: {preset: fortran-cxx}\n",
			want:   rewrite.PresetExcludes("fortran-cxx"),
		},
		{
			name:   "custom_rules_have_none",
			source: "{root: src, mode: all}",
			extra:  "rewrite: {sources: {.c: .cc}}\n",
		},
		{
			name:   "opt_out",
			source: "{root: src, mode: all, no_default_excludes: true}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "source: " + tt.source + "\ndestination: out\nprompt: {instructions: [{role: user, content: x}]}\n" + tt.extra
			cfg, err := (&YAMLParser{}).Parse(testContext(t), []byte(doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.DefaultExcludes())
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	require.Error(t, err)

	writeFile(t, dir, ".translaterc.toml", "")
	writeFile(t, dir, ".translaterc.yaml", "")
	got, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".translaterc.yaml"), got, "yaml is preferred over toml")
}
