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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/translaterc/pkg/chunk"
	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/prompt"
	"github.com/walteh/translaterc/pkg/rewrite"
	"github.com/walteh/translaterc/pkg/text"
)

// Defaults filled in by Validate
const (
	DefaultProvider     = "openai"
	DefaultPreset       = "fortran-cpp"
	DefaultMaxNewTokens = 4096
	DefaultBatchSize    = 8
)

// DefaultFileNames are searched, in order, when no config path is given
var DefaultFileNames = []string{
	".translaterc.hcl",
	".translaterc.yaml",
	".translaterc.yml",
	".translaterc.toml",
	".translaterc.json",
}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📂 SourceArgs describes the tree to translate
type SourceArgs struct {
	Root string `hcl:"root" yaml:"root" json:"root" toml:"root"`
	// Mode is "manifest" (default) or "all"
	Mode string `hcl:"mode,optional" yaml:"mode,omitempty" json:"mode,omitempty" toml:"mode,omitempty"`
	// Manifest is a TOML, YAML or JSON file listing sources and headers
	Manifest string `hcl:"manifest,optional" yaml:"manifest,omitempty" json:"manifest,omitempty" toml:"manifest,omitempty"`
	// Sources and Headers list files inline when no manifest file is used
	Sources   []string `hcl:"sources,optional" yaml:"sources,omitempty" json:"sources,omitempty" toml:"sources,omitempty"`
	Headers   []string `hcl:"headers,optional" yaml:"headers,omitempty" json:"headers,omitempty" toml:"headers,omitempty"`
	Exclude   []string `hcl:"exclude,optional" yaml:"exclude,omitempty" json:"exclude,omitempty" toml:"exclude,omitempty"`
	Auxiliary []string `hcl:"auxiliary,optional" yaml:"auxiliary,omitempty" json:"auxiliary,omitempty" toml:"auxiliary,omitempty"`
	// NoDefaultExcludes turns off the preset's exclusion globs in all files mode
	NoDefaultExcludes bool `hcl:"no_default_excludes,optional" yaml:"no_default_excludes,omitempty" json:"no_default_excludes,omitempty" toml:"no_default_excludes,omitempty"`
	// Dirs restricts a run to these directories, "*" selects all
	Dirs []string `hcl:"dirs,optional" yaml:"dirs,omitempty" json:"dirs,omitempty" toml:"dirs,omitempty"`
}

// 🔀 RewriteArgs selects the extension rewrite table
type RewriteArgs struct {
	Preset    string            `hcl:"preset,optional" yaml:"preset,omitempty" json:"preset,omitempty" toml:"preset,omitempty"`
	Direction string            `hcl:"direction,optional" yaml:"direction,omitempty" json:"direction,omitempty" toml:"direction,omitempty"`
	Sources   map[string]string `hcl:"sources,optional" yaml:"sources,omitempty" json:"sources,omitempty" toml:"sources,omitempty"`
	Headers   map[string]string `hcl:"headers,optional" yaml:"headers,omitempty" json:"headers,omitempty" toml:"headers,omitempty"`
}

// 💬 PromptArgs configures request assembly
type PromptArgs struct {
	// Template is a TOML or YAML instruction file, used when Instructions is empty
	Template        string            `hcl:"template,optional" yaml:"template,omitempty" json:"template,omitempty" toml:"template,omitempty"`
	Instructions    []prompt.Segment  `hcl:"instruction,block" yaml:"instructions,omitempty" json:"instructions,omitempty" toml:"instructions,omitempty"`
	Layout          string            `hcl:"layout,optional" yaml:"layout,omitempty" json:"layout,omitempty" toml:"layout,omitempty"`
	ChunkSize       int               `hcl:"chunk_size,optional" yaml:"chunk_size,omitempty" json:"chunk_size,omitempty" toml:"chunk_size,omitempty"`
	CarryContext    bool              `hcl:"carry_context,optional" yaml:"carry_context,omitempty" json:"carry_context,omitempty" toml:"carry_context,omitempty"`
	StripComments   bool              `hcl:"strip_comments,optional" yaml:"strip_comments,omitempty" json:"strip_comments,omitempty" toml:"strip_comments,omitempty"`
	CommentPrefixes []string          `hcl:"comment_prefixes,optional" yaml:"comment_prefixes,omitempty" json:"comment_prefixes,omitempty" toml:"comment_prefixes,omitempty"`
	Hints           []prompt.HintRule `hcl:"hint,block" yaml:"hints,omitempty" json:"hints,omitempty" toml:"hints,omitempty"`
}

// 🤖 BackendArgs selects and tunes the generation backend
type BackendArgs struct {
	Provider     string            `hcl:"provider,optional" yaml:"provider,omitempty" json:"provider,omitempty" toml:"provider,omitempty"`
	Model        string            `hcl:"model,optional" yaml:"model,omitempty" json:"model,omitempty" toml:"model,omitempty"`
	BaseURL      string            `hcl:"base_url,optional" yaml:"base_url,omitempty" json:"base_url,omitempty" toml:"base_url,omitempty"`
	APIKeyEnv    string            `hcl:"api_key_env,optional" yaml:"api_key_env,omitempty" json:"api_key_env,omitempty" toml:"api_key_env,omitempty"`
	Timeout      string            `hcl:"timeout,optional" yaml:"timeout,omitempty" json:"timeout,omitempty" toml:"timeout,omitempty"`
	CallTimeout  string            `hcl:"call_timeout,optional" yaml:"call_timeout,omitempty" json:"call_timeout,omitempty" toml:"call_timeout,omitempty"`
	CacheSize    int               `hcl:"cache_size,optional" yaml:"cache_size,omitempty" json:"cache_size,omitempty" toml:"cache_size,omitempty"`
	Headers      map[string]string `hcl:"headers,optional" yaml:"headers,omitempty" json:"headers,omitempty" toml:"headers,omitempty"`
	MaxNewTokens int               `hcl:"max_new_tokens,optional" yaml:"max_new_tokens,omitempty" json:"max_new_tokens,omitempty" toml:"max_new_tokens,omitempty"`
	MaxLength    int               `hcl:"max_length,optional" yaml:"max_length,omitempty" json:"max_length,omitempty" toml:"max_length,omitempty"`
	BatchSize    int               `hcl:"batch_size,optional" yaml:"batch_size,omitempty" json:"batch_size,omitempty" toml:"batch_size,omitempty"`
	Temperature  *float64          `hcl:"temperature,optional" yaml:"temperature,omitempty" json:"temperature,omitempty" toml:"temperature,omitempty"`
}

// 📤 OutputArgs configures what happens to generated text
type OutputArgs struct {
	Replacements  []text.ReplacementRule `hcl:"replacement,block" yaml:"replacements,omitempty" json:"replacements,omitempty" toml:"replacements,omitempty"`
	TranscriptDir string                 `hcl:"transcript_dir,optional" yaml:"transcript_dir,omitempty" json:"transcript_dir,omitempty" toml:"transcript_dir,omitempty"`
	Progress      bool                   `hcl:"progress,optional" yaml:"progress,omitempty" json:"progress,omitempty" toml:"progress,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Source      SourceArgs   `hcl:"source,block" yaml:"source" json:"source" toml:"source"`
	Destination string       `hcl:"destination" yaml:"destination" json:"destination" toml:"destination"`
	Rewrite     *RewriteArgs `hcl:"rewrite,block" yaml:"rewrite,omitempty" json:"rewrite,omitempty" toml:"rewrite,omitempty"`
	Prompt      PromptArgs   `hcl:"prompt,block" yaml:"prompt" json:"prompt" toml:"prompt"`
	Backend     *BackendArgs `hcl:"backend,block" yaml:"backend,omitempty" json:"backend,omitempty" toml:"backend,omitempty"`
	Output      *OutputArgs  `hcl:"output,block" yaml:"output,omitempty" json:"output,omitempty" toml:"output,omitempty"`
	FailOnError bool         `hcl:"fail_on_error,optional" yaml:"fail_on_error,omitempty" json:"fail_on_error,omitempty" toml:"fail_on_error,omitempty"`

	// location is the file the config was loaded from; relative paths resolve
	// against its directory
	location string
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}
	cfg.location = abs

	return cfg, nil
}

// 🔎 Find returns the first default config file present in dir
func Find(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.Errorf("no config file found in %s (looked for %s)", dir, strings.Join(DefaultFileNames, ", "))
}

// Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string { return cfg.location }

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Source.Root == "" {
		return errors.Errorf("source.root is required")
	}
	if cfg.Destination == "" {
		return errors.Errorf("destination is required")
	}

	switch mapping.Mode(cfg.Source.Mode) {
	case "":
		cfg.Source.Mode = string(mapping.ModeManifest)
	case mapping.ModeManifest, mapping.ModeAll:
	default:
		return errors.Errorf("source.mode: unknown mode %q", cfg.Source.Mode)
	}
	if mapping.Mode(cfg.Source.Mode) == mapping.ModeManifest &&
		cfg.Source.Manifest == "" && len(cfg.Source.Sources) == 0 && len(cfg.Source.Headers) == 0 {
		return errors.Errorf("source.manifest or inline source.sources/source.headers is required in manifest mode")
	}
	if cfg.Source.Manifest != "" && (len(cfg.Source.Sources) > 0 || len(cfg.Source.Headers) > 0) {
		return errors.Errorf("source.manifest and inline source.sources/source.headers are mutually exclusive")
	}

	if cfg.Rewrite == nil {
		cfg.Rewrite = &RewriteArgs{}
	}
	if cfg.Rewrite.Preset != "" && (len(cfg.Rewrite.Sources) > 0 || len(cfg.Rewrite.Headers) > 0) {
		return errors.Errorf("rewrite.preset and custom rewrite rules are mutually exclusive")
	}
	if cfg.Rewrite.Preset == "" && len(cfg.Rewrite.Sources) == 0 && len(cfg.Rewrite.Headers) == 0 {
		cfg.Rewrite.Preset = DefaultPreset
	}
	if cfg.Rewrite.Direction == "" {
		cfg.Rewrite.Direction = string(rewrite.DirectionForward)
	}
	if _, err := cfg.Table(); err != nil {
		return errors.Errorf("rewrite: %w", err)
	}

	if cfg.Prompt.Template == "" && len(cfg.Prompt.Instructions) == 0 {
		return errors.Errorf("prompt.template or prompt.instructions is required")
	}
	if cfg.Prompt.Template != "" && len(cfg.Prompt.Instructions) > 0 {
		return errors.Errorf("prompt.template and prompt.instructions are mutually exclusive")
	}
	switch prompt.Layout(cfg.Prompt.Layout) {
	case "":
		cfg.Prompt.Layout = string(prompt.LayoutSingle)
	case prompt.LayoutSingle, prompt.LayoutChat:
	default:
		return errors.Errorf("prompt.layout: unknown layout %q", cfg.Prompt.Layout)
	}
	if cfg.Prompt.ChunkSize < 0 {
		return errors.Errorf("prompt.chunk_size: %w", chunk.ErrInvalidChunkSize)
	}
	if cfg.Prompt.ChunkSize == 0 {
		cfg.Prompt.ChunkSize = chunk.DefaultSize
	}
	if _, err := prompt.NewGlobHinter(cfg.Prompt.Hints); err != nil {
		return errors.Errorf("prompt.hints: %w", err)
	}

	if cfg.Backend == nil {
		cfg.Backend = &BackendArgs{}
	}
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = DefaultProvider
	}
	if cfg.Backend.MaxNewTokens == 0 {
		cfg.Backend.MaxNewTokens = DefaultMaxNewTokens
	}
	if cfg.Backend.BatchSize == 0 {
		cfg.Backend.BatchSize = DefaultBatchSize
	}
	if cfg.Backend.MaxNewTokens < 0 || cfg.Backend.MaxLength < 0 || cfg.Backend.BatchSize < 0 || cfg.Backend.CacheSize < 0 {
		return errors.Errorf("backend: token, length, batch and cache sizes must not be negative")
	}
	if _, err := parseDuration(cfg.Backend.Timeout); err != nil {
		return errors.Errorf("backend.timeout: %w", err)
	}
	if _, err := parseDuration(cfg.Backend.CallTimeout); err != nil {
		return errors.Errorf("backend.call_timeout: %w", err)
	}

	if cfg.Output == nil {
		cfg.Output = &OutputArgs{}
	}
	if err := text.ValidateRules(cfg.Output.Replacements); err != nil {
		return errors.Errorf("output.replacements: %w", err)
	}

	cfg.Source.Root = filepath.Clean(cfg.Source.Root)
	cfg.Destination = filepath.Clean(cfg.Destination)

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.Errorf("duration %s must not be negative", s)
	}
	return d, nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	provider := DefaultProvider
	if cfg.Backend != nil && cfg.Backend.Provider != "" {
		provider = cfg.Backend.Provider
	}
	return fmt.Sprintf("%s -> %s (%s)", cfg.Source.Root, cfg.Destination, provider)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
