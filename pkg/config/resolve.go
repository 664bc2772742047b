package config

import (
	"context"
	"path/filepath"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/generate"
	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/prompt"
	"github.com/walteh/translaterc/pkg/rewrite"
	"github.com/walteh/translaterc/pkg/text"
)

// 📍 Path resolves p against the directory of the config file
func (cfg *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || cfg.location == "" {
		return p
	}
	return filepath.Join(filepath.Dir(cfg.location), p)
}

// 🔀 Table returns the rewrite table in the configured direction
func (cfg *Config) Table() (*rewrite.Table, error) {
	args := cfg.Rewrite
	if args == nil {
		args = &RewriteArgs{}
	}

	var (
		tbl *rewrite.Table
		err error
	)
	switch {
	case len(args.Sources) > 0 || len(args.Headers) > 0:
		rules := map[rewrite.Role]map[string]string{}
		if len(args.Sources) > 0 {
			rules[rewrite.RoleSource] = args.Sources
		}
		if len(args.Headers) > 0 {
			rules[rewrite.RoleHeader] = args.Headers
		}
		tbl, err = rewrite.NewTable(rules)
	case args.Preset != "":
		tbl, err = rewrite.Preset(args.Preset)
	default:
		tbl, err = rewrite.Preset(DefaultPreset)
	}
	if err != nil {
		return nil, err
	}
	return tbl.Direct(rewrite.Direction(args.Direction))
}

// DefaultExcludes returns the preset's exclusion globs for all files mode. Custom
// rewrite rules carry none.
func (cfg *Config) DefaultExcludes() []string {
	if cfg.Source.NoDefaultExcludes || mapping.Mode(cfg.Source.Mode) != mapping.ModeAll {
		return nil
	}
	args := cfg.Rewrite
	if args == nil {
		return rewrite.PresetExcludes(DefaultPreset)
	}
	if len(args.Sources) > 0 || len(args.Headers) > 0 {
		return nil
	}
	if args.Preset == "" {
		return rewrite.PresetExcludes(DefaultPreset)
	}
	return rewrite.PresetExcludes(args.Preset)
}

// 📋 Manifest returns the manifest file or the inline lists. It is nil in all
// files mode when neither is given.
func (cfg *Config) Manifest(ctx context.Context) (*mapping.Manifest, error) {
	if cfg.Source.Manifest != "" {
		return LoadManifest(ctx, cfg.Path(cfg.Source.Manifest))
	}
	if len(cfg.Source.Sources) == 0 && len(cfg.Source.Headers) == 0 {
		return nil, nil
	}
	m := &mapping.Manifest{Sources: cfg.Source.Sources, Headers: cfg.Source.Headers}
	if err := m.Validate(); err != nil {
		return nil, errors.Errorf("validating inline manifest: %w", err)
	}
	return m, nil
}

// 🗺️ Mapping builds the file mapping and applies the directory selection
func (cfg *Config) Mapping(ctx context.Context) (*mapping.FileMapping, error) {
	tbl, err := cfg.Table()
	if err != nil {
		return nil, errors.Errorf("building rewrite table: %w", err)
	}
	manifest, err := cfg.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	m, err := mapping.Build(ctx, mapping.Options{
		SourceRoot:      cfg.Path(cfg.Source.Root),
		DestinationRoot: cfg.Path(cfg.Destination),
		Mode:            mapping.Mode(cfg.Source.Mode),
		Manifest:        manifest,
		Table:           tbl,
		Exclude:         cfg.Source.Exclude,
		Auxiliary:       cfg.Source.Auxiliary,
		DefaultExclude:  cfg.DefaultExcludes(),
	})
	if err != nil {
		return nil, errors.Errorf("building mapping: %w", err)
	}

	if len(cfg.Source.Dirs) == 0 {
		return m, nil
	}
	selected, err := m.SelectDirs(cfg.Source.Dirs)
	if err != nil {
		return nil, errors.Errorf("selecting directories: %w", err)
	}
	return selected, nil
}

// 📜 Template returns the inline instructions or loads the template file
func (cfg *Config) Template(ctx context.Context) (*prompt.Template, error) {
	if len(cfg.Prompt.Instructions) > 0 {
		return prompt.NewTemplate(cfg.Prompt.Instructions)
	}
	return LoadTemplate(ctx, cfg.Path(cfg.Prompt.Template))
}

// Params returns the generation parameters sent with every request
func (cfg *Config) Params() generate.Params {
	b := cfg.backend()
	return generate.Params{
		MaxNewTokens: b.MaxNewTokens,
		MaxLength:    b.MaxLength,
		BatchSize:    b.BatchSize,
		Temperature:  b.Temperature,
	}
}

// 🧱 Builder returns the request builder for the configured template and layout
func (cfg *Config) Builder(ctx context.Context) (*prompt.Builder, error) {
	tmpl, err := cfg.Template(ctx)
	if err != nil {
		return nil, err
	}
	return prompt.NewBuilder(tmpl, prompt.Layout(cfg.Prompt.Layout), cfg.Params())
}

// Hinter returns the per-file hint rules
func (cfg *Config) Hinter() (*prompt.GlobHinter, error) {
	return prompt.NewGlobHinter(cfg.Prompt.Hints)
}

// Replacer returns the output replacement rules
func (cfg *Config) Replacer() (*text.SimpleTextReplacer, error) {
	if cfg.Output == nil {
		return text.NewSimpleTextReplacer(nil)
	}
	return text.NewSimpleTextReplacer(cfg.Output.Replacements)
}

// LineFilter returns the comment filter, or nil when stripping is off
func (cfg *Config) LineFilter() *text.CommentFilter {
	if !cfg.Prompt.StripComments {
		return nil
	}
	return text.NewCommentFilter(cfg.Prompt.CommentPrefixes)
}

// 🤖 Generation returns the backend client settings
func (cfg *Config) Generation() generate.Settings {
	b := cfg.backend()
	timeout, _ := parseDuration(b.Timeout)
	return generate.Settings{
		Provider:  b.Provider,
		Model:     b.Model,
		BaseURL:   b.BaseURL,
		APIKeyEnv: b.APIKeyEnv,
		Timeout:   timeout,
		CacheSize: b.CacheSize,
		Headers:   b.Headers,
	}
}

// CallTimeout bounds a single backend call, zero for none
func (cfg *Config) CallTimeout() time.Duration {
	d, _ := parseDuration(cfg.backend().CallTimeout)
	return d
}

// TranscriptDir returns the resolved transcript directory, empty when disabled
func (cfg *Config) TranscriptDir() string {
	if cfg.Output == nil {
		return ""
	}
	return cfg.Path(cfg.Output.TranscriptDir)
}

func (cfg *Config) backend() *BackendArgs {
	if cfg.Backend == nil {
		return &BackendArgs{Provider: DefaultProvider}
	}
	return cfg.Backend
}
