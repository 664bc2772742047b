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
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/rewrite"
)

// Mode selects which files under the source root are mapped
type Mode string

const (
	// ModeManifest maps only files named by the manifest
	ModeManifest Mode = "manifest"
	// ModeAll maps every file that is not excluded
	ModeAll Mode = "all"
)

// 📋 Manifest lists the files to translate, relative to the source root
type Manifest struct {
	Sources   []string `toml:"sources" yaml:"sources" json:"sources"`
	Headers   []string `toml:"headers" yaml:"headers" json:"headers"`
	Auxiliary []string `toml:"auxiliary" yaml:"auxiliary" json:"auxiliary"`
}

// Validate checks that no path is listed under two roles
func (m *Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Sources))
	for _, s := range m.Sources {
		seen[normalize(s)] = struct{}{}
	}
	for _, h := range m.Headers {
		if _, dup := seen[normalize(h)]; dup {
			return errors.Errorf("manifest lists %q as both source and header", h)
		}
	}
	for _, a := range m.Auxiliary {
		if !doublestar.ValidatePattern(normalize(a)) {
			return errors.Errorf("manifest auxiliary pattern %q is invalid", a)
		}
	}
	return nil
}

// ⚙️ Options configures Build
type Options struct {
	SourceRoot      string
	DestinationRoot string
	Mode            Mode
	Manifest        *Manifest
	Table           *rewrite.Table
	Exclude         []string // doublestar globs, relative to SourceRoot
	Auxiliary       []string // doublestar globs of pass-through files
	// DefaultExclude globs apply in all files mode only, after Auxiliary
	DefaultExclude []string
}

func (o *Options) validate() error {
	if o.SourceRoot == "" {
		return errors.Errorf("source root is required")
	}
	if o.DestinationRoot == "" {
		return errors.Errorf("destination root is required")
	}
	if o.Table == nil {
		return errors.Errorf("rewrite table is required")
	}
	switch o.Mode {
	case "":
		o.Mode = ModeManifest
	case ModeManifest, ModeAll:
	default:
		return errors.Errorf("unknown mode %q", o.Mode)
	}
	if o.Mode == ModeManifest {
		if o.Manifest == nil {
			return errors.Errorf("manifest mode requires a manifest")
		}
		if err := o.Manifest.Validate(); err != nil {
			return errors.Errorf("validating manifest: %w", err)
		}
	}
	patterns := append(append([]string{}, o.Exclude...), o.Auxiliary...)
	for _, p := range append(patterns, o.DefaultExclude...) {
		if !doublestar.ValidatePattern(normalize(p)) {
			return errors.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// 🏗️ Build walks the source root and maps every selected file to its destination.
// It only lists directories; nothing is created.
func Build(ctx context.Context, opts Options) (*FileMapping, error) {
	if err := opts.validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}
	logger := zerolog.Ctx(ctx)

	srcRoot, err := filepath.Abs(opts.SourceRoot)
	if err != nil {
		return nil, errors.Errorf("resolving source root: %w", err)
	}
	dstRoot, err := filepath.Abs(opts.DestinationRoot)
	if err != nil {
		return nil, errors.Errorf("resolving destination root: %w", err)
	}

	c := newClassifier(opts)

	// a destination inside the source tree holds output, never input
	skip := ""
	if rel, err := filepath.Rel(srcRoot, dstRoot); err == nil && rel != "." && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		skip = filepath.ToSlash(rel)
	}

	var rels []string
	if err := walk(srcRoot, "", skip, &rels); err != nil {
		return nil, errors.Errorf("walking source root: %w", err)
	}

	entries := make([]FileEntry, 0, len(rels))
	byDest := make(map[string]string, len(rels))
	found := make(map[string]bool, len(rels))

	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("building mapping: %w", err)
		}

		role, ok := c.classify(rel)
		if !ok {
			continue
		}
		ext := path.Ext(rel)
		if opts.Mode == ModeAll && !opts.Table.Recognizes(ext, role) && opts.Table.Produces(ext) {
			logger.Debug().Str("path", rel).Msg("skipping translated output")
			continue
		}
		found[rel] = true

		if !opts.Table.Recognizes(ext, role) {
			return nil, &ClassificationError{Path: rel, Ext: ext, Role: role, Err: rewrite.ErrUnrecognized}
		}
		destRel, err := opts.Table.Rewrite(rel, role)
		if err != nil {
			return nil, &ClassificationError{Path: rel, Ext: ext, Role: role, Err: err}
		}

		dest := filepath.Join(dstRoot, filepath.FromSlash(destRel))
		if prev, dup := byDest[dest]; dup {
			return nil, errors.Errorf("%s and %s both map to %s: %w", prev, rel, dest, ErrDestinationCollision)
		}
		byDest[dest] = rel

		entries = append(entries, FileEntry{
			Source:      filepath.Join(srcRoot, filepath.FromSlash(rel)),
			Destination: dest,
			Rel:         rel,
			Role:        role,
		})
	}

	if opts.Mode == ModeManifest {
		for _, want := range c.manifestPaths() {
			if !found[want] {
				logger.Warn().Str("path", want).Msg("manifest entry not found under source root")
			}
		}
	}

	logger.Debug().
		Int("files", len(rels)).
		Int("mapped", len(entries)).
		Str("mode", string(opts.Mode)).
		Msg("mapping built")

	return New(srcRoot, dstRoot, entries), nil
}

// walk appends slash-separated relative paths, files before subdirectories,
// each group in lexicographic order. The directory skip is not entered.
func walk(root, rel, skip string, out *[]string) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	ents, err := os.ReadDir(dir)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", dir, err)
	}

	var files, dirs []string
	for _, e := range ents {
		switch {
		case e.IsDir():
			dirs = append(dirs, e.Name())
		case e.Type().IsRegular():
			files = append(files, e.Name())
		case e.Type()&os.ModeSymlink != 0:
			// symlinks are mapped if they resolve to a regular file
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err == nil && info.Mode().IsRegular() {
				files = append(files, e.Name())
			}
		}
	}
	sort.Strings(files)
	sort.Strings(dirs)

	for _, f := range files {
		*out = append(*out, path.Join(rel, f))
	}
	for _, d := range dirs {
		sub := path.Join(rel, d)
		if sub == skip {
			continue
		}
		if err := walk(root, sub, skip, out); err != nil {
			return err
		}
	}
	return nil
}

type classifier struct {
	mode      Mode
	sources   map[string]bool
	headers   map[string]bool
	exclude   []string
	auxiliary []string
	defaults  []string
	ordered   []string
}

func newClassifier(opts Options) *classifier {
	c := &classifier{
		mode:      opts.Mode,
		sources:   map[string]bool{},
		headers:   map[string]bool{},
		exclude:   normalizeAll(opts.Exclude),
		auxiliary: normalizeAll(opts.Auxiliary),
		defaults:  normalizeAll(opts.DefaultExclude),
	}
	if opts.Manifest != nil {
		for _, s := range opts.Manifest.Sources {
			n := normalize(s)
			c.sources[n] = true
			c.ordered = append(c.ordered, n)
		}
		for _, h := range opts.Manifest.Headers {
			n := normalize(h)
			c.headers[n] = true
			c.ordered = append(c.ordered, n)
		}
		c.auxiliary = append(c.auxiliary, normalizeAll(opts.Manifest.Auxiliary)...)
	}
	return c
}

func (c *classifier) classify(rel string) (rewrite.Role, bool) {
	if matchAny(c.exclude, rel) {
		return 0, false
	}
	switch c.mode {
	case ModeAll:
		if matchAny(c.auxiliary, rel) {
			return rewrite.RoleAuxiliary, true
		}
		if matchAny(c.defaults, rel) {
			return 0, false
		}
		return rewrite.RoleSource, true
	default:
		if c.sources[rel] {
			return rewrite.RoleSource, true
		}
		if c.headers[rel] {
			return rewrite.RoleHeader, true
		}
		if matchAny(c.auxiliary, rel) {
			return rewrite.RoleAuxiliary, true
		}
		return 0, false
	}
}

func (c *classifier) manifestPaths() []string {
	return c.ordered
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return path.Clean(p)
}

func normalizeAll(ps []string) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, normalize(p))
	}
	return out
}
