package prompt

import (
	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 💡 Hinter returns extra instruction lines for one file
type Hinter interface {
	Hints(rel string) []string
}

// HintRule attaches lines to files matching Glob
type HintRule struct {
	Glob  string   `toml:"glob" yaml:"glob" json:"glob" hcl:"glob,label"`
	Lines []string `toml:"lines" yaml:"lines" json:"lines" hcl:"lines"`
}

// GlobHinter applies every matching rule in declaration order
type GlobHinter struct {
	rules []HintRule
}

// NewGlobHinter validates rules
func NewGlobHinter(rules []HintRule) (*GlobHinter, error) {
	for i, r := range rules {
		if !doublestar.ValidatePattern(r.Glob) {
			return nil, errors.Errorf("hint %d: invalid glob %q", i, r.Glob)
		}
	}
	cp := make([]HintRule, len(rules))
	copy(cp, rules)
	return &GlobHinter{rules: cp}, nil
}

func (h *GlobHinter) Hints(rel string) []string {
	if h == nil {
		return nil
	}
	var out []string
	for _, r := range h.rules {
		if ok, _ := doublestar.Match(r.Glob, rel); ok {
			out = append(out, r.Lines...)
		}
	}
	return out
}

// StaticHinter returns the same lines for every file
type StaticHinter []string

func (s StaticHinter) Hints(string) []string { return s }

// Hinters chains several hinters
type Hinters []Hinter

func (hs Hinters) Hints(rel string) []string {
	var out []string
	for _, h := range hs {
		if h != nil {
			out = append(out, h.Hints(rel)...)
		}
	}
	return out
}
