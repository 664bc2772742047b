package text

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// ReplacementRule defines a single rewrite of generated text
type ReplacementRule struct {
	// FromText is the text to replace, or a pattern when Regexp is set
	FromText string `json:"from_text" yaml:"from_text" toml:"from_text" hcl:"from_text"`

	// ToText is the replacement text. With Regexp it may use $1 style references.
	ToText string `json:"to_text" yaml:"to_text" toml:"to_text" hcl:"to_text"`

	// Regexp treats FromText as a multi-line regular expression
	Regexp bool `json:"regexp,omitempty" yaml:"regexp,omitempty" toml:"regexp,omitempty" hcl:"regexp,optional"`

	// FileFilterGlob limits the rule to destinations matching this doublestar glob,
	// relative to the destination root. Empty matches all.
	FileFilterGlob string `json:"file_filter_glob,omitempty" yaml:"file_filter_glob,omitempty" toml:"file_filter_glob,omitempty" hcl:"file_filter_glob,optional"`
}

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	WasModified      bool
	ReplacementCount int
	OriginalContent  []byte
	ModifiedContent  []byte
}

type compiledRule struct {
	ReplacementRule
	re *regexp.Regexp
}

// 🔁 SimpleTextReplacer applies validated replacement rules to generated text
type SimpleTextReplacer struct {
	rules []compiledRule
}

// NewSimpleTextReplacer validates and compiles rules
func NewSimpleTextReplacer(rules []ReplacementRule) (*SimpleTextReplacer, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	r := &SimpleTextReplacer{rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		cr := compiledRule{ReplacementRule: rule}
		if rule.Regexp {
			// validated above
			cr.re = regexp.MustCompile("(?m)" + rule.FromText)
		}
		r.rules = append(r.rules, cr)
	}
	return r, nil
}

// Len returns the number of rules
func (r *SimpleTextReplacer) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Replace applies every rule whose glob matches path to s, returning the result
// and the number of replacements made. path is slash separated.
func (r *SimpleTextReplacer) Replace(path, s string) (string, int) {
	if r == nil {
		return s, 0
	}
	count := 0
	for _, rule := range r.rules {
		if rule.FileFilterGlob != "" {
			if ok, _ := doublestar.Match(rule.FileFilterGlob, filepath.ToSlash(path)); !ok {
				continue
			}
		}
		if rule.re != nil {
			n := len(rule.re.FindAllStringIndex(s, -1))
			if n > 0 {
				s = rule.re.ReplaceAllString(s, rule.ToText)
				count += n
			}
			continue
		}
		if n := strings.Count(s, rule.FromText); n > 0 {
			s = strings.ReplaceAll(s, rule.FromText, rule.ToText)
			count += n
		}
	}
	return s, count
}

// ReplaceText reads content fully and applies the rules for path
func (r *SimpleTextReplacer) ReplaceText(ctx context.Context, content io.Reader, path string) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	modified, count := r.Replace(path, string(originalContent))
	return &ReplacementResult{
		OriginalContent:  originalContent,
		ModifiedContent:  []byte(modified),
		ReplacementCount: count,
		WasModified:      count > 0 && modified != string(originalContent),
	}, nil
}

// ValidateRules checks that all rules are usable
func ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: from_text is required", i)
		}
		if rule.Regexp {
			if _, err := regexp.Compile("(?m)" + rule.FromText); err != nil {
				return errors.Errorf("rule %d: compiling from_text: %w", i, err)
			}
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePathPattern(rule.FileFilterGlob) {
			return errors.Errorf("rule %d: invalid file_filter_glob %q", i, rule.FileFilterGlob)
		}
	}
	return nil
}
