package text

import "strings"

// DefaultCommentPrefixes are the line prefixes dropped by a default CommentFilter
var DefaultCommentPrefixes = []string{"!", "/*", "//"}

// 🧹 CommentFilter drops whole-line comments from source text before prompting.
// A line is dropped when its trimmed form is longer than two characters and
// starts with one of Prefixes. Short lines such as a lone "!" are kept.
type CommentFilter struct {
	Prefixes []string
}

// NewCommentFilter returns a filter for prefixes, or the defaults when empty
func NewCommentFilter(prefixes []string) *CommentFilter {
	if len(prefixes) == 0 {
		prefixes = DefaultCommentPrefixes
	}
	cp := make([]string, len(prefixes))
	copy(cp, prefixes)
	return &CommentFilter{Prefixes: cp}
}

// Keep reports whether line survives the filter
func (f *CommentFilter) Keep(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) <= 2 {
		return true
	}
	for _, p := range f.Prefixes {
		if strings.HasPrefix(trimmed, p) {
			return false
		}
	}
	return true
}

// Filter returns the lines that survive, in order
func (f *CommentFilter) Filter(lines []string) []string {
	if f == nil {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if f.Keep(l) {
			out = append(out, l)
		}
	}
	return out
}
