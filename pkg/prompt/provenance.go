package prompt

import (
	"strings"
)

// commentStyle is how a destination language writes a block of comment lines
type commentStyle struct {
	open, line, close string
}

var (
	cStyle       = commentStyle{open: "/* ", line: " * ", close: " */"}
	fortranStyle = commentStyle{open: "! ", line: "! ", close: ""}
	hashStyle    = commentStyle{open: "# ", line: "# ", close: ""}
)

var styles = map[string]commentStyle{
	".f": fortranStyle, ".for": fortranStyle, ".f77": fortranStyle,
	".f90": fortranStyle, ".F90": fortranStyle, ".f95": fortranStyle, ".f03": fortranStyle, ".f08": fortranStyle,
	".py": hashStyle, ".sh": hashStyle, ".rb": hashStyle, ".pl": hashStyle, ".r": hashStyle, ".R": hashStyle,
	".jl": hashStyle, ".toml": hashStyle, ".yaml": hashStyle, ".yml": hashStyle, ".cmake": hashStyle,
}

func styleFor(ext string) commentStyle {
	if s, ok := styles[ext]; ok {
		return s
	}
	return cStyle
}

// 🏷️ Provenance returns the comment block written at the top of every
// destination. It records the instruction text and hints used, with comment
// syntax chosen by the destination extension.
func Provenance(tmpl *Template, hints []string, destExt string) string {
	style := styleFor(destExt)

	var lines []string
	for _, s := range tmpl.segments {
		lines = append(lines, strings.Split(s.Content, "\n")...)
	}
	lines = append(lines, hints...)

	var b strings.Builder
	b.WriteString(style.open)
	b.WriteString("LLM INSTRUCTIONS START\n")
	for _, l := range lines {
		// a literal terminator would end a C block early
		if style == cStyle {
			l = strings.ReplaceAll(l, "*/", "* /")
		}
		b.WriteString(strings.TrimRight(style.line+l, " "))
		b.WriteString("\n")
	}
	b.WriteString(style.line)
	b.WriteString("LLM INSTRUCTIONS END")
	b.WriteString(style.close)
	b.WriteString("\n\n")
	return b.String()
}
