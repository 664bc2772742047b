package prompt

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/generate"
)

// Layout selects how a template becomes request messages
type Layout string

const (
	// LayoutSingle sends one user message holding instructions, hints and chunk
	LayoutSingle Layout = "single"
	// LayoutChat sends each segment as its own message, chunk attached to the last
	LayoutChat Layout = "chat"
)

// 🛠️ Builder renders requests from a template. It holds no per-call state and
// is safe to reuse for every chunk of every file.
type Builder struct {
	tmpl   *Template
	layout Layout
	params generate.Params
}

// NewBuilder returns a builder for tmpl. An empty layout means LayoutSingle.
func NewBuilder(tmpl *Template, layout Layout, params generate.Params) (*Builder, error) {
	if tmpl == nil {
		return nil, errors.Errorf("template is required")
	}
	switch layout {
	case "":
		layout = LayoutSingle
	case LayoutSingle, LayoutChat:
	default:
		return nil, errors.Errorf("unknown layout %q", layout)
	}
	return &Builder{tmpl: tmpl, layout: layout, params: params}, nil
}

// Template returns the builder's template
func (b *Builder) Template() *Template { return b.tmpl }

// Layout returns the builder's layout
func (b *Builder) Layout() Layout { return b.layout }

// Params returns the generation parameters attached to every request
func (b *Builder) Params() generate.Params { return b.params }

// 🎨 Render returns a new request for one chunk. history holds earlier exchanges
// for the same file and is placed before the chunk.
func (b *Builder) Render(chunkText string, hints []string, history []generate.Message) generate.Request {
	var msgs []generate.Message

	switch b.layout {
	case LayoutChat:
		segs := b.tmpl.segments
		msgs = make([]generate.Message, 0, len(segs)+len(history))
		for _, s := range segs[:len(segs)-1] {
			msgs = append(msgs, generate.Message{Role: s.Role, Content: s.Content})
		}
		msgs = append(msgs, history...)
		last := segs[len(segs)-1]
		parts := append([]string{last.Content}, hints...)
		parts = append(parts, chunkText)
		msgs = append(msgs, generate.Message{Role: last.Role, Content: strings.Join(parts, "\n")})
	default:
		parts := make([]string, 0, len(b.tmpl.segments)+len(hints)+1)
		for _, s := range b.tmpl.segments {
			parts = append(parts, s.Content)
		}
		parts = append(parts, hints...)
		parts = append(parts, chunkText)
		msgs = make([]generate.Message, 0, len(history)+1)
		msgs = append(msgs, history...)
		msgs = append(msgs, generate.Message{Role: generate.RoleUser, Content: strings.Join(parts, "\n")})
	}

	return generate.Request{Messages: msgs, Params: b.params}
}
