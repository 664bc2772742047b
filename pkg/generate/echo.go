package generate

import (
	"context"
)

func init() {
	Register("echo", func(ctx context.Context, s Settings) (Client, error) {
		return Echo{}, nil
	})
}

// 🔁 Echo answers every request with the content of its last message. It needs
// no network and is used for offline pipeline checks.
type Echo struct{}

func (Echo) Generate(ctx context.Context, req Request) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, ErrInvalidRequest
	}
	text := req.Messages[len(req.Messages)-1].Content
	if n := req.Params.MaxLength; n > 0 && len(text) > n {
		text = text[:n]
	}
	return []Result{{GeneratedText: text}}, nil
}
