package generate

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

func init() {
	Register("gemini", func(ctx context.Context, s Settings) (Client, error) {
		return NewGemini(ctx, s)
	})
}

// 💎 Gemini uses the Google Gen AI SDK
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini builds a Gemini client. Without an explicit key the SDK reads
// GOOGLE_API_KEY or GEMINI_API_KEY.
func NewGemini(ctx context.Context, s Settings) (*Gemini, error) {
	if s.Model == "" {
		s.Model = defaultGeminiModel
	}
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI, APIKey: s.APIKey}
	if cfg.APIKey == "" && s.APIKeyEnv != "" {
		cfg.APIKey = os.Getenv(s.APIKeyEnv)
	}
	if s.BaseURL != "" || len(s.Headers) > 0 {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: s.BaseURL}
		for k, v := range s.Headers {
			if cfg.HTTPOptions.Headers == nil {
				cfg.HTTPOptions.Headers = map[string][]string{}
			}
			cfg.HTTPOptions.Headers[k] = []string{v}
		}
	}

	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Errorf("creating genai client: %w", err)
	}
	return &Gemini{cli: cli, model: s.Model}, nil
}

// contents maps chat messages onto Gemini contents. System messages become the
// system instruction; assistant turns use the "model" role.
func contents(req Request) ([]*genai.Content, *genai.Content) {
	var system []string
	out := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			out = append(out, &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: m.Content}}})
		default:
			out = append(out, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	if len(system) == 0 {
		return out, nil
	}
	return out, &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n")}}}
}

// 📡 Generate sends one GenerateContent call and returns one result per candidate
func (g *Gemini) Generate(ctx context.Context, req Request) ([]Result, error) {
	msgs, system := contents(req)
	if len(msgs) == 0 {
		return nil, errors.Errorf("no user or assistant messages: %w", ErrInvalidRequest)
	}

	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if req.Params.MaxNewTokens > 0 {
		cfg.MaxOutputTokens = int32(req.Params.MaxNewTokens)
	}
	if req.Params.Temperature != nil {
		t := float32(*req.Params.Temperature)
		cfg.Temperature = &t
	}

	zerolog.Ctx(ctx).Debug().Str("model", g.model).Int("contents", len(msgs)).Msg("sending generate content")

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, msgs, cfg)
	if err != nil {
		return nil, errors.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	results := make([]Result, 0, len(resp.Candidates))
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if p != nil && !p.Thought {
				b.WriteString(p.Text)
			}
		}
		results = append(results, Result{GeneratedText: b.String()})
	}
	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}
	return results, nil
}
