package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4.1-mini"
	defaultOpenAIKeyEnv  = "OPENAI_API_KEY"
	defaultHTTPTimeout   = 120 * time.Second
)

func init() {
	Register("openai", func(ctx context.Context, s Settings) (Client, error) {
		return NewOpenAI(s)
	})
}

// 🌐 OpenAI talks to any server exposing the chat completions API
type OpenAI struct {
	url     string
	apiKey  string
	model   string
	headers map[string]string
	do      func(*http.Request) (*http.Response, error)
}

// NewOpenAI builds a chat completions client. A missing key is allowed for
// self-hosted servers that do not check it.
func NewOpenAI(s Settings) (*OpenAI, error) {
	if s.BaseURL == "" {
		s.BaseURL = defaultOpenAIBaseURL
	}
	if s.Model == "" {
		s.Model = defaultOpenAIModel
	}
	if s.APIKeyEnv == "" {
		s.APIKeyEnv = defaultOpenAIKeyEnv
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultHTTPTimeout
	}
	key := s.APIKey
	if key == "" {
		key = os.Getenv(s.APIKeyEnv)
	}
	if key == "" && s.BaseURL == defaultOpenAIBaseURL {
		return nil, errors.Errorf("missing api key: set %s", s.APIKeyEnv)
	}

	hc := &http.Client{Timeout: s.Timeout}
	return &OpenAI{
		url:     strings.TrimRight(s.BaseURL, "/") + "/chat/completions",
		apiKey:  key,
		model:   s.Model,
		headers: s.Headers,
		do:      hc.Do,
	}, nil
}

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaRequest struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
}

type oaResponse struct {
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// UpstreamError is a 5xx or 408 answer from the server
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
}

// Temporary reports whether the status suggests a retry may succeed
func (e *UpstreamError) Temporary() bool {
	return e.Status == http.StatusRequestTimeout || e.Status/100 == 5
}

func (c *OpenAI) encode(req Request) ([]byte, error) {
	if len(req.Messages) == 0 {
		return nil, errors.Errorf("no messages: %w", ErrInvalidRequest)
	}
	body := oaRequest{
		Model:       c.model,
		Messages:    make([]oaMessage, 0, len(req.Messages)),
		MaxTokens:   req.Params.MaxNewTokens,
		Temperature: req.Params.Temperature,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, oaMessage{Role: m.Role, Content: m.Content})
	}
	return json.Marshal(&body)
}

// 📡 Generate sends one chat completion and returns every choice in index order
func (c *OpenAI) Generate(ctx context.Context, req Request) ([]Result, error) {
	logger := zerolog.Ctx(ctx)

	body, err := c.encode(req)
	if err != nil {
		return nil, errors.Errorf("encoding request: %w", err)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		hreq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		if k != "" {
			hreq.Header.Set(k, v)
		}
	}

	logger.Debug().Str("model", c.model).Int("bytes", len(body)).Msg("sending chat completion")

	resp, err := c.do(hreq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Errorf("sending request: %w", ctx.Err())
		}
		return nil, errors.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.Errorf("status %d: %w", resp.StatusCode, ErrRateLimited)
	}
	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(slurp))
		if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode/100 == 5 {
			return nil, &UpstreamError{Status: resp.StatusCode, Message: msg}
		}
		return nil, errors.Errorf("status %d: %s: %w", resp.StatusCode, msg, ErrInvalidRequest)
	}

	var or oaResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, errors.Errorf("decoding response: %w", err)
	}
	if len(or.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	results := make([]Result, len(or.Choices))
	for i, ch := range or.Choices {
		results[i] = Result{GeneratedText: ch.Message.Content}
	}
	return results, nil
}
