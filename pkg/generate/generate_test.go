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

package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t})
	return logger.WithContext(context.Background())
}

func userRequest(content string) Request {
	return Request{
		Messages: []Message{{Role: RoleUser, Content: content}},
		Params:   Params{MaxNewTokens: 4096, BatchSize: 8},
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var got oaRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"int x;"}},{"index":1,"message":{"content":"int y;"}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI(Settings{BaseURL: srv.URL + "/v1/", APIKey: "secret", Model: "local-model"})
	require.NoError(t, err)

	res, err := c.Generate(testContext(t), userRequest("translate this"))
	require.NoError(t, err)

	assert.Equal(t, []Result{{GeneratedText: "int x;"}, {GeneratedText: "int y;"}}, res, "every choice should be returned in order")
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "local-model", got.Model)
	assert.Equal(t, 4096, got.MaxTokens, "max_new_tokens should map to max_tokens")
	assert.Equal(t, []oaMessage{{Role: "user", Content: "translate this"}}, got.Messages)
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate_limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrRateLimited))
			},
		},
		{
			name:   "server_error",
			status: http.StatusBadGateway,
			body:   "bad gateway",
			check: func(t *testing.T, err error) {
				var ue *UpstreamError
				require.True(t, errors.As(err, &ue))
				assert.Equal(t, http.StatusBadGateway, ue.Status)
				assert.Equal(t, "bad gateway", ue.Message)
				assert.True(t, ue.Temporary())
			},
		},
		{
			name:   "bad_request",
			status: http.StatusBadRequest,
			body:   "context length exceeded",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrInvalidRequest))
				assert.Contains(t, err.Error(), "context length exceeded")
			},
		},
		{
			name:   "no_choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrEmptyResponse))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewOpenAI(Settings{BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = c.Generate(testContext(t), userRequest("x"))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAIRequiresKeyForHostedAPI(t *testing.T) {
	t.Setenv("TRANSLATERC_TEST_MISSING_KEY", "")
	_, err := NewOpenAI(Settings{APIKeyEnv: "TRANSLATERC_TEST_MISSING_KEY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRANSLATERC_TEST_MISSING_KEY")
}

func TestOpenAIHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := NewOpenAI(Settings{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()
	_, err = c.Generate(ctx, userRequest("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGeminiContents(t *testing.T) {
	msgs, system := contents(Request{Messages: []Message{
		{Role: RoleSystem, Content: "You translate Fortran."},
		{Role: RoleUser, Content: "chunk 1"},
		{Role: RoleAssistant, Content: "answer 1"},
		{Role: RoleUser, Content: "chunk 2"},
	}})

	require.NotNil(t, system)
	assert.Equal(t, "You translate Fortran.", system.Parts[0].Text)
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "model", msgs[1].Role)
	assert.Equal(t, "chunk 2", msgs[2].Parts[0].Text)
}

func TestEcho(t *testing.T) {
	res, err := Echo{}.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "first"}, {Role: RoleUser, Content: "hello world"}},
		Params:   Params{MaxLength: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []Result{{GeneratedText: "hello"}}, res)

	_, err = Echo{}.Generate(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestCached(t *testing.T) {
	calls := 0
	fail := false
	next := ClientFunc(func(ctx context.Context, req Request) ([]Result, error) {
		calls++
		if fail {
			return nil, errors.New("backend down")
		}
		return []Result{{GeneratedText: "out:" + req.Messages[0].Content}}, nil
	})

	c, err := Cached(next, 8)
	require.NoError(t, err)
	ctx := testContext(t)

	first, err := c.Generate(ctx, userRequest("a"))
	require.NoError(t, err)
	again, err := c.Generate(ctx, userRequest("a"))
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, calls, "identical requests should hit the cache")

	changed := userRequest("a")
	changed.Params.MaxNewTokens = 10
	_, err = c.Generate(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "params are part of the key")

	fail = true
	_, err = c.Generate(ctx, userRequest("b"))
	require.Error(t, err)
	assert.Equal(t, 2, c.Len(), "failures are not cached")
}

func TestRegistry(t *testing.T) {
	assert.Subset(t, Providers(), []string{"echo", "gemini", "openai"})

	c, err := New(context.Background(), Settings{Provider: "echo", CacheSize: 4})
	require.NoError(t, err)
	_, ok := c.(*CachedClient)
	assert.True(t, ok, "a positive cache size should wrap the client")

	_, err = New(context.Background(), Settings{Provider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
