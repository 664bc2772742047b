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
	"sort"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrRateLimited is returned when the backend refuses the call with a rate limit
	ErrRateLimited = errors.Base("rate limited")
	// ErrEmptyResponse is returned when the backend answers without any generated text
	ErrEmptyResponse = errors.Base("empty response")
	// ErrInvalidRequest is returned for requests the backend cannot encode
	ErrInvalidRequest = errors.Base("invalid request")
)

// Message roles understood by every backend
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// 💬 Message is one role-tagged piece of a request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ⚙️ Params are the generation parameters sent with every request
type Params struct {
	MaxNewTokens int      `json:"max_new_tokens,omitempty"`
	MaxLength    int      `json:"max_length,omitempty"`
	BatchSize    int      `json:"batch_size,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// 📨 Request is one call to the backend
type Request struct {
	Messages []Message `json:"messages"`
	Params   Params    `json:"params"`
}

// 📬 Result is one generated text. Backends may return several per request.
type Result struct {
	GeneratedText string `json:"generated_text"`
}

// 🤖 Client submits requests to a text-generation backend
type Client interface {
	Generate(ctx context.Context, req Request) ([]Result, error)
}

// ClientFunc adapts a function to Client
type ClientFunc func(ctx context.Context, req Request) ([]Result, error)

func (f ClientFunc) Generate(ctx context.Context, req Request) ([]Result, error) {
	return f(ctx, req)
}

// 🔧 Settings select and configure a backend
type Settings struct {
	Provider  string            `mapstructure:"provider"`
	Model     string            `mapstructure:"model"`
	BaseURL   string            `mapstructure:"base_url"`
	APIKey    string            `mapstructure:"api_key"`
	APIKeyEnv string            `mapstructure:"api_key_env"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	CacheSize int               `mapstructure:"cache_size"`
	Headers   map[string]string `mapstructure:"headers"`
}

// 🏭 Factory builds a client from settings
type Factory func(ctx context.Context, s Settings) (Client, error)

var (
	registryMu sync.RWMutex
	// 🗺️ factories maps provider names to constructors
	factories = map[string]Factory{}
)

// 📝 Register makes a provider available to New
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = f
}

// Providers lists registered provider names
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for k := range factories {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// 🎯 New builds the client for s.Provider, wrapped in a response cache when
// s.CacheSize is positive
func New(ctx context.Context, s Settings) (Client, error) {
	registryMu.RLock()
	f, ok := factories[s.Provider]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown provider %q (known: %v)", s.Provider, Providers())
	}

	c, err := f(ctx, s)
	if err != nil {
		return nil, errors.Errorf("creating %s client: %w", s.Provider, err)
	}

	if s.CacheSize > 0 {
		c, err = Cached(c, s.CacheSize)
		if err != nil {
			return nil, errors.Errorf("creating response cache: %w", err)
		}
	}
	return c, nil
}
