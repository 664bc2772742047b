package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🗃️ CachedClient remembers successful results keyed by request content
type CachedClient struct {
	next  Client
	cache *lru.Cache[string, []Result]
}

// Cached wraps next with an LRU of size entries
func Cached(next Client, size int) (*CachedClient, error) {
	cache, err := lru.New[string, []Result](size)
	if err != nil {
		return nil, errors.Errorf("creating lru: %w", err)
	}
	return &CachedClient{next: next, cache: cache}, nil
}

// Key returns the cache key of req
func Key(req Request) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", errors.Errorf("encoding request: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func (c *CachedClient) Generate(ctx context.Context, req Request) ([]Result, error) {
	key, err := Key(req)
	if err != nil {
		return nil, err
	}
	if hit, ok := c.cache.Get(key); ok {
		zerolog.Ctx(ctx).Debug().Str("key", key[:12]).Msg("response cache hit")
		return clone(hit), nil
	}

	res, err := c.next.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, clone(res))
	return res, nil
}

// Len returns the number of cached responses
func (c *CachedClient) Len() int { return c.cache.Len() }

func clone(r []Result) []Result {
	out := make([]Result, len(r))
	copy(out, r)
	return out
}
