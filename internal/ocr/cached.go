package ocr

import (
	"context"

	"github.com/avolkov/recordlens/internal/cache"
)

// CachedPort wraps a Port with content-hash memoization. Constructed by
// the host; the pipeline sees an ordinary Port.
type CachedPort struct {
	inner Port
	store cache.Cache
}

// NewCachedPort wraps port with the given cache
func NewCachedPort(port Port, store cache.Cache) *CachedPort {
	return &CachedPort{inner: port, store: store}
}

// Analyze returns the cached text for identical bytes, or delegates to
// the wrapped port. Errors are never cached: config errors must surface
// every time and empty results may succeed after a service hiccup.
func (p *CachedPort) Analyze(ctx context.Context, data []byte) (string, error) {
	key := cache.KeyForBytes(data)
	if text, found := p.store.Get(key); found {
		return string(text), nil
	}

	text, err := p.inner.Analyze(ctx, data)
	if err != nil {
		return "", err
	}

	_ = p.store.Set(key, []byte(text), 0)
	return text, nil
}
