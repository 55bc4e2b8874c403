package metadata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memoryCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.items[url]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, url string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[url] = value
	c.ttls[url] = ttl
	return nil
}

func countingProvider(calls *int, err error) Provider {
	return ProviderFunc(func(ctx context.Context, url string) (Metadata, error) {
		*calls++
		if err != nil {
			return nil, err
		}
		return Metadata{"title": "Example", "sourceURL": url}, nil
	})
}

func TestCachedProvider_CachesSuccess(t *testing.T) {
	calls := 0
	cache := newMemoryCache()
	p := NewCachedProvider(countingProvider(&calls, nil), cache, time.Hour, nil)

	for i := 0; i < 2; i++ {
		meta, err := p.FetchPageMetadata(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("FetchPageMetadata returned error: %v", err)
		}
		if meta["title"] != "Example" {
			t.Fatalf("unexpected metadata %v", meta)
		}
	}

	if calls != 1 {
		t.Fatalf("expected one provider call, got %d", calls)
	}
	if cache.ttls["https://example.com"] != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %s", cache.ttls["https://example.com"])
	}
}

func TestCachedProvider_DoesNotCacheFailure(t *testing.T) {
	calls := 0
	cache := newMemoryCache()
	p := NewCachedProvider(countingProvider(&calls, errors.New("boom")), cache, time.Hour, nil)

	for i := 0; i < 2; i++ {
		if _, err := p.FetchPageMetadata(context.Background(), "https://example.com"); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 2 {
		t.Fatalf("expected provider to be called each time, got %d", calls)
	}
	if len(cache.items) != 0 {
		t.Fatal("expected failures not to be cached")
	}
}

func TestCachedProvider_CacheErrorFallsThrough(t *testing.T) {
	calls := 0
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	p := NewCachedProvider(countingProvider(&calls, nil), cache, time.Hour, nil)

	if _, err := p.FetchPageMetadata(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("expected provider result despite cache error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one provider call, got %d", calls)
	}
}

func TestCachedProvider_Warm(t *testing.T) {
	calls := 0
	p := NewCachedProvider(countingProvider(&calls, nil), newMemoryCache(), time.Hour, nil)

	for i := 0; i < 3; i++ {
		if err := p.Warm(context.Background(), "https://example.com"); err != nil {
			t.Fatalf("Warm returned error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected warm to fetch once, got %d", calls)
	}
}
