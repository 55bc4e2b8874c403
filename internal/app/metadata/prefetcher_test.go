package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sifan077/Rinku/internal/app/model"
)

type recordingWarmer struct {
	urls []string
	err  error
}

func (w *recordingWarmer) Warm(ctx context.Context, url string) error {
	w.urls = append(w.urls, url)
	return w.err
}

func encodeEvent(t *testing.T, typ model.BookmarkEventType, url string) []byte {
	t.Helper()
	data, err := json.Marshal(model.BookmarkEvent{
		ID:         "evt",
		Type:       typ,
		BookmarkID: 1,
		URL:        url,
		Timestamp:  time.Now(),
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func TestPrefetcher_WarmsOncePerURL(t *testing.T) {
	w := &recordingWarmer{}
	p := NewPrefetcher(nil, w, nil)

	for _, typ := range []model.BookmarkEventType{model.BookmarkCreated, model.BookmarkUpdated} {
		if err := p.Handle(encodeEvent(t, typ, "https://example.com")); err != nil {
			t.Fatalf("Handle returned error: %v", err)
		}
	}
	if err := p.Handle(encodeEvent(t, model.BookmarkCreated, "https://other.example")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(w.urls) != 2 {
		t.Fatalf("expected 2 warms, got %v", w.urls)
	}
}

func TestPrefetcher_IgnoresDeletesAndGarbage(t *testing.T) {
	w := &recordingWarmer{}
	p := NewPrefetcher(nil, w, nil)

	if err := p.Handle(encodeEvent(t, model.BookmarkDeleted, "https://example.com")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if err := p.Handle([]byte("not json")); err != nil {
		t.Fatalf("expected undecodable event to be dropped, got %v", err)
	}
	if err := p.Handle(encodeEvent(t, model.BookmarkCreated, "")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(w.urls) != 0 {
		t.Fatalf("expected no warms, got %v", w.urls)
	}
}

func TestPrefetcher_TransientFailureIsRetried(t *testing.T) {
	w := &recordingWarmer{err: errors.New("connection reset")}
	p := NewPrefetcher(nil, w, nil)

	err := p.Handle(encodeEvent(t, model.BookmarkCreated, "https://example.com"))
	if err == nil {
		t.Fatal("expected error so the event is redelivered")
	}
	if IsPermanent(err) {
		t.Fatalf("expected transient error, got %v", err)
	}

	w.err = nil
	if err := p.Handle(encodeEvent(t, model.BookmarkCreated, "https://example.com")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(w.urls) != 2 {
		t.Fatalf("expected failed url to be retried, got %v", w.urls)
	}
}

func TestPrefetcher_PermanentFailureIsNotRetried(t *testing.T) {
	w := &recordingWarmer{err: permanent(errors.New("Failed to scrape: blocked"))}
	p := NewPrefetcher(nil, w, nil)

	err := p.Handle(encodeEvent(t, model.BookmarkCreated, "https://example.com/gone"))
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}

	for i := 0; i < 10; i++ {
		if err := p.Handle(encodeEvent(t, model.BookmarkUpdated, "https://example.com/gone")); err != nil {
			t.Fatalf("redelivery %d returned error: %v", i, err)
		}
	}
	if len(w.urls) != 1 {
		t.Fatalf("expected a single provider call, got %d", len(w.urls))
	}
}

func TestPrefetcher_UnsupportedSchemeNeverReachesProvider(t *testing.T) {
	fetches := 0
	provider := ProviderFunc(func(ctx context.Context, url string) (Metadata, error) {
		fetches++
		return NewHTMLProvider(nil).FetchPageMetadata(ctx, url)
	})
	cached := NewCachedProvider(provider, newMemoryCache(), time.Minute, nil)
	p := NewPrefetcher(nil, cached, nil)

	errs := 0
	for i := 0; i < 1000; i++ {
		if err := p.Handle(encodeEvent(t, model.BookmarkCreated, "mailto:someone@example.com")); err != nil {
			if !IsPermanent(err) {
				t.Fatalf("expected permanent error, got %v", err)
			}
			errs++
		}
	}

	if errs != 1 {
		t.Fatalf("expected one terminal error, got %d", errs)
	}
	if fetches != 0 {
		t.Fatalf("expected no provider fetches, got %d", fetches)
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		delivered uint64
		want      time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{4, 10 * time.Minute},
		{50, 10 * time.Minute},
	}
	for _, tt := range tests {
		if got := retryDelay(tt.delivered); got != tt.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tt.delivered, got, tt.want)
		}
	}

	cfg := consumerConfig()
	if cfg.MaxDeliver <= len(cfg.BackOff) {
		t.Fatalf("MaxDeliver %d must exceed the %d backoff steps", cfg.MaxDeliver, len(cfg.BackOff))
	}
	if cfg.BackOff[0] <= prefetchTimeout {
		t.Fatalf("first backoff %v must exceed the warm timeout %v", cfg.BackOff[0], prefetchTimeout)
	}
}
