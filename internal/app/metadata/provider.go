// Package metadata fetches page metadata for bookmark URLs through an
// external provider. Results are passed through to API clients unmodified.
package metadata

import (
	"context"
	"net/http"
	"time"
)

// Metadata is the provider-supplied description of a page. Its keys are
// owned by the provider.
type Metadata map[string]any

// Provider extracts metadata for a page URL.
type Provider interface {
	FetchPageMetadata(ctx context.Context, url string) (Metadata, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, url string) (Metadata, error)

func (f ProviderFunc) FetchPageMetadata(ctx context.Context, url string) (Metadata, error) {
	return f(ctx, url)
}

const defaultHTTPTimeout = 30 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultHTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
