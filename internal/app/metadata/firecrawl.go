package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	promMetrics "github.com/sifan077/Rinku/internal/infra/prometheus"
)

const firecrawlScrapePath = "/v1/scrape"

// FirecrawlProvider scrapes pages through the Firecrawl API and returns the
// metadata object of the scrape result.
type FirecrawlProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewFirecrawlProvider returns a provider for the given API key and base URL.
// A nil client selects a default client with a 30s timeout.
func NewFirecrawlProvider(apiKey, baseURL string, client *http.Client) *FirecrawlProvider {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &FirecrawlProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Metadata Metadata `json:"metadata"`
	} `json:"data"`
}

func (p *FirecrawlProvider) FetchPageMetadata(ctx context.Context, pageURL string) (meta Metadata, err error) {
	defer func() {
		promMetrics.MetadataFetches.WithLabelValues("firecrawl", promMetrics.Result(err)).Inc()
	}()

	body, err := json.Marshal(scrapeRequest{URL: pageURL, Formats: []string{"markdown", "html"}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+firecrawlScrapePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read scrape response: %w", err)
	}

	var out scrapeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			err := fmt.Errorf("Failed to scrape: status %d", res.StatusCode)
			if permanentStatus(res.StatusCode) {
				return nil, permanent(err)
			}
			return nil, err
		}
		return nil, fmt.Errorf("decode scrape response: %w", err)
	}

	if !out.Success {
		reason := out.Error
		if reason == "" {
			reason = fmt.Sprintf("status %d", res.StatusCode)
		}
		return nil, permanent(fmt.Errorf("Failed to scrape: %s", reason))
	}

	if out.Data.Metadata == nil {
		return Metadata{}, nil
	}
	return out.Data.Metadata, nil
}
