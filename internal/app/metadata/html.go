package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	promMetrics "github.com/sifan077/Rinku/internal/infra/prometheus"
)

const maxPageBytes = 10 * 1024 * 1024

// HTMLProvider fetches the page itself and reads metadata from its head.
// It uses the same key names as the Firecrawl metadata object so clients
// see one shape regardless of the configured provider.
type HTMLProvider struct {
	client *http.Client
}

// NewHTMLProvider returns a provider that scrapes pages directly.
func NewHTMLProvider(client *http.Client) *HTMLProvider {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &HTMLProvider{client: client}
}

func (p *HTMLProvider) FetchPageMetadata(ctx context.Context, pageURL string) (meta Metadata, err error) {
	defer func() {
		promMetrics.MetadataFetches.WithLabelValues("html", promMetrics.Result(err)).Inc()
	}()

	if err := checkScrapable(pageURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	setHeaders(req)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		err := fmt.Errorf("fetch page: unexpected status %d", res.StatusCode)
		if permanentStatus(res.StatusCode) {
			return nil, permanent(err)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	meta = Metadata{
		"sourceURL":  pageURL,
		"statusCode": res.StatusCode,
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta["title"] = title
	}
	if desc := firstAttr(doc, "content",
		"meta[name='description']",
		"meta[name='Description']",
		"meta[property='og:description']",
	); desc != "" {
		meta["description"] = desc
	}
	if kw := firstAttr(doc, "content", "meta[name='keywords']"); kw != "" {
		meta["keywords"] = kw
	}
	if og := firstAttr(doc, "content", "meta[property='og:title']"); og != "" {
		meta["ogTitle"] = og
	}
	if og := firstAttr(doc, "content", "meta[property='og:image']"); og != "" {
		meta["ogImage"] = og
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		meta["language"] = lang
	}

	return meta, nil
}

func firstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(doc.Find(sel).AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

func setHeaders(r *http.Request) {
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0")
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("Accept-Language", "en-US,en;q=0.5")
}
