package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func createTestServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = fmt.Fprintln(w, body)
	}))
}

func TestHTMLProvider_ExtractsHead(t *testing.T) {
	srv := createTestServer(http.StatusOK, `<html lang="en"><head>
<title> Test Title </title>
<meta name="description" content="A test page">
<meta name="keywords" content="go,bookmarks">
<meta property="og:image" content="https://example.com/og.png">
</head><body></body></html>`)
	defer srv.Close()

	meta, err := NewHTMLProvider(srv.Client()).FetchPageMetadata(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPageMetadata returned error: %v", err)
	}

	want := map[string]any{
		"title":       "Test Title",
		"description": "A test page",
		"keywords":    "go,bookmarks",
		"ogImage":     "https://example.com/og.png",
		"language":    "en",
		"sourceURL":   srv.URL,
		"statusCode":  http.StatusOK,
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("meta[%q] = %v, want %v", k, meta[k], v)
		}
	}
}

func TestHTMLProvider_OGDescriptionFallback(t *testing.T) {
	srv := createTestServer(http.StatusOK, `<head><meta property="og:description" content="from og"></head>`)
	defer srv.Close()

	meta, err := NewHTMLProvider(srv.Client()).FetchPageMetadata(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPageMetadata returned error: %v", err)
	}
	if meta["description"] != "from og" {
		t.Fatalf("unexpected description %v", meta["description"])
	}
	if _, ok := meta["title"]; ok {
		t.Fatal("expected no title key for a page without title")
	}
}

func TestHTMLProvider_ErrorStatus(t *testing.T) {
	srv := createTestServer(http.StatusNotFound, `not found`)
	defer srv.Close()

	if _, err := NewHTMLProvider(srv.Client()).FetchPageMetadata(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 page")
	}
}

func TestHTMLProvider_InvalidURL(t *testing.T) {
	if _, err := NewHTMLProvider(nil).FetchPageMetadata(context.Background(), "://bad"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestHTMLProvider_PermanentFailures(t *testing.T) {
	notFound := createTestServer(http.StatusNotFound, `not found`)
	defer notFound.Close()
	unavailable := createTestServer(http.StatusServiceUnavailable, `try later`)
	defer unavailable.Close()

	p := NewHTMLProvider(notFound.Client())

	if _, err := p.FetchPageMetadata(context.Background(), notFound.URL); !IsPermanent(err) {
		t.Fatalf("expected 404 to be permanent, got %v", err)
	}
	if _, err := p.FetchPageMetadata(context.Background(), "mailto:someone@example.com"); !IsPermanent(err) {
		t.Fatalf("expected unsupported scheme to be permanent, got %v", err)
	}
	if _, err := p.FetchPageMetadata(context.Background(), unavailable.URL); err == nil || IsPermanent(err) {
		t.Fatalf("expected 503 to be retryable, got %v", err)
	}
}
