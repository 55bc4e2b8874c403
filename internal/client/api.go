// Package client holds the bookmark client: an HTTP client for the API and
// the in-memory state the views render from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sifan077/Rinku/internal/app/model"
)

// DefaultBaseURL is used when RINKU_API_URL is not set.
const DefaultBaseURL = "http://localhost:5000"

// Draft is the editable form of a bookmark.
type Draft struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Backend is the subset of the API the Store drives.
type Backend interface {
	List(ctx context.Context) ([]model.Bookmark, error)
	Create(ctx context.Context, d Draft) (*model.Bookmark, error)
	Update(ctx context.Context, id int64, d Draft) (*model.Bookmark, error)
	Delete(ctx context.Context, id int64) error
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// API talks to the bookmark service. Requests carry no timeout and are never
// retried.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI returns a client for baseURL. A nil httpClient selects a client
// without a timeout.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (a *API) List(ctx context.Context) ([]model.Bookmark, error) {
	var out []model.Bookmark
	if err := a.do(ctx, http.MethodGet, "/api/links", nil, &out); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return out, nil
}

func (a *API) Create(ctx context.Context, d Draft) (*model.Bookmark, error) {
	var out model.Bookmark
	if err := a.do(ctx, http.MethodPost, "/api/links", d, &out); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return &out, nil
}

func (a *API) Update(ctx context.Context, id int64, d Draft) (*model.Bookmark, error) {
	var out model.Bookmark
	if err := a.do(ctx, http.MethodPut, fmt.Sprintf("/api/links/%d", id), d, &out); err != nil {
		return nil, fmt.Errorf("update link %d: %w", id, err)
	}
	return &out, nil
}

func (a *API) Delete(ctx context.Context, id int64) error {
	if err := a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/links/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete link %d: %w", id, err)
	}
	return nil
}

// Metadata asks the service to scrape pageURL.
func (a *API) Metadata(ctx context.Context, pageURL string) (map[string]any, error) {
	var out map[string]any
	path := "/api/metadata?" + url.Values{"url": {pageURL}}.Encode()
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	return out, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeAPIError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	_ = json.NewDecoder(io.LimitReader(res.Body, 64*1024)).Decode(&payload)

	msg := payload.Error
	if payload.Details != "" {
		msg += ": " + payload.Details
	}
	return &APIError{Status: res.StatusCode, Message: msg}
}
