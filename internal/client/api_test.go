package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_CreateSendsDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/links", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var d Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		assert.Equal(t, Draft{Title: "Example", URL: "https://example.com", Description: "test"}, d)

		_, _ = w.Write([]byte(`{"id":5,"title":"Example","url":"https://example.com","description":"test"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL+"/", srv.Client())
	b, err := api.Create(context.Background(), Draft{Title: "Example", URL: "https://example.com", Description: "test"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), b.ID)
	assert.Equal(t, "Example", *b.Title)
}

func TestAPI_DeleteAndUpdatePaths(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"url":"https://example.com"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, srv.Client())
	require.NoError(t, api.Delete(context.Background(), 7))
	_, err := api.Update(context.Background(), 7, Draft{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"DELETE /api/links/7", "PUT /api/links/7"}, seen)
}

func TestAPI_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch metadata","details":"Failed to scrape: timeout"}`))
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL, srv.Client()).Metadata(context.Background(), "https://example.com")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to fetch metadata: Failed to scrape: timeout", apiErr.Message)
}

func TestAPI_MetadataEncodesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com/a?b=c", r.URL.Query().Get("url"))
		_, _ = w.Write([]byte(`{"title":"Example"}`))
	}))
	defer srv.Close()

	meta, err := NewAPI(srv.URL, srv.Client()).Metadata(context.Background(), "https://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "Example", meta["title"])
}
