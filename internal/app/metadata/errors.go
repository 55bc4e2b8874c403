package metadata

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrUnscrapable marks failures that retrying the same URL cannot fix: an
// unsupported scheme, a 4xx page, or a provider refusing the scrape.
var ErrUnscrapable = errors.New("metadata: page cannot be scraped")

// permanentError keeps the wrapped message intact for API clients while
// matching ErrUnscrapable.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string        { return e.err.Error() }
func (e *permanentError) Unwrap() error        { return e.err }
func (e *permanentError) Is(target error) bool { return target == ErrUnscrapable }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err will recur on every retry.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrUnscrapable)
}

// checkScrapable rejects URLs no provider can fetch.
func checkScrapable(pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return permanent(fmt.Errorf("parse url: %w", err))
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return permanent(fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return permanent(fmt.Errorf("url %q has no host", pageURL))
	}
	return nil
}

// permanentStatus reports whether an HTTP status will not change on retry.
// Timeouts and rate limiting are retried.
func permanentStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return false
	}
	return code >= 400 && code < 500
}
