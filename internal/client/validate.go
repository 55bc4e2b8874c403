package client

import (
	"net/url"
	"strings"
)

const (
	ErrURLRequired = "URL is required"
	ErrURLInvalid  = "Please enter a valid URL"
)

// ValidateURL reports whether s is an absolute URL. Special schemes (http,
// https, ftp, ws, wss) must name a host but, as browsers do, may omit or
// double the slashes after the colon: "https:example.com" and
// "http:/example.com" are accepted. file URLs may have an empty host.
func ValidateURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "file":
		return true
	case isSpecialScheme(scheme):
		return specialHost(s[len(u.Scheme)+1:]) != ""
	case u.Opaque != "":
		return true
	case strings.HasPrefix(s[len(u.Scheme):], "://"):
		return u.Host != ""
	}
	return u.Path != ""
}

// specialHost returns the host part of what follows "scheme:" for a special
// scheme, skipping any run of leading slashes.
func specialHost(rest string) string {
	rest = strings.TrimLeft(rest, `/\`)
	if i := strings.IndexAny(rest, `/\?#`); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	return rest
}

func isSpecialScheme(scheme string) bool {
	switch scheme {
	case "http", "https", "ftp", "ws", "wss":
		return true
	}
	return false
}

// urlError returns the inline message for the draft URL, or "".
func urlError(s string) string {
	switch {
	case s == "":
		return ErrURLRequired
	case !ValidateURL(s):
		return ErrURLInvalid
	}
	return ""
}
