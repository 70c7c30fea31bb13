package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned by ResolveAgainst when neither the base nor the
// reference yields an absolute URL.
var ErrNotAbsolute = errors.New("url is not absolute")

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// ResolveAgainst joins ref against the page URL base. When base cannot be
// parsed the reference is only accepted if it is already absolute.
func ResolveAgainst(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNotAbsolute
	}

	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !baseURL.IsAbs() {
		refURL, refErr := url.Parse(ref)
		if refErr != nil {
			return "", refErr
		}
		if !refURL.IsAbs() {
			return "", ErrNotAbsolute
		}
		return refURL.String(), nil
	}
	return ToAbsoluteURL(baseURL, ref)
}

// NormalizeURL canonicalizes a free-text or partial URL into an absolute URL
// and its host. A leading "www." is dropped from the host. ok is false when no
// host can be identified; this is never fatal to the caller.
func NormalizeURL(raw string) (absoluteURL, host string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}

	// Bare domain such as "example.com" or "www.example.com".
	if !strings.Contains(raw, "/") {
		if !strings.Contains(raw, ".") {
			return "", "", false
		}
		host = raw
		if i := strings.IndexAny(host, "?#"); i >= 0 {
			host = host[:i]
		}
		host = strings.TrimPrefix(host, "www.")
		if host == "" {
			return "", "", false
		}
		return "https://" + raw, host, true
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + strings.TrimLeft(candidate, "/")
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", "", false
	}

	host = u.Host
	if host == "" {
		host = strings.SplitN(strings.TrimLeft(u.Path, "/"), "/", 2)[0]
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", "", false
	}
	return u.String(), host, true
}

// HostOf returns the normalized host of rawURL, or "" when it has none.
func HostOf(rawURL string) string {
	_, host, ok := NormalizeURL(rawURL)
	if !ok {
		return ""
	}
	return host
}
