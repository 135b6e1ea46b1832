package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(h[:])
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// WithQueryParam returns rawURL with key set to value, replacing any existing value.
func WithQueryParam(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// WithPage is WithQueryParam for an integer page number.
func WithPage(rawURL, key string, page int) (string, error) {
	return WithQueryParam(rawURL, key, strconv.Itoa(page))
}
