// Package urlutil provides URL helpers shared by the crawler: host
// extraction, fragment stripping, seed scheme normalization, and the
// canonical form used for visited-set deduplication.
//
// Two URLs belong to the same domain exactly when Domain returns equal
// strings for both. All functions are pure and never reject malformed
// input; they degrade to returning the input (or an empty host) instead.
package urlutil

import (
	"net/url"
	"strings"
)

// Domain returns the host component of rawURL, including any subdomain.
// It returns an empty string when the URL cannot be parsed or carries
// no host (e.g. a bare path).
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// StripFragment returns rawURL with any #fragment removed. All other
// components are left untouched, so "#section" variants of the same page
// collapse to a single crawl target. Unparseable URLs are returned as-is.
func StripFragment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	return u.String()
}

// NormalizeSeed guarantees a seed URL carries an explicit scheme.
// Seeds without a recognized http/https prefix get "https://" prepended;
// everything else is returned unchanged. It never rejects input, it only
// guesses a scheme.
func NormalizeSeed(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// Canonical normalizes a URL for visited-set deduplication.
// The fragment is dropped, scheme and host are lowercased, and an empty
// path becomes "/" so that http://example.com and http://example.com/
// count as the same page.
func Canonical(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
