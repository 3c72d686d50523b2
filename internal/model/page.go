package model

import (
	"strings"
	"time"
)

// MaxSnapshotSize is the maximum size of the text snapshot in bytes.
// We limit this to prevent memory issues with very large pages.
const MaxSnapshotSize = 512 * 1024 // 512 KB

// Page represents a single crawled web page.
//
// Design decision: We keep the decoded text snapshot on the page rather
// than the raw bytes because email extraction and reporting only ever
// operate on text; binary content is never analyzed.
type Page struct {
	// URL is the full URL of the fetched page.
	URL string `json:"url"`

	// OriginDomain is the host of the seed that led to this page.
	OriginDomain string `json:"origin_domain"`

	// Depth is the hop depth: 0 for seed pages, 1 for followed links.
	Depth int `json:"depth"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response.
	// Extracted from the Content-Type header for convenience.
	ContentType string `json:"content_type"`

	// Title is the page title extracted from the <title> tag.
	// Empty for non-HTML content.
	Title string `json:"title,omitempty"`

	// Snapshot is the decoded text of the page body, capped at
	// MaxSnapshotSize bytes.
	Snapshot string `json:"-"` // Excluded from JSON to keep reports small

	// Headers contains all HTTP response headers.
	Headers map[string][]string `json:"-"`

	// FetchedAt is when the page was fetched.
	FetchedAt time.Time `json:"fetched_at"`
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// TruncateSnapshot ensures the snapshot doesn't exceed MaxSnapshotSize.
// Call this after setting the snapshot to enforce the size limit.
func (p *Page) TruncateSnapshot() {
	if len(p.Snapshot) > MaxSnapshotSize {
		p.Snapshot = p.Snapshot[:MaxSnapshotSize]
	}
}
