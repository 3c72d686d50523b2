package model

import (
	"strings"
	"testing"
)

// TestPageIsHTML tests content type detection.
func TestPageIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{name: "plain html", contentType: "text/html", want: true},
		{name: "html with charset", contentType: "text/html; charset=utf-8", want: true},
		{name: "xhtml", contentType: "application/xhtml+xml", want: true},
		{name: "json", contentType: "application/json", want: false},
		{name: "empty", contentType: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Page{ContentType: tt.contentType}
			if got := p.IsHTML(); got != tt.want {
				t.Errorf("IsHTML() with %q = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

// TestPageTruncateSnapshot tests the snapshot size cap.
func TestPageTruncateSnapshot(t *testing.T) {
	t.Parallel()

	p := &Page{Snapshot: strings.Repeat("x", MaxSnapshotSize+100)}
	p.TruncateSnapshot()

	if len(p.Snapshot) != MaxSnapshotSize {
		t.Errorf("expected snapshot truncated to %d bytes, got %d", MaxSnapshotSize, len(p.Snapshot))
	}
}

// TestPageGetHeader tests header access.
func TestPageGetHeader(t *testing.T) {
	t.Parallel()

	p := &Page{Headers: map[string][]string{"Content-Type": {"text/html", "ignored"}}}

	if got := p.GetHeader("Content-Type"); got != "text/html" {
		t.Errorf("expected first header value, got %q", got)
	}
	if got := p.GetHeader("Missing"); got != "" {
		t.Errorf("expected empty string for missing header, got %q", got)
	}
}
