package urlutil

import "testing"

// TestDomain tests host extraction.
func TestDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "simple host", url: "https://example.com/about", want: "example.com"},
		{name: "subdomain kept", url: "https://www.example.com", want: "www.example.com"},
		{name: "port kept", url: "http://example.com:8080/path", want: "example.com:8080"},
		{name: "no host", url: "/relative/path", want: ""},
		{name: "unparseable", url: "http://exa mple.com/%zz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Domain(tt.url); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestStripFragment tests fragment removal.
func TestStripFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "removes fragment", url: "https://example.com/page#section", want: "https://example.com/page"},
		{name: "no fragment unchanged", url: "https://example.com/page", want: "https://example.com/page"},
		{name: "query preserved", url: "https://example.com/page?q=1#top", want: "https://example.com/page?q=1"},
		{name: "fragment only", url: "https://example.com/#", want: "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StripFragment(tt.url); got != tt.want {
				t.Errorf("StripFragment(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestNormalizeSeed tests seed scheme normalization.
func TestNormalizeSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "bare domain", url: "example.com", want: "https://example.com"},
		{name: "http unchanged", url: "http://example.com", want: "http://example.com"},
		{name: "https unchanged", url: "https://example.com", want: "https://example.com"},
		{name: "other scheme gets prefix", url: "ftp://example.com", want: "https://ftp://example.com"},
		{name: "domain with path", url: "example.com/contact", want: "https://example.com/contact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeSeed(tt.url); got != tt.want {
				t.Errorf("NormalizeSeed(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestCanonical tests visited-set normalization.
func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "root path added", url: "http://example.com", want: "http://example.com/"},
		{name: "host lowercased", url: "http://EXAMPLE.com/About", want: "http://example.com/About"},
		{name: "fragment dropped", url: "http://example.com/a#b", want: "http://example.com/a"},
		{name: "scheme lowercased", url: "HTTP://example.com/", want: "http://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Canonical(tt.url); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
