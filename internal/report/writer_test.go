package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/mailspider/mailspider/internal/model"
)

func init() {
	// Keep assertions free of ANSI escape sequences.
	color.NoColor = true
}

// sampleReport builds a report with results for two origin domains.
func sampleReport() *model.CrawlReport {
	r := model.NewCrawlReport([]string{"https://example.com", "https://other.org"})
	r.StartedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.FinishedAt = r.StartedAt.Add(3 * time.Second)
	r.PagesPerDomain["example.com"] = 3
	r.PagesPerDomain["other.org"] = 1
	r.FetchErrors = 1
	r.Emails = []model.EmailResult{
		{Email: "sales@example.com", OriginDomain: "example.com", SourceURL: "https://example.com/contact"},
		{Email: "info@example.com", OriginDomain: "example.com", SourceURL: "https://example.com/"},
		{Email: "info@example.com", OriginDomain: "example.com", SourceURL: "https://example.com/about"},
	}
	return r
}

// TestSimpleWriter tests the terminal text format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary and per-domain results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(sampleReport())
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"MAILSPIDER REPORT",
			"SUMMARY",
			"RESULTS BY DOMAIN",
			"example.com (3 pages)",
			"sales@example.com",
			"info@example.com",
			"Fetch errors:    1",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("deduplicates addresses per origin", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		if got := strings.Count(buf.String(), "info@example.com"); got != 1 {
			t.Errorf("expected one occurrence of duplicated address, got %d", got)
		}
	})

	t.Run("hides empty domains by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if strings.Contains(buf.String(), "other.org (1 pages)") {
			t.Errorf("empty domain shown without WithShowEmpty:\n%s", buf.String())
		}
	})

	t.Run("shows empty domains when configured", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "other.org (1 pages)") {
			t.Errorf("expected empty domain in output:\n%s", buf.String())
		}
	})

	t.Run("reports pipeline errors", func(t *testing.T) {
		t.Parallel()

		r := sampleReport()
		r.ErrorMessage = "context deadline exceeded"

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(r); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "ERROR - context deadline exceeded") {
			t.Errorf("expected error status in output:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the machine-readable format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output is valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		var decoded model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.PagesPerDomain["example.com"] != 3 {
			t.Errorf("round-trip lost data: %+v", decoded.PagesPerDomain)
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps with version metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "v1.2.3")

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "v1.2.3" {
			t.Errorf("expected version in wrapper, got %q", wrapped.Version)
		}
		if wrapped.Summary == nil || wrapped.Summary.TotalEmails != 2 {
			t.Errorf("expected summary in wrapper, got %+v", wrapped.Summary)
		}
	})
}

// TestMarkdownWriter tests the documentation format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"# Mailspider Report",
		"## Summary",
		"## Results by Domain",
		"### example.com",
		"`sales@example.com`",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown missing %q:\n%s", want, output)
		}
	}
}

// TestMultiWriter tests fan-out to several destinations.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := mw.Write(sampleReport())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, text.Len()+js.Len())
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected output on both writers")
	}
}
