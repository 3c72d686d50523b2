package model

import (
	"reflect"
	"testing"
	"time"
)

// TestNewSimpleReport tests summary generation from a crawl report.
func TestNewSimpleReport(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates and sorts per origin", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlReport([]string{"https://example.com"})
		r.PagesPerDomain["example.com"] = 3
		r.Emails = []EmailResult{
			{Email: "b@example.com", OriginDomain: "example.com"},
			{Email: "a@example.com", OriginDomain: "example.com"},
			{Email: "a@example.com", OriginDomain: "example.com"},
		}
		r.FinishedAt = r.StartedAt.Add(2 * time.Second)

		s := NewSimpleReport(r)

		if s.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", s.TotalPages)
		}
		if s.TotalEmails != 2 {
			t.Errorf("expected 2 unique emails, got %d", s.TotalEmails)
		}
		if len(s.Domains) != 1 {
			t.Fatalf("expected 1 domain summary, got %d", len(s.Domains))
		}
		want := []string{"a@example.com", "b@example.com"}
		if !reflect.DeepEqual(s.Domains[0].Emails, want) {
			t.Errorf("expected sorted unique emails %v, got %v", want, s.Domains[0].Emails)
		}
	})

	t.Run("domain with no hits still listed", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlReport([]string{"https://quiet.example"})
		r.PagesPerDomain["quiet.example"] = 5

		s := NewSimpleReport(r)

		if len(s.Domains) != 1 || s.Domains[0].Domain != "quiet.example" {
			t.Fatalf("expected quiet.example summary, got %+v", s.Domains)
		}
		if len(s.Domains[0].Emails) != 0 {
			t.Errorf("expected empty email list, got %v", s.Domains[0].Emails)
		}
	})

	t.Run("domains sorted", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlReport(nil)
		r.PagesPerDomain["zeta.example"] = 1
		r.PagesPerDomain["alpha.example"] = 1

		s := NewSimpleReport(r)

		if s.Domains[0].Domain != "alpha.example" || s.Domains[1].Domain != "zeta.example" {
			t.Errorf("domains not sorted: %+v", s.Domains)
		}
	})
}

// TestCrawlReportDuration tests duration accounting.
func TestCrawlReportDuration(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport(nil)
	if r.Duration() != 0 {
		t.Errorf("unfinished report should have zero duration, got %v", r.Duration())
	}

	r.FinishedAt = r.StartedAt.Add(time.Minute)
	if r.Duration() != time.Minute {
		t.Errorf("expected 1m duration, got %v", r.Duration())
	}
}
