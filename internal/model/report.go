package model

import (
	"sort"
	"time"
)

// CrawlReport accumulates the results of one crawl run across all seeds.
//
// The report itself is plain data with no synchronization; concurrent
// producers (the fetch engine's workers) must serialize access, which the
// pipeline's crawl step does with its own mutex.
type CrawlReport struct {
	// Seeds are the normalized seed URLs the crawl started from.
	Seeds []string `json:"seeds"`

	// StartedAt and FinishedAt bound the crawl run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// PagesPerDomain counts completed fetches per normalized domain.
	PagesPerDomain map[string]int `json:"pages_per_domain"`

	// Pages are all successfully fetched pages in completion order.
	Pages []*Page `json:"pages,omitempty"`

	// Emails are all extracted results in emission order.
	// Duplicates across pages are possible; consumers deduplicate.
	Emails []EmailResult `json:"emails"`

	// FetchErrors counts requests that failed and were dropped.
	FetchErrors int `json:"fetch_errors"`

	// ErrorMessage holds a fatal pipeline error, if any.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for the given seed URLs.
func NewCrawlReport(seeds []string) *CrawlReport {
	return &CrawlReport{
		Seeds:          seeds,
		StartedAt:      time.Now(),
		PagesPerDomain: make(map[string]int),
		Pages:          make([]*Page, 0),
		Emails:         make([]EmailResult, 0),
	}
}

// Duration returns the elapsed crawl time.
// Returns zero if the report was never finished.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TotalPages returns the number of completed fetches across all domains.
func (r *CrawlReport) TotalPages() int {
	total := 0
	for _, n := range r.PagesPerDomain {
		total += n
	}
	return total
}

// SimpleReport is a summarized view of a CrawlReport used by the report
// writers. It groups unique addresses under their origin domain.
type SimpleReport struct {
	// Seeds are the seed URLs the crawl started from.
	Seeds []string `json:"seeds"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the elapsed crawl time.
	Duration time.Duration `json:"duration"`

	// TotalPages is the number of completed fetches.
	TotalPages int `json:"total_pages"`

	// TotalEmails is the number of unique addresses across all origins.
	TotalEmails int `json:"total_emails"`

	// FetchErrors counts requests that failed and were dropped.
	FetchErrors int `json:"fetch_errors"`

	// Domains summarizes results per origin domain, sorted by domain.
	Domains []DomainSummary `json:"domains"`

	// Error holds a fatal pipeline error message, if any.
	Error string `json:"error,omitempty"`
}

// DomainSummary groups crawl output for one origin domain.
type DomainSummary struct {
	// Domain is the origin (seed) domain.
	Domain string `json:"domain"`

	// Pages is the number of pages fetched for this domain.
	Pages int `json:"pages"`

	// Emails are the unique addresses found for this origin, sorted.
	Emails []string `json:"emails"`
}

// NewSimpleReport builds a SimpleReport from a CrawlReport.
// Addresses are deduplicated per origin domain and sorted for stable output.
func NewSimpleReport(r *CrawlReport) *SimpleReport {
	perOrigin := make(map[string]map[string]struct{})
	for _, res := range r.Emails {
		if perOrigin[res.OriginDomain] == nil {
			perOrigin[res.OriginDomain] = make(map[string]struct{})
		}
		perOrigin[res.OriginDomain][res.Email] = struct{}{}
	}

	// Every crawled domain appears in the summary, even with no hits.
	domains := make(map[string]struct{})
	for d := range r.PagesPerDomain {
		domains[d] = struct{}{}
	}
	for d := range perOrigin {
		domains[d] = struct{}{}
	}

	summaries := make([]DomainSummary, 0, len(domains))
	totalEmails := 0
	for d := range domains {
		emails := make([]string, 0, len(perOrigin[d]))
		for e := range perOrigin[d] {
			emails = append(emails, e)
		}
		sort.Strings(emails)
		totalEmails += len(emails)

		summaries = append(summaries, DomainSummary{
			Domain: d,
			Pages:  r.PagesPerDomain[d],
			Emails: emails,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Domain < summaries[j].Domain })

	return &SimpleReport{
		Seeds:       r.Seeds,
		StartedAt:   r.StartedAt,
		Duration:    r.Duration(),
		TotalPages:  r.TotalPages(),
		TotalEmails: totalEmails,
		FetchErrors: r.FetchErrors,
		Domains:     summaries,
		Error:       r.ErrorMessage,
	}
}
