package model

import "time"

// EmailResult is a single extracted email address tagged with the domain
// of the seed URL that (transitively) produced it.
//
// OriginDomain is the seed's domain, not the domain of the page the
// address was found on; the two can differ after an internal redirect.
// Results are immutable once emitted and are not deduplicated across a
// run. Within-page deduplication happens in the extractor; run-level
// deduplication is left to the consumer (database, report).
type EmailResult struct {
	// Email is the full local@domain address as found in the page text.
	Email string `json:"email"`

	// OriginDomain is the host of the seed URL this result traces back to.
	OriginDomain string `json:"origin_domain"`

	// SourceURL is the page the address was extracted from.
	SourceURL string `json:"source_url,omitempty"`

	// FoundAt is when the address was extracted.
	FoundAt time.Time `json:"found_at,omitempty"`
}
