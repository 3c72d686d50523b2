// Package model defines the core data structures used throughout mailspider.
//
// This package contains the following main types:
//   - Page: Represents a crawled web page with its text snapshot
//   - EmailResult: A single extracted address tagged with its origin domain
//   - CrawlReport: The accumulated result of one crawl run
//   - SimpleReport: A summarized, human-readable report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, pipeline, report, database) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
