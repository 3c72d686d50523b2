// Package crawler implements the bounded contact-email crawl: a
// controller that decides what to fetch, and an engine that fetches it.
//
// # Architecture
//
// The package is split along a policy/mechanism line:
//
//   - Controller: the crawl policy. It turns seeds into initial requests,
//     reacts to each completed fetch by extracting emails and deciding
//     which same-domain links to follow, and enforces the per-domain page
//     budget and the one-hop limit. It performs no I/O.
//   - Engine: the crawling runtime. It owns the HTTP client, the priority
//     frontier, the visited set, robots.txt checks, politeness delays,
//     and the worker pool. It feeds every successful response back into
//     the Controller and schedules whatever the Controller returns.
//   - parseDocument: HTML link/title discovery; the Controller never
//     parses HTML itself.
//
// # Traversal policy
//
// The crawl never wanders: it follows at most one hop of links from each
// seed page, stays within the seed's domain, and stops expanding a domain
// once its page budget is spent. Candidate links are ranked by keyword
// relevance in their path so "contact"/"about"-style pages are fetched
// first while the budget lasts.
//
// # Usage
//
//	ctrl := crawler.NewController(sink,
//		crawler.WithMaxPagesPerDomain(50),
//		crawler.WithPriorityKeywords([]string{"contact", "about"}),
//	)
//	engine := crawler.NewEngine(httpClient, ctrl, crawler.WithConcurrency(10))
//	err := engine.Run(ctx, seeds)
package crawler
