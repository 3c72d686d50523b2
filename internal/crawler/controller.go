package crawler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mailspider/mailspider/internal/extract"
	"github.com/mailspider/mailspider/internal/model"
	"github.com/mailspider/mailspider/internal/urlutil"
)

// ResultSink receives extracted email results incrementally as pages are
// processed. Implementations must tolerate concurrent calls when the
// hosting engine dispatches fetches concurrently.
type ResultSink interface {
	Emit(result model.EmailResult)
}

// SinkFunc adapts a plain function to the ResultSink interface.
type SinkFunc func(result model.EmailResult)

// Emit calls f(result).
func (f SinkFunc) Emit(result model.EmailResult) { f(result) }

// Controller is the crawl policy: it decides what to fetch and in what
// order, without performing any I/O itself. The hosting engine calls
// Start once for the initial batch and OnResponse for every request it
// successfully fetched, scheduling whatever requests come back.
//
// All state (the per-domain page counters) lives behind a single mutex,
// so OnResponse may be called from concurrent workers; the budget
// check and the link-count computation happen as one serialized step
// and can never race into over-issuing requests.
type Controller struct {
	// mu serializes access to pagesCrawled.
	mu sync.Mutex

	// pagesCrawled counts completed fetches per normalized domain.
	// Incremented exactly once per completed fetch, never decremented,
	// never reset for the duration of the run.
	pagesCrawled map[string]int

	// maxPagesPerDomain is the per-domain page budget.
	maxPagesPerDomain int

	// keywords bias link-following order; earlier entries rank higher.
	keywords []string

	// keywordsFor optionally overrides keywords per domain.
	keywordsFor func(domain string) []string

	// budgetFor optionally overrides the page budget per domain.
	budgetFor func(domain string) int

	// sink receives every extracted email result.
	sink ResultSink

	// logger is used for structured logging.
	logger *slog.Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMaxPagesPerDomain sets the per-domain page budget.
// Non-positive values are ignored, keeping the default.
func WithMaxPagesPerDomain(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.maxPagesPerDomain = n
		}
	}
}

// WithPriorityKeywords sets the ordered keywords used to rank candidate
// links by path relevance. Empty means discovery order is kept.
func WithPriorityKeywords(keywords []string) ControllerOption {
	return func(c *Controller) {
		c.keywords = keywords
	}
}

// WithKeywordsForDomain installs a per-domain keyword override. When the
// function returns a non-nil slice for a domain, it replaces the global
// keywords for links discovered on that domain's pages.
func WithKeywordsForDomain(fn func(domain string) []string) ControllerOption {
	return func(c *Controller) {
		c.keywordsFor = fn
	}
}

// WithBudgetForDomain installs a per-domain page budget override. When
// the function returns a positive value for a domain, it replaces the
// global budget for that domain.
func WithBudgetForDomain(fn func(domain string) int) ControllerOption {
	return func(c *Controller) {
		c.budgetFor = fn
	}
}

// WithControllerLogger sets a custom logger for the controller.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller emitting results to sink.
// If sink is nil, results are silently discarded.
func NewController(sink ResultSink, opts ...ControllerOption) *Controller {
	c := &Controller{
		pagesCrawled:      make(map[string]int),
		maxPagesPerDomain: 50,
		sink:              sink,
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sink == nil {
		c.sink = SinkFunc(func(model.EmailResult) {})
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Start turns seed URLs into the initial request batch. Each seed is
// normalized to carry an explicit scheme, and its origin domain is fixed
// from the normalized URL. Seeds whose host cannot be determined are
// skipped with a warning rather than failing the whole crawl.
func (c *Controller) Start(seeds []string) []Request {
	requests := make([]Request, 0, len(seeds))
	for _, seed := range seeds {
		u := urlutil.NormalizeSeed(seed)
		domain := urlutil.Domain(u)
		if domain == "" {
			c.logger.Warn("skipping seed with no usable host", "seed", seed)
			continue
		}

		requests = append(requests, Request{
			URL:          u,
			OriginDomain: domain,
			Depth:        0,
		})
	}
	return requests
}

// OnResponse processes one completed fetch and returns the follow-up
// requests to schedule, if any.
//
// Emails are extracted against the page's *current* domain but emitted
// tagged with the request's origin domain, preserving provenance through
// redirects. The budget counter for the current domain is incremented
// once per completed fetch, including hop-1 leaves, but the budget is
// only enforced before expanding hop-0 pages, so fetches already in
// flight at the boundary can push the counter past the nominal cap.
func (c *Controller) OnResponse(req Request, pageText string, discoveredLinks []string) []Request {
	current := urlutil.Domain(req.URL)

	now := c.now()
	emails := extract.Emails(pageText, current)
	for _, email := range emails {
		c.sink.Emit(model.EmailResult{
			Email:        email,
			OriginDomain: req.OriginDomain,
			SourceURL:    req.URL,
			FoundAt:      now,
		})
	}
	if len(emails) > 0 {
		c.logger.Debug("extracted emails", "url", req.URL, "count", len(emails))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pagesCrawled[current]++
	crawled := c.pagesCrawled[current]

	maxPages := c.maxPagesPerDomain
	if c.budgetFor != nil {
		if n := c.budgetFor(current); n > 0 {
			maxPages = n
		}
	}

	// Budget exhausted: expansion stops but the fetch still counted.
	if crawled > maxPages {
		return nil
	}

	// Only seed pages expand; hop-1 pages are leaves.
	if req.Depth != 0 {
		return nil
	}

	// Keep only same-domain links, fragments stripped. Deduplication of
	// already-seen URLs is the engine's concern.
	candidates := make([]string, 0, len(discoveredLinks))
	for _, link := range discoveredLinks {
		stripped := urlutil.StripFragment(link)
		if urlutil.Domain(stripped) == current {
			candidates = append(candidates, stripped)
		}
	}

	keywords := c.keywords
	if c.keywordsFor != nil {
		if kw := c.keywordsFor(current); kw != nil {
			keywords = kw
		}
	}
	ranked := PrioritizeLinks(candidates, keywords)

	// The remaining budget at this instant caps how many links to follow.
	limit := maxPages - crawled
	if limit > len(ranked) {
		limit = len(ranked)
	}

	requests := make([]Request, 0, limit)
	for i, link := range ranked[:limit] {
		requests = append(requests, Request{
			URL:          link,
			OriginDomain: req.OriginDomain, // propagate, never the current domain
			Depth:        1,
			Priority:     len(ranked) - i, // earlier-ranked links serviced first
		})
	}

	return requests
}

// PagesCrawled returns a copy of the per-domain fetch counters.
func (c *Controller) PagesCrawled() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, len(c.pagesCrawled))
	for domain, n := range c.pagesCrawled {
		counts[domain] = n
	}
	return counts
}
