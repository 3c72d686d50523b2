package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/mailspider/mailspider/internal/model"
	"github.com/mailspider/mailspider/internal/urlutil"
)

// Engine is the crawling runtime the Controller plugs into. It owns the
// HTTP client, the priority frontier, the visited set, robots.txt
// handling, per-host politeness delays, and the fetch worker pool.
//
// Design decision: We require an external *http.Client rather than
// building one because:
//  1. Timeout and transport policy belong to the caller
//  2. Tests can inject httptest-backed clients
type Engine struct {
	// client performs all HTTP requests.
	client *http.Client

	// controller is the crawl policy that drives the engine.
	controller *Controller

	// concurrency is the number of fetch workers.
	concurrency int

	// delay is the minimum time between requests to the same host.
	delay time.Duration

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// headersFor optionally supplies extra request headers per host
	// (per-site cookies and auth from config).
	headersFor func(host string) map[string]string

	// logger is used for structured logging.
	logger *slog.Logger

	// visited tracks canonical URLs already scheduled, so the same page
	// is never fetched twice in a run.
	visitedMu sync.Mutex
	visited   map[string]struct{}

	// robots caches the robots.txt group per scheme://host.
	robotsMu sync.Mutex
	robots   map[string]*robotstxt.Group

	// nextFetch tracks the earliest time the next request may go out,
	// per host.
	politeMu  sync.Mutex
	nextFetch map[string]time.Time

	// pages collects successfully fetched pages in completion order.
	pagesMu sync.Mutex
	pages   []*model.Page

	// fetchErrors counts dropped requests.
	fetchErrors int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConcurrency sets the number of fetch workers.
// Non-positive values are ignored, keeping the default of 10.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithDelay sets the minimum delay between requests to the same host.
func WithDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) EngineOption {
	return func(e *Engine) {
		e.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) EngineOption {
	return func(e *Engine) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// WithHeadersForHost installs a per-host extra header supplier, used to
// carry per-site cookies and custom headers from configuration.
func WithHeadersForHost(fn func(host string) map[string]string) EngineOption {
	return func(e *Engine) {
		e.headersFor = fn
	}
}

// WithEngineLogger sets a custom logger for the engine.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine around the given HTTP client and controller.
func NewEngine(client *http.Client, controller *Controller, opts ...EngineOption) *Engine {
	e := &Engine{
		client:      client,
		controller:  controller,
		concurrency: 10,
		delay:       1 * time.Second,
		userAgent:   "mailspider/1.0",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		visited:     make(map[string]struct{}),
		robots:      make(map[string]*robotstxt.Group),
		nextFetch:   make(map[string]time.Time),
		pages:       make([]*model.Page, 0),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Run crawls from the given seeds until every request the controller
// issues has been fetched or dropped. It returns the context error when
// cancelled mid-crawl; fetch failures of individual requests are never
// fatal.
func (e *Engine) Run(ctx context.Context, seeds []string) error {
	fr := newFrontier()
	for _, req := range e.controller.Start(seeds) {
		if e.admit(req) {
			fr.push(req)
		}
	}

	// Cancellation unblocks workers waiting on the frontier.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			fr.close()
		case <-watchDone:
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for range e.concurrency {
		g.Go(func() error {
			for {
				req, ok := fr.pop()
				if !ok {
					return nil
				}

				for _, next := range e.process(gctx, req) {
					if e.admit(next) {
						fr.push(next)
					}
				}
				fr.done()
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Pages returns the successfully fetched pages in completion order.
func (e *Engine) Pages() []*model.Page {
	e.pagesMu.Lock()
	defer e.pagesMu.Unlock()

	pages := make([]*model.Page, len(e.pages))
	copy(pages, e.pages)
	return pages
}

// FetchErrors returns the number of requests dropped due to fetch failure.
func (e *Engine) FetchErrors() int {
	e.pagesMu.Lock()
	defer e.pagesMu.Unlock()
	return e.fetchErrors
}

// admit reserves a request's canonical URL in the visited set.
// Returns false if the page was already scheduled this run.
func (e *Engine) admit(req Request) bool {
	key := urlutil.Canonical(req.URL)

	e.visitedMu.Lock()
	defer e.visitedMu.Unlock()

	if _, ok := e.visited[key]; ok {
		return false
	}
	e.visited[key] = struct{}{}
	return true
}

// process fetches one request and feeds the response through the
// controller, returning the follow-up requests to schedule. A failed or
// disallowed fetch returns nil: the crawl simply continues without it
// and the domain budget is not touched.
func (e *Engine) process(ctx context.Context, req Request) []Request {
	u, err := url.Parse(req.URL)
	if err != nil {
		e.logger.Debug("dropping unparseable URL", "url", req.URL, "error", err)
		return nil
	}

	if !e.allowed(ctx, u) {
		e.logger.Debug("disallowed by robots.txt", "url", req.URL)
		return nil
	}

	if err := e.waitPoliteness(ctx, u.Host); err != nil {
		return nil
	}

	page, text, links, err := e.fetch(ctx, req)
	if err != nil {
		e.logger.Debug("fetch failed", "url", req.URL, "error", err)
		e.pagesMu.Lock()
		e.fetchErrors++
		e.pagesMu.Unlock()
		return nil
	}

	e.pagesMu.Lock()
	e.pages = append(e.pages, page)
	e.pagesMu.Unlock()

	e.logger.Debug("fetched page",
		"url", req.URL,
		"status", page.StatusCode,
		"depth", req.Depth,
		"links", len(links),
	)

	return e.controller.OnResponse(req, text, links)
}

// fetch performs the HTTP GET and extracts the decoded body text and
// candidate links.
func (e *Engine) fetch(ctx context.Context, req Request) (*model.Page, string, []string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, "", nil, err
	}

	httpReq.Header.Set("User-Agent", e.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if e.headersFor != nil {
		for k, v := range e.headersFor(httpReq.URL.Host) {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, "", nil, err
	}
	defer resp.Body.Close()

	// Only successful responses reach the controller; an HTTP error is
	// fatal to this one request and never counts against the budget.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, req.URL)
	}

	contentType := resp.Header.Get("Content-Type")

	// Decode to UTF-8 with the body size capped. charset sniffing falls
	// back to the Content-Type header, then to UTF-8.
	bodyReader, err := charset.NewReader(io.LimitReader(resp.Body, e.maxBodySize), contentType)
	if err != nil {
		bodyReader = io.LimitReader(resp.Body, e.maxBodySize)
	}
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, "", nil, err
	}
	text := string(body)

	page := &model.Page{
		URL:          req.URL,
		OriginDomain: req.OriginDomain,
		Depth:        req.Depth,
		StatusCode:   resp.StatusCode,
		ContentType:  contentType,
		Snapshot:     text,
		Headers:      resp.Header,
		FetchedAt:    time.Now(),
	}
	page.TruncateSnapshot()

	var links []string
	if page.IsHTML() {
		if parsed, err := parseDocument(req.URL, strings.NewReader(text)); err == nil {
			page.Title = parsed.title
			links = parsed.links
		}
	}

	return page, text, links, nil
}

// allowed consults the host's robots.txt for the engine's User-Agent.
// Missing or unfetchable robots.txt means allow-all.
func (e *Engine) allowed(ctx context.Context, u *url.URL) bool {
	key := u.Scheme + "://" + u.Host

	e.robotsMu.Lock()
	group, ok := e.robots[key]
	e.robotsMu.Unlock()

	if !ok {
		group = e.fetchRobots(ctx, key)
		e.robotsMu.Lock()
		e.robots[key] = group
		e.robotsMu.Unlock()
	}

	if group == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// fetchRobots retrieves and parses robots.txt for one scheme://host.
// Returns nil (allow-all) on any failure.
func (e *Engine) fetchRobots(ctx context.Context, base string) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(e.userAgent)
}

// waitPoliteness blocks until the host's next fetch slot, reserving it.
func (e *Engine) waitPoliteness(ctx context.Context, host string) error {
	if e.delay <= 0 {
		return nil
	}

	e.politeMu.Lock()
	now := time.Now()
	next := e.nextFetch[host]
	if next.Before(now) {
		next = now
	}
	e.nextFetch[host] = next.Add(e.delay)
	e.politeMu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
