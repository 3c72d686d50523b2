package crawler

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/mailspider/mailspider/internal/model"
)

// collectSink accumulates emitted results for assertions.
type collectSink struct {
	mu      sync.Mutex
	results []model.EmailResult
}

func (s *collectSink) Emit(result model.EmailResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

func (s *collectSink) all() []model.EmailResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.EmailResult, len(s.results))
	copy(out, s.results)
	return out
}

// TestControllerStart tests seed normalization and origin tagging.
func TestControllerStart(t *testing.T) {
	t.Parallel()

	t.Run("normalizes schemeless seeds", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil)
		reqs := c.Start([]string{"example.com", "http://other.example/contact"})

		if len(reqs) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(reqs))
		}
		if reqs[0].URL != "https://example.com" {
			t.Errorf("expected https scheme prepended, got %q", reqs[0].URL)
		}
		if reqs[0].OriginDomain != "example.com" {
			t.Errorf("expected origin example.com, got %q", reqs[0].OriginDomain)
		}
		if reqs[1].URL != "http://other.example/contact" {
			t.Errorf("expected explicit scheme kept, got %q", reqs[1].URL)
		}
		for _, r := range reqs {
			if r.Depth != 0 {
				t.Errorf("seed request at depth %d, want 0", r.Depth)
			}
		}
	})

	t.Run("skips seeds with no host", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil)
		reqs := c.Start([]string{"https:///nohost"})

		if len(reqs) != 0 {
			t.Errorf("expected hostless seed skipped, got %v", reqs)
		}
	})
}

// TestControllerOnResponse tests the crawl policy state machine.
func TestControllerOnResponse(t *testing.T) {
	t.Parallel()

	t.Run("emits emails tagged with origin domain", func(t *testing.T) {
		t.Parallel()

		sink := &collectSink{}
		c := NewController(sink)

		// Current domain differs from the origin, as after a redirect.
		req := Request{URL: "https://landing.example/home", OriginDomain: "example.com", Depth: 0}
		c.OnResponse(req, "mail: info@landing.example", nil)

		results := sink.all()
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Email != "info@landing.example" {
			t.Errorf("unexpected email %q", results[0].Email)
		}
		if results[0].OriginDomain != "example.com" {
			t.Errorf("origin domain = %q, want seed domain example.com", results[0].OriginDomain)
		}
		if results[0].SourceURL != "https://landing.example/home" {
			t.Errorf("unexpected source URL %q", results[0].SourceURL)
		}
	})

	t.Run("expands only same-domain links with fragments stripped", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil, WithMaxPagesPerDomain(10))
		req := Request{URL: "https://example.com/", OriginDomain: "example.com", Depth: 0}

		links := []string{
			"https://example.com/about#team",
			"https://youtube.com/watch?v=x",
			"https://example.com/contact",
		}
		next := c.OnResponse(req, "", links)

		var urls []string
		for _, r := range next {
			urls = append(urls, r.URL)
		}
		want := []string{"https://example.com/about", "https://example.com/contact"}
		if !reflect.DeepEqual(urls, want) {
			t.Errorf("expanded %v, want %v", urls, want)
		}
		for _, r := range next {
			if r.OriginDomain != "example.com" {
				t.Errorf("origin not propagated: %q", r.OriginDomain)
			}
			if r.Depth != 1 {
				t.Errorf("follow-up at depth %d, want 1", r.Depth)
			}
		}
	})

	t.Run("hop-1 pages never expand", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil)
		req := Request{URL: "https://example.com/about", OriginDomain: "example.com", Depth: 1}

		next := c.OnResponse(req, "", []string{"https://example.com/deeper"})
		if len(next) != 0 {
			t.Errorf("hop-1 page expanded: %v", next)
		}
	})

	t.Run("no request ever exceeds depth 1", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil, WithMaxPagesPerDomain(100))
		pending := c.Start([]string{"example.com"})

		links := make([]string, 10)
		for i := range links {
			links[i] = fmt.Sprintf("https://example.com/p%d", i)
		}

		for steps := 0; steps < 200 && len(pending) > 0; steps++ {
			req := pending[0]
			pending = append(pending[1:], c.OnResponse(req, "", links)...)
			if req.Depth > 1 {
				t.Fatalf("request at depth %d", req.Depth)
			}
		}
	})

	t.Run("link expansion respects remaining budget", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil, WithMaxPagesPerDomain(3))
		req := Request{URL: "https://example.com/", OriginDomain: "example.com", Depth: 0}

		links := []string{
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/c",
			"https://example.com/d",
		}
		next := c.OnResponse(req, "", links)

		// Budget 3, one page crawled: only 2 follow-ups may be issued.
		if len(next) != 2 {
			t.Errorf("expected 2 follow-ups, got %d", len(next))
		}
	})

	t.Run("ranked links carry descending priority hints", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil,
			WithMaxPagesPerDomain(10),
			WithPriorityKeywords([]string{"contact"}),
		)
		req := Request{URL: "https://example.com/", OriginDomain: "example.com", Depth: 0}

		links := []string{"https://example.com/news", "https://example.com/contact"}
		next := c.OnResponse(req, "", links)

		if len(next) != 2 {
			t.Fatalf("expected 2 follow-ups, got %d", len(next))
		}
		if next[0].URL != "https://example.com/contact" {
			t.Errorf("expected contact link ranked first, got %q", next[0].URL)
		}
		if next[0].Priority <= next[1].Priority {
			t.Errorf("priority hints not descending: %d then %d", next[0].Priority, next[1].Priority)
		}
	})

	t.Run("budget exhaustion is terminal", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil, WithMaxPagesPerDomain(2))
		links := []string{"https://example.com/x"}

		for i := 0; i < 5; i++ {
			req := Request{URL: fmt.Sprintf("https://example.com/p%d", i), OriginDomain: "example.com", Depth: 0}
			c.OnResponse(req, "", links)
		}

		req := Request{URL: "https://example.com/final", OriginDomain: "example.com", Depth: 0}
		if next := c.OnResponse(req, "", links); len(next) != 0 {
			t.Errorf("exhausted domain expanded again: %v", next)
		}

		// The counter keeps incrementing past the cap regardless.
		if got := c.PagesCrawled()["example.com"]; got != 6 {
			t.Errorf("expected 6 pages counted, got %d", got)
		}
	})

	t.Run("per-domain budget override", func(t *testing.T) {
		t.Parallel()

		c := NewController(nil,
			WithMaxPagesPerDomain(50),
			WithBudgetForDomain(func(domain string) int {
				if domain == "small.example" {
					return 1
				}
				return 0
			}),
		)
		req := Request{URL: "https://small.example/", OriginDomain: "small.example", Depth: 0}

		next := c.OnResponse(req, "", []string{"https://small.example/about"})
		if len(next) != 0 {
			t.Errorf("expected no expansion with budget 1, got %v", next)
		}
	})
}

// TestControllerBudgetOvershoot pins the boundary accounting: hop-1
// fetches completing after exhaustion still increment the counter, so
// requests in flight at the boundary can push it past the cap.
func TestControllerBudgetOvershoot(t *testing.T) {
	t.Parallel()

	c := NewController(nil, WithMaxPagesPerDomain(2))

	// Seed expands to one follow-up: budget 2, one crawled, one slot left.
	seed := Request{URL: "https://example.com/", OriginDomain: "example.com", Depth: 0}
	next := c.OnResponse(seed, "", []string{"https://example.com/a", "https://example.com/b"})
	if len(next) != 1 {
		t.Fatalf("expected 1 follow-up, got %d", len(next))
	}

	// Three hop-1 responses arrive (say, scheduled before exhaustion was
	// visible). Each still counts; none expands.
	for i := 0; i < 3; i++ {
		leaf := Request{URL: fmt.Sprintf("https://example.com/leaf%d", i), OriginDomain: "example.com", Depth: 1}
		if out := c.OnResponse(leaf, "", nil); len(out) != 0 {
			t.Errorf("leaf expanded: %v", out)
		}
	}

	if got := c.PagesCrawled()["example.com"]; got != 4 {
		t.Errorf("expected counter overshoot to 4, got %d", got)
	}
}

// TestControllerConcurrentResponses verifies budget accounting under
// concurrent OnResponse calls for the same domain.
func TestControllerConcurrentResponses(t *testing.T) {
	t.Parallel()

	c := NewController(nil, WithMaxPagesPerDomain(10))
	links := []string{"https://example.com/next"}

	var wg sync.WaitGroup
	issued := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := Request{URL: fmt.Sprintf("https://example.com/p%d", i), OriginDomain: "example.com", Depth: 0}
			issued <- len(c.OnResponse(req, "", links))
		}(i)
	}
	wg.Wait()
	close(issued)

	total := 0
	for n := range issued {
		total += n
	}

	// At most 9 expansion slots exist below a budget of 10; the
	// serialized read-then-write step must never over-issue.
	if total > 9 {
		t.Errorf("issued %d follow-ups, budget allows at most 9", total)
	}
	if got := c.PagesCrawled()["example.com"]; got != 100 {
		t.Errorf("expected 100 pages counted, got %d", got)
	}
}
