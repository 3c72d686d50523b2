package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mailspider/mailspider/internal/config"
	"github.com/mailspider/mailspider/internal/crawler"
	"github.com/mailspider/mailspider/internal/database"
	"github.com/mailspider/mailspider/internal/model"
)

// CrawlStep runs the bounded crawl: it fetches pages starting from the
// report's seeds, extracts contact addresses, and fills the report with
// pages, addresses, and per-domain counters.
//
// Design decision: The step owns wiring the controller to the engine so
// the CLI only deals with configuration. Extracted addresses are appended
// to the report through a mutex because engine workers emit concurrently.
type CrawlStep struct {
	// cfg holds the crawl configuration.
	cfg *config.Config

	// client is the HTTP client used for fetching. If nil, a client
	// with the configured timeout is created.
	client *http.Client

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithHTTPClient sets a custom HTTP client, used by tests to inject
// httptest clients.
func WithHTTPClient(client *http.Client) CrawlStepOption {
	return func(s *CrawlStep) {
		s.client = client
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step from the given configuration.
func NewCrawlStep(cfg *config.Config, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{Timeout: cfg.Timeout}
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl and records its results in the report.
// Partial results are kept in the report even when the crawl is
// cancelled, so callers can still render what was found.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	var mu sync.Mutex
	sink := crawler.SinkFunc(func(res model.EmailResult) {
		mu.Lock()
		report.Emails = append(report.Emails, res)
		mu.Unlock()
	})

	ctrl := crawler.NewController(sink, s.controllerOptions()...)
	engine := crawler.NewEngine(s.client, ctrl, s.engineOptions()...)

	err := engine.Run(ctx, report.Seeds)

	report.PagesPerDomain = ctrl.PagesCrawled()
	report.Pages = engine.Pages()
	report.FetchErrors = engine.FetchErrors()
	report.FinishedAt = time.Now()

	return err
}

// controllerOptions maps the configuration onto controller options,
// including per-site keyword and budget overrides from the config file.
func (s *CrawlStep) controllerOptions() []crawler.ControllerOption {
	opts := []crawler.ControllerOption{
		crawler.WithMaxPagesPerDomain(s.cfg.MaxPagesPerDomain),
		crawler.WithPriorityKeywords(s.cfg.PriorityURLKeywords),
		crawler.WithControllerLogger(s.logger),
	}

	if sites := s.cfg.SiteConfigs; sites != nil {
		opts = append(opts,
			crawler.WithKeywordsForDomain(func(domain string) []string {
				return sites.GetSiteConfig(domain).Keywords
			}),
			crawler.WithBudgetForDomain(func(domain string) int {
				return sites.GetSiteConfig(domain).MaxPages
			}),
		)
	}

	return opts
}

// engineOptions maps the configuration onto engine options.
func (s *CrawlStep) engineOptions() []crawler.EngineOption {
	opts := []crawler.EngineOption{
		crawler.WithConcurrency(s.cfg.Concurrency),
		crawler.WithDelay(s.cfg.CrawlDelay),
		crawler.WithUserAgent(s.cfg.UserAgent),
		crawler.WithMaxBodySize(s.cfg.MaxBodySize),
		crawler.WithEngineLogger(s.logger),
	}

	if sites := s.cfg.SiteConfigs; sites != nil {
		opts = append(opts, crawler.WithHeadersForHost(func(host string) map[string]string {
			return sites.GetSiteConfig(host).RequestHeaders()
		}))
	}

	return opts
}

// SaveStep persists the crawl report to the SQLite database.
type SaveStep struct {
	// dbDir is the directory holding the database file.
	dbDir string

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a step that persists results under dbDir.
func NewSaveStep(dbDir string, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		dbDir:  dbDir,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do opens the database and stores the report with its pages and addresses.
func (s *SaveStep) Do(ctx context.Context, report *model.CrawlReport) error {
	db, err := database.Open(s.dbDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			s.logger.Warn("failed to close database", "error", closeErr)
		}
	}()

	if err := db.SaveCrawlReport(ctx, report); err != nil {
		return err
	}

	s.logger.Debug("crawl report saved",
		"pages", len(report.Pages),
		"emails", len(report.Emails),
	)

	return nil
}
