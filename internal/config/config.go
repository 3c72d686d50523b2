package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These match the behavior expected by most contact-harvesting runs
// while keeping resource use bounded per domain.
const (
	// DefaultMaxPagesPerDomain caps completed fetches per distinct host.
	// Once a domain reaches the cap, link expansion stops for it; the
	// cap is what keeps the crawl from wandering across large sites.
	DefaultMaxPagesPerDomain = 50

	// DefaultTimeout is the connection timeout for each HTTP request.
	// Clearnet sites normally answer well within 30 seconds; slower
	// responses are usually not worth waiting for in a bounded crawl.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of fetch workers. Ten concurrent
	// requests balances throughput with politeness toward small sites.
	DefaultConcurrency = 10

	// DefaultCrawlDelay is the minimum delay between requests to the
	// same host. This is a politeness setting.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent identifies mailspider in HTTP requests.
	// A descriptive User-Agent lets operators identify crawler traffic.
	DefaultUserAgent = "mailspider/1.0 (+https://github.com/mailspider/mailspider)"

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is sufficient for HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "mailspider"
)

// Config holds all configuration options for a crawl run.
// This struct is populated from CLI flags and the optional config file,
// then passed through the application via dependency injection rather
// than global state.
type Config struct {
	// Seeds is the list of start URLs. Entries without a scheme are
	// normalized to https:// before use.
	Seeds []string

	// MaxPagesPerDomain caps completed fetches per distinct host.
	MaxPagesPerDomain int

	// PriorityURLKeywords biases link-following order toward URLs whose
	// path contains one of these keywords. Order matters: earlier
	// keywords rank higher. Matching is case-insensitive. Empty means
	// discovery order is kept.
	PriorityURLKeywords []string

	// Timeout is the connection timeout for each HTTP request.
	Timeout time.Duration

	// Concurrency is the number of concurrent fetch workers.
	Concurrency int

	// CrawlDelay is the minimum delay between requests to the same host.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .mailspider in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-domain overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite results database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist crawl results.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe defaults that work for most use cases;
// callers override specific values after creation.
func NewConfig() *Config {
	return &Config{
		MaxPagesPerDomain: DefaultMaxPagesPerDomain,
		Timeout:           DefaultTimeout,
		Concurrency:       DefaultConcurrency,
		CrawlDelay:        DefaultCrawlDelay,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for mailspider.
// On Linux: ~/.local/share/mailspider
// On macOS: ~/Library/Application Support/mailspider
// On Windows: %LOCALAPPDATA%\mailspider
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mailspider.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found; fixing one error often makes
// others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	// Zero or negative budget would immediately stop every domain
	if c.MaxPagesPerDomain <= 0 {
		return ErrInvalidMaxPages
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
