package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailspider/mailspider/internal/config"
	"github.com/mailspider/mailspider/internal/log"
	"github.com/mailspider/mailspider/internal/model"
	"github.com/mailspider/mailspider/internal/pipeline"
	"github.com/mailspider/mailspider/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl seed websites and extract contact email addresses",
		Long: `Crawl fetches each seed URL, follows same-domain links found on the
seed page, and extracts email addresses that belong to the crawled
site's own domain.

Links whose paths contain priority keywords (such as "contact" or
"about") are fetched first, so the per-domain page budget is spent on
the pages most likely to carry addresses.

Examples:
  # Crawl a single site
  mailspider crawl example.com

  # Crawl several sites with a custom page budget
  mailspider crawl --max-pages 20 example.com other.org

  # Prefer contact-ish pages
  mailspider crawl --keywords contact,about,impressum example.com

  # Output JSON report to a file
  mailspider crawl --json -o report.json example.com

  # Use a custom configuration file
  mailspider crawl -c myconfig.yaml example.com

Configuration file (.mailspider) example:
  seeds:
    - example.com
  keywords:
    - contact
    - about
  sites:
    example.com:
      cookie: "session_id=abc123"
      maxPages: 20`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPagesPerDomain,
		"Maximum number of pages to fetch per domain")
	cmd.Flags().StringSliceP("keywords", "k", nil,
		"Priority URL keywords in rank order (earlier means higher priority)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of concurrent fetch workers")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum delay between requests to the same host")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mailspider in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().Bool("no-db", false,
		"Skip saving results to the local database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential sanitization
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. Seeds from the file are merged with positional
// arguments; flag keywords take precedence over file keywords.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPagesPerDomain, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.PriorityURLKeywords, err = cmd.Flags().GetStringSlice("keywords")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load seeds, keywords, and site overrides from the config file.
	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	// Positional arguments are seeds; file seeds are appended after them.
	cfg.Seeds = append(cfg.Seeds, args...)
	cfg.Seeds = append(cfg.Seeds, cfg.SiteConfigs.Seeds...)

	// File keywords apply only when the flag was not given.
	if len(cfg.PriorityURLKeywords) == 0 {
		cfg.PriorityURLKeywords = cfg.SiteConfigs.Keywords
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runCrawl executes the crawl pipeline and renders the report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"maxPagesPerDomain", cfg.MaxPagesPerDomain,
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		// A database failure should not discard crawl output.
		pipeline.WithContinueOnError(true),
	)
	p.AddStep(pipeline.NewCrawlStep(cfg, pipeline.WithCrawlLogger(logger)))
	if cfg.SaveToDB {
		p.AddStep(pipeline.NewSaveStep(cfg.DBDir, pipeline.WithSaveLogger(logger)))
	}

	crawlReport := model.NewCrawlReport(cfg.Seeds)

	fmt.Printf("Crawling %d seed(s)...\n", len(cfg.Seeds))
	startTime := time.Now()

	pipelineErr := p.Execute(ctx, crawlReport)
	if pipelineErr != nil {
		logger.Error("crawl failed", "error", pipelineErr)
	} else {
		fmt.Printf("Crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	}

	// Render whatever was gathered, even after cancellation.
	if err := outputReport(cfg, crawlReport); err != nil {
		logger.Error("report output failed", "error", err)
		return err
	}

	return pipelineErr
}

// outputReport writes the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports carry harvested addresses, keep them owner-readable only
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(crawlReport)
	return err
}
