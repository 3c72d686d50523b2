package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mailspider/mailspider/internal/model"
)

// timeRounding keeps durations readable in terminal output.
const timeRounding = 10 * time.Millisecond

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with highlighted addresses
// and clear section formatting.
//
// Design decision: We use fatih/color for highlighting because it honors
// NO_COLOR and disables itself automatically when the destination is not
// a terminal, so the same writer works for both display and file output.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether domains with no addresses are shown.
	showEmpty bool

	// verbose enables per-address source URLs in the output.
	verbose bool

	// upper renders section headers in locale-aware upper case.
	upper cases.Caser

	domainColor *color.Color
	emailColor  *color.Color
	errorColor  *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show domains without results.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		upper:       cases.Upper(language.English),
		domainColor: color.New(color.FgCyan, color.Bold),
		emailColor:  color.New(color.FgGreen),
		errorColor:  color.New(color.FgRed),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	return w.WriteSimple(model.NewSimpleReport(report))
}

// WriteSimple outputs the simple report in human-readable format.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeDomains(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        MAILSPIDER REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seeds:        %s\n", strings.Join(report.Seeds, ", ")))
	sb.WriteString(fmt.Sprintf("Started:      %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration.Round(timeRounding)))

	if report.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:       %s\n", w.errorColor.Sprintf("ERROR - %s", report.Error)))
	} else {
		sb.WriteString("Status:       Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the crawl totals section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SimpleReport) {
	w.writeSectionHeader(sb, "Summary")

	sb.WriteString(fmt.Sprintf("  Pages crawled:   %d\n", report.TotalPages))
	sb.WriteString(fmt.Sprintf("  Fetch errors:    %d\n", report.FetchErrors))
	sb.WriteString(fmt.Sprintf("  Unique emails:   %d\n", report.TotalEmails))
	sb.WriteString("\n")
}

// writeDomains writes the per-domain results.
func (w *SimpleWriter) writeDomains(sb *strings.Builder, report *model.SimpleReport) {
	w.writeSectionHeader(sb, "Results by Domain")

	wrote := false
	for _, d := range report.Domains {
		if len(d.Emails) == 0 && !w.showEmpty {
			continue
		}
		wrote = true

		sb.WriteString(fmt.Sprintf("%s (%d pages)\n", w.domainColor.Sprint(d.Domain), d.Pages))
		if len(d.Emails) == 0 {
			sb.WriteString("  No addresses found\n")
		}
		for _, e := range d.Emails {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", w.emailColor.Sprint(e)))
		}
		sb.WriteString("\n")
	}

	if !wrote {
		sb.WriteString("  No addresses found\n\n")
	}
}

// writeSectionHeader writes a delimited upper-case section header.
func (w *SimpleWriter) writeSectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(w.upper.String(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
