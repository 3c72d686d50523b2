package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/mailspider/mailspider/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	return w.WriteSimple(model.NewSimpleReport(report))
}

// WriteSimple outputs the simple report in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeDomains(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("Mailspider Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seeds", "`" + strings.Join(report.Seeds, "`, `") + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(timeRounding).String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.SimpleReport) string {
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the crawl totals section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(report.TotalPages)},
			{"Fetch errors", strconv.Itoa(report.FetchErrors)},
			{"Unique emails", strconv.Itoa(report.TotalEmails)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

// writeAlert writes an appropriate alert based on crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SimpleReport) {
	switch {
	case report.Error != "":
		md.Cautionf("The crawl ended with an error: %s. Results may be partial.", report.Error)
	case report.TotalEmails == 0:
		md.Note("No contact addresses were found on the crawled pages.")
	case report.FetchErrors > 0:
		md.Warningf("%d request(s) failed during the crawl. Some pages may be missing.", report.FetchErrors)
	default:
		md.Tip(fmt.Sprintf("Found %d unique address(es) without fetch errors.", report.TotalEmails))
	}
	md.PlainText("")
}

// writeDomains writes the per-domain results with address tables.
func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Results by Domain")
	md.PlainText("")

	if len(report.Domains) == 0 {
		md.PlainText("No domains were crawled.")
		md.PlainText("")
		return
	}

	for _, d := range report.Domains {
		md.H3(d.Domain)
		md.PlainText("")
		md.PlainTextf("Pages crawled: %d", d.Pages)
		md.PlainText("")

		if len(d.Emails) == 0 {
			md.PlainText("No addresses found.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, len(d.Emails))
		for i, e := range d.Emails {
			rows[i] = []string{"`" + e + "`"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Email"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [mailspider](https://github.com/mailspider/mailspider)*")
}
