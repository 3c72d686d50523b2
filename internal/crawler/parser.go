package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseResult holds what link discovery extracts from an HTML page.
type parseResult struct {
	// title is the page title from the <title> tag.
	title string

	// links are absolute candidate URLs from anchor hrefs, deduplicated
	// in document order.
	links []string
}

// parseDocument extracts the title and candidate links from an HTML
// document. Relative hrefs are resolved against baseURL; mailto, tel,
// javascript, and fragment-only hrefs are skipped, as is any resolved
// URL that is not http(s).
//
// Design decision: We parse with goquery rather than walking x/net/html
// nodes by hand because anchor/title extraction is exactly the
// selector-shaped work it is built for, and it tolerates the malformed
// HTML common on small business sites.
func parseDocument(baseURL string, body io.Reader) (*parseResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	result := &parseResult{
		title: strings.TrimSpace(doc.Find("title").First().Text()),
		links: make([]string, 0),
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") ||
			strings.HasPrefix(lower, "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		link := abs.String()
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		result.links = append(result.links, link)
	})

	return result, nil
}
