// Package scraper implements the job-posting fetch port with a plain HTTP
// GET and an HTML walk. No headless browser: pages that render their
// content purely client-side are reported as scrape failures.
package scraper

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"job-assistant/internal/domain"
	"job-assistant/pkg/textx"
)

const maxBodyBytes = 8 << 20

// selectorHints are tried in priority order against class and id
// attributes before falling back to semantic containers.
var selectorHints = []string{"job-description", "jobdescription", "job_description", "description", "job-details", "details", "posting"}

type Scraper struct {
	httpClient *http.Client
	userAgent  string
	minBlock   int
}

// New builds a scraper. minBlock is the minimum collapsed text length a
// block must have to qualify as the posting body.
func New(timeout time.Duration, userAgent string, minBlock int) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		minBlock:   minBlock,
	}
}

// FetchJobText downloads the page and returns the best qualifying text
// block, whitespace collapsed. Every failure mode maps to ErrScrapeFailed
// so callers mark the job task failed rather than degrading to defaults.
func (s *Scraper) FetchJobText(ctx domain.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrScrapeFailed, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", domain.ErrScrapeFailed, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch %s: status %d", domain.ErrScrapeFailed, url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", domain.ErrScrapeFailed, url, err)
	}
	text, err := s.extract(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrScrapeFailed, url, err)
	}
	return text, nil
}

func (s *Scraper) extract(doc *html.Node) (string, error) {
	for _, hint := range selectorHints {
		if text := longestMatching(doc, func(n *html.Node) bool {
			return attrContains(n, hint)
		}); len(text) >= s.minBlock {
			return text, nil
		}
	}
	if text := longestMatching(doc, func(n *html.Node) bool {
		return n.Data == "article" || n.Data == "main"
	}); len(text) >= s.minBlock {
		return text, nil
	}
	// Last resort: the whole body, if it is long enough to be a posting.
	if text := longestMatching(doc, func(n *html.Node) bool {
		return n.Data == "body"
	}); len(text) >= s.minBlock {
		return text, nil
	}
	return "", fmt.Errorf("no content block of at least %d characters", s.minBlock)
}

func longestMatching(doc *html.Node, match func(*html.Node) bool) string {
	var best string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			if t := textx.CollapseWhitespace(nodeText(n)); len(t) > len(best) {
				best = t
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return best
}

func attrContains(n *html.Node, hint string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" && a.Key != "id" {
			continue
		}
		if strings.Contains(strings.ToLower(a.Val), hint) {
			return true
		}
	}
	return false
}

// nodeText concatenates the text content of a subtree, skipping script,
// style, and template elements.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "template", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
