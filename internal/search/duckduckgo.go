package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"conference-scraper/internal/fetcher"
	"conference-scraper/internal/normalize"
)

// DuckDuckGo ищет через HTML-версию выдачи DuckDuckGo (без JavaScript и ключей API).
type DuckDuckGo struct {
	endpoint string
	fetcher  *fetcher.Fetcher
}

func NewDuckDuckGo(endpoint string, f *fetcher.Fetcher) *DuckDuckGo {
	return &DuckDuckGo{endpoint: endpoint, fetcher: f}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		return nil, nil
	}

	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	resp, err := d.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	return parseResults(resp.Body, limit)
}

func parseResults(body []byte, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var results []Result
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		target := resolveRedirect(href)
		if target == "" {
			return true
		}
		results = append(results, Result{
			URL:   target,
			Title: normalize.Title(sel.Text()),
		})
		return len(results) < limit
	})

	return results, nil
}

// resolveRedirect достаёт целевой адрес из ссылки вида //duckduckgo.com/l/?uddg=<url>.
// Рекламные ссылки (y.js) и относительные адреса отбрасываются.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if strings.HasSuffix(u.Host, "duckduckgo.com") {
		if u.Path == "/y.js" {
			return ""
		}
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		return normalize.NormalizeURL(target)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return normalize.NormalizeURL(u.String())
}
