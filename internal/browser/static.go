package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"conference-scraper/internal/fetcher"
)

// Static загружает HTML без исполнения JavaScript.
type Static struct {
	fetcher *fetcher.Fetcher
}

func NewStatic(f *fetcher.Fetcher) *Static {
	return &Static{fetcher: f}
}

func (s *Static) Open(ctx context.Context, url string) (Session, error) {
	resp, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &staticSession{doc: doc}, nil
}

// NewStaticSession оборачивает уже полученный HTML в Session.
func NewStaticSession(rawHTML string) (Session, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &staticSession{doc: doc}, nil
}

type staticSession struct {
	doc       *goquery.Document
	closeOnce sync.Once
}

// WaitForPresence не ждёт: документ статичен, timeout игнорируется.
func (s *staticSession) WaitForPresence(selector string, _ time.Duration) ([]Node, error) {
	found := s.doc.Find(selector)
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotPresent, selector)
	}

	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, staticNode{sel: sel})
	})
	return nodes, nil
}

func (s *staticSession) Close() error {
	s.closeOnce.Do(func() { s.doc = nil })
	return nil
}

type staticNode struct {
	sel *goquery.Selection
}

func (n staticNode) Text() (string, error) {
	var b strings.Builder
	for _, node := range n.sel.Nodes {
		renderText(&b, node)
	}
	return collapseNewlines(b.String()), nil
}

func (n staticNode) FindText(selector string) (string, error) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotPresent, selector)
	}
	return staticNode{sel: found}.Text()
}

var whitespace = regexp.MustCompile(`\s+`)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "section": true,
	"table": true, "tr": true, "ul": true,
}

// renderText приближает innerText браузера: блоки и <br> дают перевод строки,
// script/style пропускаются.
func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(whitespace.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "br":
			b.WriteString("\n")
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}

func collapseNewlines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
