package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"conference-scraper/internal/observability"
)

// Options задаёт параметры HTTP-клиента.
type Options struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	// RPM и Burst ограничивают частоту запросов к одному хосту. RPM <= 0 отключает лимит.
	RPM   int
	Burst int
}

type Fetcher struct {
	client      *http.Client
	opts        Options
	logger      *observability.Logger
	rateLimiter *RateLimiter
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

func NewFetcher(opts Options, logger *observability.Logger) *Fetcher {
	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			// Сжатие обрабатываем сами, см. fetchOnce
			DisableCompression: true,
		},
	}

	var rl *RateLimiter
	if opts.RPM > 0 {
		rl = NewRateLimiter(opts.RPM, opts.Burst)
	}

	return &Fetcher{
		client:      client,
		opts:        opts,
		logger:      logger,
		rateLimiter: rl,
	}
}

// Fetch выполняет один GET-запрос. Повторов нет: вызывающий решает, что делать с ошибкой.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if f.rateLimiter != nil {
		if err := f.rateLimiter.Wait(ctx, parsedURL.Host); err != nil {
			return nil, fmt.Errorf("rate limit error: %w", err)
		}
	}

	return f.fetchOnce(ctx, urlStr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr string) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	if f.opts.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.opts.AcceptLanguage)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "error", err.Error())
		}
	}()

	reader := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"content_encoding", resp.Header.Get("Content-Encoding"),
		"content_type", resp.Header.Get("Content-Type"),
		"body_size", len(body),
	)

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}
