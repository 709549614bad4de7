package scraper

import (
	"context"
	"fmt"
	"time"

	"conference-scraper/internal/browser"
	"conference-scraper/internal/observability"
)

type Scraper struct {
	opener    browser.Opener
	locator   *Locator
	extractor *TitleExtractor
	opts      Options
	logger    *observability.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewScraper(opener browser.Opener, selectors Selectors, opts Options, logger *observability.Logger) *Scraper {
	return &Scraper{
		opener:    opener,
		locator:   NewLocator(selectors.Items, opts.PresenceTimeout, logger),
		extractor: NewTitleExtractor(selectors.Titles, logger),
		opts:      opts,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// ScrapePage возвращает заголовки страницы без повторов в порядке первого появления.
// Ошибки загрузки не пробрасываются: в худшем случае результат пуст.
// Сессия браузера закрывается ровно один раз на любом пути выхода.
func (s *Scraper) ScrapePage(ctx context.Context, url string) (titles []string) {
	collected := newTitleSet()
	// Результат всегда берётся из collected, в том числе после паники
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Page scrape panicked", "url", url, "panic", fmt.Sprint(r))
		}
		titles = collected.Titles()
	}()

	session, err := s.opener.Open(ctx, url)
	if err != nil {
		s.logger.Error("Failed to open page", "url", url, "error", err.Error())
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("Failed to close browser session", "url", url, "error", err.Error())
		}
	}()

	// Фиксированная пауза под клиентский рендеринг.
	// TODO: заменить на явный сигнал готовности, когда Session будет его отдавать.
	if err := s.sleep(ctx, s.opts.SettleDelay); err != nil {
		s.logger.Warn("Settle delay interrupted", "url", url, "error", err.Error())
		return
	}

	items := s.locator.Locate(session)
	dropped := 0
	for _, item := range items {
		title, ok := s.extractor.Extract(item)
		if !ok {
			dropped++
			continue
		}
		collected.Add(title)
	}

	s.logger.Info("Page scraped",
		"url", url,
		"items", len(items),
		"titles", len(collected.Titles()),
		"dropped", dropped,
	)

	return
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
