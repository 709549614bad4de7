package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"conference-scraper/internal/config"
	"conference-scraper/internal/enrich"
	"conference-scraper/internal/observability"
	"conference-scraper/internal/storage"
)

type PageScraper interface {
	ScrapePage(ctx context.Context, url string) []string
}

type Enricher interface {
	Enrich(ctx context.Context, titlesSheet, linksSheet string) (enrich.Report, error)
	EnrichPending(ctx context.Context, titlesSheet, linksSheet string) (enrich.Report, error)
}

type Orchestrator struct {
	cfg      *config.Config
	logger   *observability.Logger
	scraper  PageScraper
	store    storage.Tabular
	enricher Enricher
	mirror   storage.Mirror
	runID    string
}

// NewOrchestrator; mirror может быть nil.
func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	s PageScraper,
	store storage.Tabular,
	e Enricher,
	mirror storage.Mirror,
) *Orchestrator {
	runID := uuid.NewString()
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger.With("run_id", runID),
		scraper:  s,
		store:    store,
		enricher: e,
		mirror:   mirror,
		runID:    runID,
	}
}

type RunStats struct {
	Pages         int
	EmptyPages    int
	Titles        int
	Links         int
	Resolved      int
	EnrichSkipped int
	StoppedReason string
}

func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run обходит страницы source.first_page..last_page по возрастанию.
// На каждой странице: сбор заголовков → дозапись в лист заголовков → обогащение.
// Ошибку возвращает только сбой сохранения книги.
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	first, last := o.cfg.Source.FirstPage, o.cfg.Source.LastPage

	o.logger.Info("Starting run",
		"first_page", first,
		"last_page", last,
		"store", o.cfg.Storage.Path,
		"enrich_mode", o.cfg.Storage.EnrichMode,
	)

	stats := &RunStats{}
	for page := first; page <= last; page++ {
		if err := ctx.Err(); err != nil {
			stats.StoppedReason = fmt.Sprintf("interrupted before page %d", page)
			break
		}

		titles, err := o.ScrapePage(ctx, page)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("store error at page %d: %v", page, err)
			return stats, err
		}
		stats.Pages++
		stats.Titles += titles
		if titles == 0 {
			stats.EmptyPages++
		}

		// Поиск с отменённым context вернул бы пустые ссылки для каждого заголовка
		if err := ctx.Err(); err != nil {
			stats.StoppedReason = fmt.Sprintf("interrupted after page %d, enrichment skipped", page)
			break
		}

		report, err := o.Enrich(ctx)
		if err != nil {
			if isMissingStore(err) {
				o.logger.Warn("Enrichment skipped", "page", page, "error", err.Error())
				stats.EnrichSkipped++
				continue
			}
			stats.StoppedReason = fmt.Sprintf("store error while enriching page %d: %v", page, err)
			return stats, err
		}
		stats.Links += len(report.Links)
		stats.Resolved += report.Resolved
	}

	if stats.StoppedReason == "" {
		stats.StoppedReason = "page range completed"
	}

	o.logger.Info("Run completed",
		"pages", stats.Pages,
		"empty_pages", stats.EmptyPages,
		"titles", stats.Titles,
		"links", stats.Links,
		"resolved", stats.Resolved,
		"enrich_skipped", stats.EnrichSkipped,
		"reason", stats.StoppedReason,
	)
	return stats, nil
}

// ScrapePage собирает одну страницу и дописывает заголовки в лист заголовков.
// Пустая страница тоже проходит через Append: файл и лист создаются при первом проходе.
func (o *Orchestrator) ScrapePage(ctx context.Context, page int) (int, error) {
	url := o.cfg.PageURL(page)
	o.logger.Info("Processing page", "page", page, "url", url)

	titles := o.scraper.ScrapePage(ctx, url)
	if len(titles) == 0 {
		o.logger.Warn("No titles found on page", "page", page, "url", url)
	}

	rows := make([]any, len(titles))
	for i, title := range titles {
		rows[i] = title
	}
	appended, err := o.store.Append(o.cfg.Storage.TitlesSheet, rows)
	if err != nil {
		return 0, fmt.Errorf("append titles for page %d: %w", page, err)
	}

	o.logger.Info("Titles stored",
		"page", page,
		"titles", len(titles),
		"first_row", appended.FirstRow,
		"last_row", appended.LastRow,
	)

	if o.mirror != nil && len(titles) > 0 {
		if err := o.mirror.SaveTitles(ctx, o.runID, page, titles); err != nil {
			o.logger.Error("Mirror failed to save titles", "page", page, "error", err.Error())
		}
	}

	return len(titles), nil
}

// Enrich запускает обогащение в режиме storage.enrich_mode.
func (o *Orchestrator) Enrich(ctx context.Context) (enrich.Report, error) {
	titlesSheet, linksSheet := o.cfg.Storage.TitlesSheet, o.cfg.Storage.LinksSheet

	var (
		report enrich.Report
		err    error
	)
	if o.cfg.Storage.EnrichMode == "pending" {
		report, err = o.enricher.EnrichPending(ctx, titlesSheet, linksSheet)
	} else {
		report, err = o.enricher.Enrich(ctx, titlesSheet, linksSheet)
	}
	if err != nil {
		return report, err
	}

	if o.mirror != nil && len(report.Links) > 0 {
		if err := o.mirror.SaveLinks(ctx, o.runID, report.Links); err != nil {
			o.logger.Error("Mirror failed to save links", "error", err.Error())
		}
	}
	return report, nil
}

func isMissingStore(err error) bool {
	return errors.Is(err, storage.ErrStoreNotFound) || errors.Is(err, storage.ErrSheetNotFound)
}
