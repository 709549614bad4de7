package enrich

import (
	"context"
	"fmt"
	"strings"

	"conference-scraper/internal/observability"
	"conference-scraper/internal/storage"
)

const titleColumn = 1

// LinkResolver — см. Resolver
type LinkResolver interface {
	Resolve(ctx context.Context, query string) string
}

type Pipeline struct {
	store    storage.Tabular
	resolver LinkResolver
	logger   *observability.Logger
}

type Report struct {
	// Offset — строка листа заголовков, с которой начиналась обработка (0-based)
	Offset   int
	Resolved int
	Links    []storage.TitleLink
	Appended storage.AppendResult
}

func NewPipeline(store storage.Tabular, resolver LinkResolver, logger *observability.Logger) *Pipeline {
	return &Pipeline{store: store, resolver: resolver, logger: logger}
}

// Enrich читает все заголовки и дописывает в linksSheet столько же ссылок в том же порядке.
// Соответствие заголовков и ссылок — только по порядку строк.
// Отсутствие файла или листа заголовков возвращается как storage.ErrStoreNotFound / ErrSheetNotFound.
func (p *Pipeline) Enrich(ctx context.Context, titlesSheet, linksSheet string) (Report, error) {
	titles, err := p.store.ReadColumn(titlesSheet, titleColumn)
	if err != nil {
		return Report{}, fmt.Errorf("read titles: %w", err)
	}
	return p.resolveAndAppend(ctx, titles, 0, linksSheet)
}

// EnrichPending обрабатывает только заголовки, для которых в linksSheet ещё нет строки,
// так что после каждого прохода строка N листа ссылок соответствует строке N листа заголовков.
func (p *Pipeline) EnrichPending(ctx context.Context, titlesSheet, linksSheet string) (Report, error) {
	titles, err := p.store.ReadColumn(titlesSheet, titleColumn)
	if err != nil {
		return Report{}, fmt.Errorf("read titles: %w", err)
	}

	done, err := p.store.RowCount(linksSheet)
	if err != nil {
		return Report{}, fmt.Errorf("count links: %w", err)
	}
	if done >= len(titles) {
		p.logger.Info("No pending titles", "titles", len(titles), "links", done)
		return Report{Offset: done}, nil
	}

	return p.resolveAndAppend(ctx, titles[done:], done, linksSheet)
}

func (p *Pipeline) resolveAndAppend(ctx context.Context, titles []string, offset int, linksSheet string) (Report, error) {
	report := Report{Offset: offset, Links: make([]storage.TitleLink, 0, len(titles))}
	rows := make([]any, 0, len(titles))

	for i, title := range titles {
		link := ""
		if strings.TrimSpace(title) == "" {
			p.logger.Warn("Empty title cell, leaving link blank", "row", offset+i+1)
		} else {
			link = p.resolver.Resolve(ctx, title)
		}
		if link != "" {
			report.Resolved++
		}
		report.Links = append(report.Links, storage.TitleLink{Title: title, Link: link})
		rows = append(rows, link)
	}

	appended, err := p.store.Append(linksSheet, rows)
	if err != nil {
		return report, fmt.Errorf("append links: %w", err)
	}
	report.Appended = appended

	p.logger.Info("Enrichment completed",
		"titles", len(titles),
		"resolved", report.Resolved,
		"first_row", appended.FirstRow,
		"last_row", appended.LastRow,
	)
	return report, nil
}
