package enrich

import (
	"context"

	"conference-scraper/internal/observability"
	"conference-scraper/internal/search"
)

// Resolver превращает текстовый запрос в одну ссылку: первый результат поиска.
type Resolver struct {
	client search.Client
	logger *observability.Logger
}

func NewResolver(client search.Client, logger *observability.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Resolve запрашивает ровно один результат. Ошибка поиска и пустая выдача дают "".
func (r *Resolver) Resolve(ctx context.Context, query string) string {
	results, err := r.client.Search(ctx, query, 1)
	if err != nil {
		r.logger.Warn("Search failed", "query", query, "error", err.Error())
		return ""
	}
	if len(results) == 0 {
		r.logger.Warn("No results found", "query", query)
		return ""
	}

	r.logger.Debug("Link resolved", "query", query, "url", results[0].URL)
	return results[0].URL
}
