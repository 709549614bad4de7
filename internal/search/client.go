package search

import "context"

type Result struct {
	URL   string
	Title string
}

// Client выполняет поисковый запрос. Ноль результатов — не ошибка.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
