package scraper

import (
	"conference-scraper/internal/browser"
	"conference-scraper/internal/normalize"
	"conference-scraper/internal/observability"
)

const firstLineStrategy = "first-line"

// TitleExtractor извлекает заголовок из одной карточки.
type TitleExtractor struct {
	strategies []Strategy[browser.Node, string]
	logger     *observability.Logger
}

// NewTitleExtractor: сначала селекторы по порядку, затем первая строка текста карточки.
func NewTitleExtractor(selectors []string, logger *observability.Logger) *TitleExtractor {
	strategies := make([]Strategy[browser.Node, string], 0, len(selectors)+1)
	for _, selector := range selectors {
		selector := selector
		strategies = append(strategies, Strategy[browser.Node, string]{
			Name: selector,
			Run: func(item browser.Node) (string, error) {
				text, err := item.FindText(selector)
				if err != nil {
					return "", err
				}
				return normalize.Title(text), nil
			},
		})
	}
	strategies = append(strategies, Strategy[browser.Node, string]{
		Name: firstLineStrategy,
		Run: func(item browser.Node) (string, error) {
			text, err := item.Text()
			if err != nil {
				return "", err
			}
			return normalize.FirstLine(text), nil
		},
	})

	return &TitleExtractor{strategies: strategies, logger: logger}
}

// Extract возвращает заголовок и true, либо "" и false, если ни одна стратегия не сработала.
func (e *TitleExtractor) Extract(item browser.Node) (string, bool) {
	res := FirstSuccess(item, e.strategies,
		func(title string) bool { return title == "" },
		func(name string, err error) {
			e.logger.Debug("Title strategy failed", "strategy", name, "error", err.Error())
		},
	)
	return res.Value, res.Found
}
