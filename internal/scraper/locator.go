package scraper

import (
	"time"

	"conference-scraper/internal/browser"
	"conference-scraper/internal/observability"
)

// Locator находит карточки конференций: первый селектор, давший хотя бы один узел, выигрывает.
type Locator struct {
	strategies []Strategy[browser.Session, []browser.Node]
	logger     *observability.Logger
}

func NewLocator(selectors []string, timeout time.Duration, logger *observability.Logger) *Locator {
	strategies := make([]Strategy[browser.Session, []browser.Node], 0, len(selectors))
	for _, selector := range selectors {
		selector := selector
		strategies = append(strategies, Strategy[browser.Session, []browser.Node]{
			Name: selector,
			Run: func(page browser.Session) ([]browser.Node, error) {
				return page.WaitForPresence(selector, timeout)
			},
		})
	}
	return &Locator{strategies: strategies, logger: logger}
}

// Locate никогда не возвращает ошибку: если все стратегии провалились, результат пуст.
func (l *Locator) Locate(page browser.Session) []browser.Node {
	res := FirstSuccess(page, l.strategies,
		func(nodes []browser.Node) bool { return len(nodes) == 0 },
		func(name string, err error) {
			l.logger.Warn("Item strategy failed", "selector", name, "error", err.Error())
		},
	)
	if !res.Found {
		l.logger.Warn("No item strategy matched", "strategies", len(l.strategies))
		return nil
	}

	l.logger.Debug("Items located", "selector", res.Strategy, "count", len(res.Value))
	return res.Value
}
