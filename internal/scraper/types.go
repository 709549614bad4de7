package scraper

import "time"

// Selectors — упорядоченные списки CSS-селекторов: порядок задаёт приоритет.
type Selectors struct {
	// Items находят карточки конференций на странице листинга
	Items []string `yaml:"items"`
	// Titles ищутся внутри карточки; после них пробуется первая строка текста карточки
	Titles []string `yaml:"titles"`
}

type Options struct {
	// SettleDelay — фиксированная пауза после загрузки, чтобы клиентский рендеринг успел завершиться.
	SettleDelay time.Duration
	// PresenceTimeout ограничивает ожидание узлов для каждого селектора Items отдельно.
	PresenceTimeout time.Duration
}

// titleSet — упорядоченное множество: первый встреченный заголовок сохраняет позицию.
type titleSet struct {
	seen  map[string]struct{}
	order []string
}

func newTitleSet() *titleSet {
	return &titleSet{seen: make(map[string]struct{})}
}

func (s *titleSet) Add(title string) bool {
	if _, ok := s.seen[title]; ok {
		return false
	}
	s.seen[title] = struct{}{}
	s.order = append(s.order, title)
	return true
}

func (s *titleSet) Titles() []string {
	return s.order
}
