package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"conference-scraper/internal/observability"
)

type RodOptions struct {
	ChromePath  string
	Headless    bool
	PageTimeout time.Duration
}

// Rod запускает отдельный экземпляр Chrome на каждую страницу.
type Rod struct {
	opts   RodOptions
	logger *observability.Logger
}

func NewRod(opts RodOptions, logger *observability.Logger) *Rod {
	return &Rod{opts: opts, logger: logger}
}

func (r *Rod) Open(ctx context.Context, url string) (Session, error) {
	l := launcher.New().
		Headless(r.opts.Headless).
		Set("disable-web-security").
		Set("allow-running-insecure-content").
		Set("disable-extensions").
		Set("start-maximized")
	if r.opts.ChromePath != "" {
		l = l.Bin(r.opts.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		removeUserDataDir(l)
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s := &rodSession{launcher: l, logger: r.logger}
	s.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := s.browser.Connect(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	s.connected = true

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open page %s: %w", url, err)
	}
	s.page = page

	loading := page.Timeout(r.opts.PageTimeout)
	err = loading.WaitLoad()
	loading.CancelTimeout()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("page load failed %s: %w", url, err)
	}

	return s, nil
}

type rodSession struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	connected bool
	logger    *observability.Logger

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) WaitForPresence(selector string, timeout time.Duration) ([]Node, error) {
	p := s.page.Timeout(timeout)
	defer p.CancelTimeout()

	// Element повторяет поиск, пока узел не появится или не истечёт таймаут
	if _, err := p.Element(selector); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotPresent, selector, err)
	}

	elements, err := s.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotPresent, selector)
	}

	nodes := make([]Node, 0, len(elements))
	for _, el := range elements {
		nodes = append(nodes, rodNode{el: el})
	}
	return nodes, nil
}

func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if s.connected {
			s.closeErr = s.browser.Close()
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.logger.Debug("Browser session released", "error", s.closeErr)
	})
	return s.closeErr
}

type rodNode struct {
	el *rod.Element
}

func (n rodNode) Text() (string, error) {
	return n.el.Text()
}

func (n rodNode) FindText(selector string) (string, error) {
	elements, err := n.el.Elements(selector)
	if err != nil {
		return "", err
	}
	if len(elements) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotPresent, selector)
	}
	return elements.First().Text()
}

// removeUserDataDir удаляет временный профиль после неудачного запуска.
// Cleanup здесь не подходит: он ждёт выхода процесса, который мог и не стартовать.
func removeUserDataDir(l *launcher.Launcher) {
	if dir := l.Get(flags.UserDataDir); dir != "" {
		_ = os.RemoveAll(dir)
	}
}
