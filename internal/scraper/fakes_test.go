package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conference-scraper/internal/browser"
)

type fakeNode struct {
	text   string
	fields map[string]string
	panics bool
}

func (n fakeNode) Text() (string, error) {
	if n.panics {
		panic("node detached")
	}
	return n.text, nil
}

func (n fakeNode) FindText(selector string) (string, error) {
	if n.panics {
		panic("node detached")
	}
	if v, ok := n.fields[selector]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", browser.ErrNotPresent, selector)
}

type fakeSession struct {
	results  map[string][]browser.Node
	queried  []string
	timeouts []time.Duration
	closes   int
}

func (s *fakeSession) WaitForPresence(selector string, timeout time.Duration) ([]browser.Node, error) {
	s.queried = append(s.queried, selector)
	s.timeouts = append(s.timeouts, timeout)
	nodes, ok := s.results[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s: context deadline exceeded", browser.ErrNotPresent, selector)
	}
	return nodes, nil
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

type fakeOpener struct {
	session *fakeSession
	err     error
	opened  []string
}

func (o *fakeOpener) Open(_ context.Context, url string) (browser.Session, error) {
	o.opened = append(o.opened, url)
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

var errNavigation = errors.New("net::ERR_NAME_NOT_RESOLVED")

func titleNodes(titles ...string) []browser.Node {
	nodes := make([]browser.Node, 0, len(titles))
	for _, title := range titles {
		nodes = append(nodes, fakeNode{fields: map[string]string{".item-title": title}})
	}
	return nodes
}

func noSleep(context.Context, time.Duration) error { return nil }
