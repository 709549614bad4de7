package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-scraper/internal/config"
	"conference-scraper/internal/enrich"
	"conference-scraper/internal/observability"
	"conference-scraper/internal/search"
	"conference-scraper/internal/storage"
	"conference-scraper/internal/storage/xlsx"
)

type fakeScraper struct {
	pages    map[string][]string
	urls     []string
	onScrape func()
}

func (f *fakeScraper) ScrapePage(_ context.Context, url string) []string {
	f.urls = append(f.urls, url)
	if f.onScrape != nil {
		f.onScrape()
	}
	return f.pages[url]
}

type fakeSearch struct {
	links map[string]string
}

func (f *fakeSearch) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	if link, ok := f.links[query]; ok {
		return []search.Result{{URL: link}}, nil
	}
	return nil, nil
}

type fakeMirror struct {
	titles map[int][]string
	links  []storage.TitleLink
	err    error
}

func (m *fakeMirror) SaveTitles(_ context.Context, _ string, page int, titles []string) error {
	if m.titles == nil {
		m.titles = make(map[int][]string)
	}
	m.titles[page] = titles
	return m.err
}

func (m *fakeMirror) SaveLinks(_ context.Context, _ string, links []storage.TitleLink) error {
	m.links = append(m.links, links...)
	return m.err
}

func (m *fakeMirror) Close() error { return nil }

type failingEnricher struct {
	err error
}

func (f failingEnricher) Enrich(context.Context, string, string) (enrich.Report, error) {
	return enrich.Report{}, f.err
}

func (f failingEnricher) EnrichPending(context.Context, string, string) (enrich.Report, error) {
	return enrich.Report{}, f.err
}

func testConfig(t *testing.T, first, last int) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.URLTemplate = "https://conferences.example.org/search?pos={page}&sort=desc"
	cfg.Source.FirstPage = first
	cfg.Source.LastPage = last
	cfg.Storage.Path = filepath.Join(t.TempDir(), "conferences.xlsx")
	require.NoError(t, cfg.Validate())
	return cfg
}

func pageURL(page int) string {
	return fmt.Sprintf("https://conferences.example.org/search?pos=%d&sort=desc", page)
}

func newTestOrchestrator(cfg *config.Config, scr PageScraper, links map[string]string, mirror storage.Mirror) (*Orchestrator, *xlsx.Store) {
	logger := observability.NewNop()
	store := xlsx.NewStore(cfg.Storage.Path, logger)
	resolver := enrich.NewResolver(&fakeSearch{links: links}, logger)
	pipeline := enrich.NewPipeline(store, resolver, logger)
	return NewOrchestrator(cfg, logger, scr, store, pipeline, mirror), store
}

func TestRunSinglePageEndToEnd(t *testing.T) {
	cfg := testConfig(t, 5, 5)
	scr := &fakeScraper{pages: map[string][]string{
		pageURL(5): {"ICX 2025", "ICY 2025"},
	}}
	mirror := &fakeMirror{}
	orch, store := newTestOrchestrator(cfg, scr, map[string]string{
		"ICX 2025": "https://icx.example.org",
		"ICY 2025": "https://icy.example.org",
	}, mirror)

	stats, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{pageURL(5)}, scr.urls)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 2, stats.Titles)
	assert.Equal(t, 2, stats.Resolved)

	titles, err := store.ReadColumn("titles", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ICX 2025", "ICY 2025"}, titles)

	links, err := store.ReadColumn("links", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://icx.example.org", "https://icy.example.org"}, links)

	assert.Equal(t, []string{"ICX 2025", "ICY 2025"}, mirror.titles[5])
	assert.Len(t, mirror.links, 2)
	assert.NotEmpty(t, orch.RunID())
}

func TestRunAppendsBelowExistingRows(t *testing.T) {
	cfg := testConfig(t, 5, 5)
	scr := &fakeScraper{pages: map[string][]string{pageURL(5): {"ICX 2025", "ICY 2025"}}}
	orch, store := newTestOrchestrator(cfg, scr, nil, nil)

	_, err := store.Append("titles", []any{"Old A", "Old B", "Old C"})
	require.NoError(t, err)

	_, err = orch.Run(context.Background())
	require.NoError(t, err)

	titles, err := store.ReadColumn("titles", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Old A", "Old B", "Old C", "ICX 2025", "ICY 2025"}, titles)

	links, err := store.ReadColumn("links", 1)
	require.NoError(t, err)
	assert.Len(t, links, 5, "full mode resolves the whole accumulated column")
}

func TestRunProcessesPagesInOrder(t *testing.T) {
	cfg := testConfig(t, 4, 6)
	cfg.Storage.EnrichMode = "pending"
	scr := &fakeScraper{pages: map[string][]string{
		pageURL(4): {"A", "B"},
		pageURL(6): {"C", "A"},
	}}
	orch, store := newTestOrchestrator(cfg, scr, map[string]string{"A": "https://a.example"}, nil)

	stats, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{pageURL(4), pageURL(5), pageURL(6)}, scr.urls)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 1, stats.EmptyPages)

	titles, err := store.ReadColumn("titles", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "A"}, titles, "no deduplication across pages")

	links, err := store.ReadColumn("links", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "", "", "https://a.example"}, links)
}

func TestRunContinuesWhenEnrichmentSkipped(t *testing.T) {
	cfg := testConfig(t, 1, 2)
	logger := observability.NewNop()
	store := xlsx.NewStore(cfg.Storage.Path, logger)
	scr := &fakeScraper{pages: map[string][]string{pageURL(1): {"A"}, pageURL(2): {"B"}}}

	orch := NewOrchestrator(cfg, logger, scr, store,
		failingEnricher{err: fmt.Errorf("read titles: %w", storage.ErrSheetNotFound)}, nil)

	stats, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2, stats.EnrichSkipped)
}

func TestRunStopsOnEnrichmentStoreFailure(t *testing.T) {
	cfg := testConfig(t, 1, 3)
	logger := observability.NewNop()
	store := xlsx.NewStore(cfg.Storage.Path, logger)
	scr := &fakeScraper{pages: map[string][]string{pageURL(1): {"A"}}}

	orch := NewOrchestrator(cfg, logger, scr, store, failingEnricher{err: fmt.Errorf("disk full")}, nil)

	stats, err := orch.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, stats.Pages)
}

func TestRunFailsWhenWorkbookCannotBeSaved(t *testing.T) {
	cfg := testConfig(t, 1, 2)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "missing-dir", "conferences.xlsx")
	scr := &fakeScraper{pages: map[string][]string{pageURL(1): {"A"}}}
	orch, _ := newTestOrchestrator(cfg, scr, nil, nil)

	stats, err := orch.Run(context.Background())
	assert.Error(t, err)
	assert.Zero(t, stats.Pages)
	assert.Len(t, scr.urls, 1)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	cfg := testConfig(t, 1, 3)
	scr := &fakeScraper{}
	orch, _ := newTestOrchestrator(cfg, scr, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := orch.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Pages)
	assert.Empty(t, scr.urls)
	assert.Contains(t, stats.StoppedReason, "interrupted")
}

func TestRunSkipsEnrichmentWhenCancelledDuringPage(t *testing.T) {
	cfg := testConfig(t, 1, 3)
	cfg.Storage.EnrichMode = "pending"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scr := &fakeScraper{
		pages:    map[string][]string{pageURL(1): {"A", "B", "C"}},
		onScrape: cancel,
	}
	orch, store := newTestOrchestrator(cfg, scr, map[string]string{
		"A": "https://a.example.org",
	}, nil)

	stats, err := orch.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 3, stats.Titles)
	assert.Zero(t, stats.Links)
	assert.Contains(t, stats.StoppedReason, "interrupted after page 1")
	assert.Equal(t, []string{pageURL(1)}, scr.urls)

	titles, err := store.ReadColumn("titles", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles)

	_, err = store.ReadColumn("links", 1)
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)
}

func TestMirrorFailureDoesNotAffectWorkbook(t *testing.T) {
	cfg := testConfig(t, 1, 1)
	scr := &fakeScraper{pages: map[string][]string{pageURL(1): {"A"}}}
	mirror := &fakeMirror{err: fmt.Errorf("connection refused")}
	orch, store := newTestOrchestrator(cfg, scr, nil, mirror)

	_, err := orch.Run(context.Background())
	require.NoError(t, err)

	titles, err := store.ReadColumn("titles", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles)
}
