package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"conference-scraper/internal/app"
	"conference-scraper/internal/browser"
	"conference-scraper/internal/config"
	"conference-scraper/internal/enrich"
	"conference-scraper/internal/fetcher"
	"conference-scraper/internal/observability"
	"conference-scraper/internal/scraper"
	"conference-scraper/internal/search"
	"conference-scraper/internal/storage"
	"conference-scraper/internal/storage/mssql"
	"conference-scraper/internal/storage/xlsx"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape the configured page range, store titles and enrich them with links",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := app.GracefulShutdown(cmd.Context(), logger)
		defer cancel()

		orch, cleanup, err := buildOrchestrator(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		stats, err := orch.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pages=%d titles=%d links=%d resolved=%d enrich_skipped=%d (%s)\n",
			stats.Pages, stats.Titles, stats.Links, stats.Resolved, stats.EnrichSkipped, stats.StoppedReason)
		return nil
	},
}

var scrapePage int

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a single listing page and append its titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, cleanup, err := buildOrchestrator(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := orch.ScrapePage(cmd.Context(), scrapePage)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "page=%d titles=%d\n", scrapePage, n)
		return nil
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Resolve links for stored titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, cleanup, err := buildOrchestrator(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := orch.Enrich(cmd.Context())
		if err != nil {
			if errors.Is(err, storage.ErrStoreNotFound) {
				return fmt.Errorf("%w (run 'confscrape scrape' or 'confscrape run' first)", err)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "links=%d resolved=%d rows=%d..%d\n",
			len(report.Links), report.Resolved, report.Appended.FirstRow, report.Appended.LastRow)
		return nil
	},
}

var (
	dumpSheet  string
	dumpColumn int
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print one column of a sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := xlsx.NewStore(cfg.Storage.Path, logger)
		values, err := store.ReadColumn(dumpSheet, dumpColumn)
		if err != nil {
			return err
		}
		for i, v := range values {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, v)
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapePage, "page", 0, "page index substituted into source.url_template")
	_ = scrapeCmd.MarkFlagRequired("page")

	dumpCmd.Flags().StringVar(&dumpSheet, "sheet", "", "sheet name (active sheet when empty)")
	dumpCmd.Flags().IntVar(&dumpColumn, "column", 1, "1-based column index")
}

// buildOrchestrator собирает зависимости по конфигу. cleanup закрывает зеркало БД.
func buildOrchestrator(cfg *config.Config, logger *observability.Logger) (*app.Orchestrator, func(), error) {
	pageFetcher := fetcher.NewFetcher(fetcher.Options{
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
		Timeout:        cfg.GetTotalTimeout(),
	}, logger)

	var opener browser.Opener
	switch cfg.Browser.Engine {
	case "static":
		opener = browser.NewStatic(pageFetcher)
	default:
		opener = browser.NewRod(browser.RodOptions{
			ChromePath:  cfg.Browser.ChromePath,
			Headless:    cfg.Browser.Headless,
			PageTimeout: cfg.GetPageTimeout(),
		}, logger)
	}
	pageScraper := scraper.NewScraper(opener, cfg.Selectors, cfg.ScraperOptions(), logger)

	searchFetcher := fetcher.NewFetcher(fetcher.Options{
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
		Timeout:        cfg.GetTotalTimeout(),
		RPM:            cfg.Search.RPM,
		Burst:          cfg.Search.Burst,
	}, logger)
	resolver := enrich.NewResolver(search.NewDuckDuckGo(cfg.Search.Endpoint, searchFetcher), logger)

	store := xlsx.NewStore(cfg.Storage.Path, logger)
	pipeline := enrich.NewPipeline(store, resolver, logger)

	var mirror storage.Mirror
	cleanup := func() {}
	if cfg.Storage.MirrorDSN != "" {
		repo, err := mssql.NewRepository(cfg.Storage.MirrorDSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect mirror: %w", err)
		}
		mirror = repo
		cleanup = func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close mirror", "error", err.Error())
			}
		}
	}

	return app.NewOrchestrator(cfg, logger, pageScraper, store, pipeline, mirror), cleanup, nil
}
