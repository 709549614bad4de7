package config

import (
	"fmt"
	"strings"
	"time"

	"conference-scraper/internal/scraper"
)

// PagePlaceholder подставляется номером страницы в source.url_template
const PagePlaceholder = "{page}"

type Config struct {
	Source        SourceConfig        `yaml:"source"`
	Browser       BrowserConfig       `yaml:"browser"`
	Selectors     scraper.Selectors   `yaml:"selectors"`
	HTTP          HttpConfig          `yaml:"http"`
	Search        SearchConfig        `yaml:"search"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type SourceConfig struct {
	URLTemplate string `yaml:"url_template"`
	FirstPage   int    `yaml:"first_page"`
	LastPage    int    `yaml:"last_page"`
}

type BrowserConfig struct {
	Engine           string `yaml:"engine"`
	ChromePath       string `yaml:"chrome_path"`
	Headless         bool   `yaml:"headless"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	SettleDelayS     int    `yaml:"settle_delay_s"`
	PresenceTimeoutS int    `yaml:"presence_timeout_s"`
}

type HttpConfig struct {
	UserAgent      string `yaml:"user_agent"`
	TotalTimeoutMS int    `yaml:"total_timeout_ms"`
	AcceptLanguage string `yaml:"accept_language"`
}

type SearchConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	RPM      int    `yaml:"rpm"`
	Burst    int    `yaml:"burst"`
}

type StorageConfig struct {
	Path             string `yaml:"path"`
	TitlesSheet      string `yaml:"titles_sheet"`
	LinksSheet       string `yaml:"links_sheet"`
	EnrichMode       string `yaml:"enrich_mode"`
	MirrorDSN        string `yaml:"mirror_dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath  string `yaml:"log_path"`
	LogLevel string `yaml:"log_level"`
}

// Default возвращает конфигурацию, с которой инструмент работает без файла:
// листинг конференций IEEE по Индии, страницы 4..6.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URLTemplate: "https://conferences.ieee.org/conferences_events/conferences/search?q=*&subsequent_q=&date=all&from=&to=&region=all&country=India&pos=" +
				PagePlaceholder +
				"&sortorder=desc&sponsor=&sponsor_type=all&state=all&field_of_interest=all&sortfield=relevance&searchmode=basic&virtualConfReadOnly=N&eventformat=hybrid",
			FirstPage: 4,
			LastPage:  6,
		},
		Browser: BrowserConfig{
			Engine:           "rod",
			Headless:         true,
			PageTimeoutS:     60,
			SettleDelayS:     5,
			PresenceTimeoutS: 10,
		},
		Selectors: scraper.Selectors{
			Items:  []string{".conference-item", "div[class*='conference-item']", "article"},
			Titles: []string{".item-title", "h4"},
		},
		HTTP: HttpConfig{
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			TotalTimeoutMS: 20000,
			AcceptLanguage: "en-US,en;q=0.9",
		},
		Search: SearchConfig{
			Provider: "duckduckgo",
			Endpoint: "https://html.duckduckgo.com/html/",
			RPM:      20,
			Burst:    1,
		},
		Storage: StorageConfig{
			Path:             "conferences.xlsx",
			TitlesSheet:      "titles",
			LinksSheet:       "links",
			EnrichMode:       "full",
			CommandTimeoutMS: 5000,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Source.URLTemplate == "" {
		return fmt.Errorf("source.url_template is required")
	}
	if !strings.Contains(c.Source.URLTemplate, PagePlaceholder) {
		return fmt.Errorf("source.url_template must contain %s", PagePlaceholder)
	}
	if c.Source.FirstPage < 0 {
		return fmt.Errorf("source.first_page must be >= 0")
	}
	if c.Source.LastPage < c.Source.FirstPage {
		return fmt.Errorf("source.last_page must be >= source.first_page")
	}
	if c.Browser.Engine != "rod" && c.Browser.Engine != "static" {
		return fmt.Errorf("browser.engine must be 'rod' or 'static'")
	}
	if c.Browser.PageTimeoutS <= 0 {
		return fmt.Errorf("browser.page_timeout_s must be > 0")
	}
	if c.Browser.SettleDelayS < 0 {
		return fmt.Errorf("browser.settle_delay_s must be >= 0")
	}
	if c.Browser.PresenceTimeoutS <= 0 {
		return fmt.Errorf("browser.presence_timeout_s must be > 0")
	}
	if len(c.Selectors.Items) == 0 {
		return fmt.Errorf("selectors.items is required")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.Search.Provider != "duckduckgo" {
		return fmt.Errorf("search.provider must be 'duckduckgo'")
	}
	if c.Search.Endpoint == "" {
		return fmt.Errorf("search.endpoint is required")
	}
	if c.Search.RPM <= 0 {
		return fmt.Errorf("search.rpm must be > 0")
	}
	if c.Search.Burst <= 0 {
		return fmt.Errorf("search.burst must be > 0")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Storage.TitlesSheet == "" || c.Storage.LinksSheet == "" {
		return fmt.Errorf("storage.titles_sheet and storage.links_sheet are required")
	}
	if c.Storage.TitlesSheet == c.Storage.LinksSheet {
		return fmt.Errorf("storage.titles_sheet and storage.links_sheet must differ")
	}
	if c.Storage.EnrichMode != "full" && c.Storage.EnrichMode != "pending" {
		return fmt.Errorf("storage.enrich_mode must be 'full' or 'pending'")
	}
	if c.Storage.MirrorDSN != "" && c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0 when mirror_dsn is set")
	}
	return nil
}

// PageURL подставляет номер страницы в шаблон
func (c *Config) PageURL(page int) string {
	return strings.ReplaceAll(c.Source.URLTemplate, PagePlaceholder, fmt.Sprint(page))
}

// Getters
func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetPageTimeout() time.Duration {
	return time.Duration(c.Browser.PageTimeoutS) * time.Second
}

func (c *Config) GetSettleDelay() time.Duration {
	return time.Duration(c.Browser.SettleDelayS) * time.Second
}

func (c *Config) GetPresenceTimeout() time.Duration {
	return time.Duration(c.Browser.PresenceTimeoutS) * time.Second
}

func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		SettleDelay:     c.GetSettleDelay(),
		PresenceTimeout: c.GetPresenceTimeout(),
	}
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}
