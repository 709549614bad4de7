package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"conference-scraper/internal/config"
	"conference-scraper/internal/observability"
)

var (
	// flags
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:           "confscrape",
	Short:         "Collect conference titles from a paginated listing and resolve their web links",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Observability.LogLevel = logLevel
		}
		logger = observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override observability.log_level")

	rootCmd.AddCommand(runCmd, scrapeCmd, enrichCmd, dumpCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
