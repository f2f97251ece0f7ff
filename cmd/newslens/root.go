package main

import (
	"os"

	"github.com/LJTian/NewsLens/internal/config"
	"github.com/LJTian/NewsLens/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "newslens",
	Short: "Search Google News from the terminal",
	Long: `newslens fetches a Google News search page and prints the headlines.

Modes:
  newslens search   Run one search (prompts when -q is omitted)
  newslens watch    Re-run a set of searches on a cron schedule`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		// --log 优先于 LOG_LEVEL
		level := cfg.LogLevel
		if cmd.Flags().Changed("log") {
			level = logLevel
		}
		l, err := logger.New(os.Stderr, level)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
}
