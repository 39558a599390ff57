// Package main provides the vocabfeed binary: it harvests SKOS vocabulary
// collections into the local translation store and republishes approved
// translations as a chained fragment feed.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/marine-term-translations/vocabfeed/pkg/config"

	_ "github.com/mattn/go-sqlite3"
)

const appName = "vocabfeed"

var (
	flagConfig   string
	flagLogLevel string
	flagDB       string
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Harvest SKOS vocabularies and publish approved translations as a fragment feed",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: "+config.DefaultFile+" if present)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the SQLite translation store (overrides config)")

	cmd.AddCommand(harvestCmd())
	cmd.AddCommand(publishCmd())
	cmd.AddCommand(initDBCmd())
	return cmd
}

// loadConfig resolves the effective configuration from file and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	return cfg, nil
}

func setupLogger() *slog.Logger {
	var level slog.Level
	switch flagLogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
