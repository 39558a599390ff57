package main

import (
	"database/sql"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
	"github.com/marine-term-translations/vocabfeed/pkg/feed"
)

func publishCmd() *cobra.Command {
	var (
		flagFeedDir   string
		flagPrefixURI string
	)

	cmd := &cobra.Command{
		Use:   "publish <source-id>",
		Short: "Publish newly approved translations for a source as a feed fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid source id %q", args[0])
			}
			logger := setupLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if flagFeedDir != "" {
				cfg.FeedDir = flagFeedDir
			}
			if flagPrefixURI != "" {
				cfg.PrefixURI = flagPrefixURI
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			conn, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=on")
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer conn.Close()

			if err := db.VerifySchema(conn); err != nil {
				return err
			}

			publisher := feed.NewPublisher(conn, cfg.FeedDir, cfg.PrefixURI, logger)
			result, err := publisher.Publish(ctx, sourceID)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			switch result.Status {
			case feed.StatusSkipped:
				logger.Info("publication skipped, nothing new to publish",
					"source", sourceID)
			default:
				logger.Info("publication complete",
					"source", sourceID,
					"fragment", result.FragmentPath,
					"translations", result.Translations)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFeedDir, "feed-dir", "", "base feed directory (overrides config)")
	cmd.Flags().StringVar(&flagPrefixURI, "prefix-uri", "", "publication base URI (overrides config)")
	return cmd
}
