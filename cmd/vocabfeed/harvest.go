package main

import (
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marine-term-translations/vocabfeed/pkg/harvest"
	"github.com/marine-term-translations/vocabfeed/pkg/sparql"
)

func harvestCmd() *cobra.Command {
	var (
		flagEndpoint  string
		flagBatchSize int
		flagSourceID  int64
	)

	cmd := &cobra.Command{
		Use:   "harvest <collection-uri>",
		Short: "Harvest a SKOS collection from the query endpoint into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionURI := args[0]
			logger := setupLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if flagEndpoint != "" {
				cfg.Endpoint = flagEndpoint
			}
			if flagBatchSize > 0 {
				cfg.BatchSize = flagBatchSize
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			conn, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=on")
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer conn.Close()

			client := sparql.NewClient(cfg.Endpoint, logger)
			client.Retry = sparql.RetryConfig{
				MaxAttempts: cfg.Retry.MaxAttempts,
				BaseDelay:   cfg.Retry.BaseDelay(),
			}

			h := harvest.NewHarvester(conn, client, logger)
			h.BatchSize = cfg.BatchSize
			h.SourceID = flagSourceID
			h.ExpectedHost = cfg.ExpectedHost

			if _, err := h.Run(ctx, collectionURI); err != nil {
				return fmt.Errorf("harvest failed: %w", err)
			}
			logger.Info("harvest completed", "db", cfg.DBPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "SPARQL endpoint (overrides config)")
	cmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "fetch page size (overrides config)")
	cmd.Flags().Int64Var(&flagSourceID, "source-id", 0, "source id to stamp on newly created terms")
	return cmd
}
