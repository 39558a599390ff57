package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
)

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the translation store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			conn, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=on")
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer conn.Close()

			if err := db.InitDB(conn); err != nil {
				return fmt.Errorf("initialize schema: %w", err)
			}
			logger.Info("database initialized", "db", cfg.DBPath)
			return nil
		},
	}
}
