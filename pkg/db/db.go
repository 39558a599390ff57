package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrSchemaMissing indicates the database exists but has not been provisioned
// with the translation store schema.
var ErrSchemaMissing = errors.New("database schema not initialized")

// RequiredTables are the tables the harvest and publish pipelines depend on.
var RequiredTables = []string{"terms", "term_fields", "translations", "sources"}

// InitDB creates the schema on the given connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(schemaSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// VerifySchema fails fast when any required table is absent. The schema is
// owned by the wider translation platform; this subsystem never creates it
// implicitly.
func VerifySchema(db *sql.DB) error {
	for _, table := range RequiredTables {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: missing table %q", ErrSchemaMissing, table)
		}
		if err != nil {
			return fmt.Errorf("verify schema: %w", err)
		}
	}
	return nil
}
