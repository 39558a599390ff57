package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// sqliteTimeLayout is what sqlite's datetime() normalizes values to (UTC).
const sqliteTimeLayout = "2006-01-02 15:04:05"

// ParseStoreTime parses a timestamp string as stored/normalized by sqlite.
func ParseStoreTime(s string) (time.Time, error) {
	layouts := []string{
		sqliteTimeLayout,
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339,
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// TouchOrCreateTerm refreshes updated_at on an existing term or inserts a new
// one. Returns the term id and whether a row was created. Terms are never
// deleted by this subsystem.
func TouchOrCreateTerm(x DBExecutor, uri string, sourceID int64) (int64, bool, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return 0, false, fmt.Errorf("term uri must be non-empty")
	}

	var id int64
	err := x.QueryRow(`SELECT id FROM terms WHERE uri = ?`, trimmed).Scan(&id)
	if err == nil {
		if _, err := x.Exec(`UPDATE terms SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
			return 0, false, fmt.Errorf("touch term: %w", err)
		}
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("lookup term: %w", err)
	}

	res, err := x.Exec(`INSERT INTO terms (uri, source_id) VALUES (?, ?)`, trimmed, nullableInt64(sourceID))
	if err != nil {
		return 0, false, fmt.Errorf("insert term: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// EnsureTermField inserts the field row for (termID, fieldURI) if absent.
// The first original_value ever observed wins; later harvests never overwrite
// it, which is what protects curation layered on top.
func EnsureTermField(x DBExecutor, termID int64, fieldURI, fieldTerm, originalValue string) (int64, bool, error) {
	res, err := x.Exec(
		`INSERT OR IGNORE INTO term_fields (term_id, field_uri, field_term, original_value)
		 VALUES (?, ?, ?, ?)`,
		termID, fieldURI, fieldTerm, originalValue,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert term field: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	var id int64
	err = x.QueryRow(
		`SELECT id FROM term_fields WHERE term_id = ? AND field_uri = ?`, termID, fieldURI,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("lookup term field: %w", err)
	}
	return id, n > 0, nil
}

// InsertOriginalTranslation records an as-harvested value, ignoring duplicates
// of the same (field, language, value, status) combination. Curated rows carry
// a different status and are never touched.
func InsertOriginalTranslation(x DBExecutor, termFieldID int64, language, value string) (bool, error) {
	res, err := x.Exec(
		`INSERT OR IGNORE INTO translations (term_field_id, language, value, status, source)
		 VALUES (?, ?, ?, ?, 'rdf-ingest')`,
		termFieldID, language, value, StatusOriginal,
	)
	if err != nil {
		return false, fmt.Errorf("insert translation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetSource loads a source row by id.
func GetSource(x DBExecutor, id int64) (Source, error) {
	var s Source
	err := x.QueryRow(
		`SELECT id, source_type, COALESCE(source_path, ''), COALESCE(translation_config, '')
		 FROM sources WHERE id = ?`, id,
	).Scan(&s.ID, &s.SourceType, &s.SourcePath, &s.TranslationConfig)
	if err != nil {
		return Source{}, fmt.Errorf("load source %d: %w", id, err)
	}
	return s, nil
}

// ReviewTranslationsSince selects curated rows eligible for publication for
// the given source, ordered ascending by effective modification time
// (modified_at falling back to created_at). A non-nil cursor bounds the SQL
// to the inclusive range [cursor, now]; the caller applies the strictly-greater
// filter on top so a row sitting exactly on the boundary is not republished.
func ReviewTranslationsSince(x DBExecutor, sourceID int64, cursor *time.Time, now time.Time) ([]ReviewRow, error) {
	query := `
		SELECT
			t.id,
			t.value,
			COALESCE(t.language, ''),
			datetime(COALESCE(t.modified_at, t.created_at)),
			tf.id,
			tf.field_uri,
			COALESCE(tf.field_term, ''),
			COALESCE(tf.original_value, ''),
			tm.id,
			tm.uri
		FROM translations t
		JOIN term_fields tf ON t.term_field_id = tf.id
		JOIN terms tm ON tf.term_id = tm.id
		WHERE tm.source_id = ?
		AND t.status = ?`
	args := []interface{}{sourceID, StatusReview}

	if cursor != nil {
		query += `
		AND datetime(COALESCE(t.modified_at, t.created_at)) >= datetime(?)
		AND datetime(COALESCE(t.modified_at, t.created_at)) <= datetime(?)`
		args = append(args,
			cursor.UTC().Format(sqliteTimeLayout),
			now.UTC().Format(sqliteTimeLayout),
		)
	}
	query += `
		ORDER BY datetime(COALESCE(t.modified_at, t.created_at)) ASC`

	rows, err := x.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("select review translations: %w", err)
	}
	defer rows.Close()

	var out []ReviewRow
	for rows.Next() {
		var r ReviewRow
		var modified string
		if err := rows.Scan(
			&r.TranslationID, &r.Value, &r.Language, &modified,
			&r.TermFieldID, &r.FieldURI, &r.FieldTerm, &r.OriginalValue,
			&r.TermID, &r.TermURI,
		); err != nil {
			return nil, err
		}
		r.ModifiedAt, err = ParseStoreTime(modified)
		if err != nil {
			return nil, fmt.Errorf("translation %d: %w", r.TranslationID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullableInt64 returns nil for non-positive values so the column stays NULL.
func nullableInt64(v int64) interface{} {
	if v <= 0 {
		return nil
	}
	return v
}
