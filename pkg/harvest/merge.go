package harvest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
	"github.com/marine-term-translations/vocabfeed/pkg/sparql"
)

// Stats aggregates what one or more merge batches did. The counts are for
// operator visibility only; nothing downstream consumes them.
type Stats struct {
	TermsInserted     int
	TermsUpdated      int
	FieldsInserted    int
	OriginalsInserted int
	UnknownProperties int
	EmptyValues       int
}

// Add folds other into s.
func (s *Stats) Add(other Stats) {
	s.TermsInserted += other.TermsInserted
	s.TermsUpdated += other.TermsUpdated
	s.FieldsInserted += other.FieldsInserted
	s.OriginalsInserted += other.OriginalsInserted
	s.UnknownProperties += other.UnknownProperties
	s.EmptyValues += other.EmptyValues
}

// Merger folds fetched triples into the relational store.
type Merger struct {
	DB       *sql.DB
	SourceID int64
	Logger   *slog.Logger
}

// NewMerger creates a Merger. sourceID <= 0 leaves new terms unstamped.
func NewMerger(conn *sql.DB, sourceID int64, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{DB: conn, SourceID: sourceID, Logger: logger}
}

// MergeBatch commits one batch of triples inside a single transaction.
// Per concept: touch or create the term. Per (property, value, language):
// skip blank values, drop unknown properties, create the field row with the
// first value encountered as write-once original_value, and record the value
// as an `original` translation, ignoring duplicates. Curated rows are never
// read, modified, or deleted here.
func (m *Merger) MergeBatch(ctx context.Context, bindings []sparql.Binding) (Stats, error) {
	var stats Stats

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	termIDs := make(map[string]int64)

	for _, b := range bindings {
		if b.Concept == "" {
			continue
		}

		termID, seen := termIDs[b.Concept]
		if !seen {
			id, created, err := db.TouchOrCreateTerm(tx, b.Concept, m.SourceID)
			if err != nil {
				return stats, err
			}
			if created {
				stats.TermsInserted++
			} else {
				stats.TermsUpdated++
			}
			termIDs[b.Concept] = id
			termID = id
		}

		value := strings.TrimSpace(b.Value)
		if value == "" {
			// Blank content must never be offered for translation.
			stats.EmptyValues++
			continue
		}

		kind, ok := KindForProperty(b.Property)
		if !ok {
			stats.UnknownProperties++
			m.Logger.Debug("dropping unknown property",
				slog.String("concept", b.Concept),
				slog.String("property", b.Property))
			continue
		}

		fieldID, inserted, err := db.EnsureTermField(tx, termID, kind.URI(), kind.CURIE(), value)
		if err != nil {
			return stats, err
		}
		if inserted {
			stats.FieldsInserted++
		}

		added, err := db.InsertOriginalTranslation(tx, fieldID, b.Lang, value)
		if err != nil {
			return stats, err
		}
		if added {
			stats.OriginalsInserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit merge batch (%d rows): %w", len(bindings), err)
	}
	return stats, nil
}
