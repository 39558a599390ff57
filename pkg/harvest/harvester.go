package harvest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
	"github.com/marine-term-translations/vocabfeed/pkg/sparql"
)

// DefaultBatchSize is how many triples each paginated fetch requests.
const DefaultBatchSize = 1000

// Harvester drives the harvest path: validate, count, then fetch and merge
// batch by batch. Each batch is committed before the next fetch is issued, so
// a crash mid-run leaves a valid, re-harvestable partial state.
type Harvester struct {
	DB           *sql.DB
	Client       *sparql.Client
	SourceID     int64
	BatchSize    int
	ExpectedHost string
	Logger       *slog.Logger
}

// NewHarvester creates a Harvester with the default batch size.
func NewHarvester(conn *sql.DB, client *sparql.Client, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{
		DB:        conn,
		Client:    client,
		BatchSize: DefaultBatchSize,
		Logger:    logger,
	}
}

// Run harvests the collection into the store and returns aggregate counts.
// Validation and the schema precondition are checked before any network I/O.
func (h *Harvester) Run(ctx context.Context, collectionURI string) (Stats, error) {
	var stats Stats

	if err := sparql.ValidateCollectionURI(collectionURI, h.ExpectedHost, h.Logger); err != nil {
		return stats, err
	}
	if err := db.VerifySchema(h.DB); err != nil {
		return stats, err
	}

	count, err := h.Client.MemberCount(ctx, collectionURI)
	if err != nil {
		return stats, fmt.Errorf("member count: %w", err)
	}
	h.Logger.Info("starting harvest",
		slog.String("collection", collectionURI),
		slog.Int("members", count))

	batchSize := h.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	merger := NewMerger(h.DB, h.SourceID, h.Logger)
	properties := PropertyURIs()

	for offset := 0; offset < count; offset += batchSize {
		h.Logger.Info("fetching batch",
			slog.Int("offset", offset),
			slog.Int("limit", batchSize))

		bindings, err := h.Client.FetchPage(ctx, collectionURI, properties, batchSize, offset)
		if err != nil {
			return stats, fmt.Errorf("fetch batch at offset %d: %w", offset, err)
		}

		batchStats, err := merger.MergeBatch(ctx, bindings)
		stats.Add(batchStats)
		if err != nil {
			return stats, fmt.Errorf("merge batch at offset %d: %w", offset, err)
		}
	}

	h.Logger.Info("harvest summary",
		slog.Int("terms_inserted", stats.TermsInserted),
		slog.Int("terms_updated", stats.TermsUpdated),
		slog.Int("fields_inserted", stats.FieldsInserted),
		slog.Int("originals_inserted", stats.OriginalsInserted),
		slog.Int("unknown_properties", stats.UnknownProperties),
		slog.Int("empty_values", stats.EmptyValues))

	return stats, nil
}
