package db

import "time"

// Term is one vocabulary concept, identified by a stable URI.
type Term struct {
	ID        int64
	URI       string
	SourceID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TermField is one SKOS property instance on a term. OriginalValue is
// write-once: it records the first upstream value ever observed and is never
// overwritten by later harvests.
type TermField struct {
	ID            int64
	TermID        int64
	FieldURI      string
	FieldTerm     string
	OriginalValue string
}

// Translation statuses. Harvest only ever writes StatusOriginal; curated
// statuses are produced by the review workflow and are off-limits here.
const (
	StatusOriginal = "original"
	StatusReview   = "review"
)

// Translation is one value for a term field in one language.
type Translation struct {
	ID          int64
	TermFieldID int64
	Language    string
	Value       string
	Status      string
	Source      string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Source describes the provenance of a set of terms. For LDES-typed sources
// SourcePath points at the upstream feed whose declared property paths should
// be mirrored when republishing, and TranslationConfig holds the JSON
// configuration consumed by pkg/feed.
type Source struct {
	ID                int64
	SourceType        string
	SourcePath        string
	TranslationConfig string
}

// ReviewRow is one curated translation joined with its field and term,
// as selected for feed publication.
type ReviewRow struct {
	TranslationID int64
	Value         string
	Language      string
	ModifiedAt    time.Time
	TermFieldID   int64
	FieldURI      string
	FieldTerm     string
	OriginalValue string
	TermID        int64
	TermURI       string
}
