package feed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
)

// Status is the outcome of a publish run. A skip is an explicit status
// distinct from both success and failure.
type Status string

const (
	StatusPublished Status = "published"
	StatusSkipped   Status = "skipped"
)

// Result reports what a publish run did.
type Result struct {
	Status       Status
	FragmentPath string
	Translations int
}

// Publisher produces at most one new fragment per invocation, linking it to
// the predecessor recovered from the feed directory.
type Publisher struct {
	DB        *sql.DB
	BaseDir   string
	PrefixURI string
	Renderer  Renderer
	Resolver  *Resolver
	Logger    *slog.Logger

	// Now is the clock used as the upper selection bound; replaceable in tests.
	Now func() time.Time
}

// NewPublisher creates a Publisher with the turtle renderer and a default
// metadata resolver.
func NewPublisher(conn *sql.DB, baseDir, prefixURI string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		DB:        conn,
		BaseDir:   baseDir,
		PrefixURI: prefixURI,
		Renderer:  &TurtleRenderer{},
		Resolver:  NewResolver(logger),
		Logger:    logger,
		Now:       time.Now,
	}
}

// Publish recovers the feed state for the source, selects newly approved
// translations, and commits one fragment. With nothing new it reports a skip
// and mutates nothing.
func (p *Publisher) Publish(ctx context.Context, sourceID int64) (Result, error) {
	src, err := db.GetSource(p.DB, sourceID)
	if err != nil {
		return Result{}, err
	}

	dir := filepath.Join(p.BaseDir, strconv.FormatInt(sourceID, 10))
	release, err := AcquireLock(dir)
	if err != nil {
		return Result{}, err
	}
	defer release()

	state, err := DetectState(dir, p.Logger)
	if err != nil {
		return Result{}, err
	}
	p.Logger.Info("recovered feed state",
		slog.Int64("source", sourceID),
		slog.String("state", state.State.String()),
		slog.Int64("predecessor", state.Predecessor))

	var cursor *time.Time
	if state.State == StateCursorKnown {
		cursor = &state.Cursor
	}

	rows, err := db.ReviewTranslationsSince(p.DB, sourceID, cursor, p.Now())
	if err != nil {
		return Result{}, err
	}
	if cursor != nil {
		// The SQL bound is inclusive; rows sitting exactly on the cursor
		// were already published.
		kept := rows[:0]
		for _, r := range rows {
			if r.ModifiedAt.After(*cursor) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	if len(rows) == 0 {
		p.Logger.Info("no new approved translations, skipping publication",
			slog.Int64("source", sourceID))
		return Result{Status: StatusSkipped}, nil
	}

	records := Assemble(rows)
	timestamp := FragmentTime(records).Unix()
	if timestamp <= state.Predecessor {
		// A stale or lost pointer can replay rows an existing fragment
		// already covers. Committing would rewrite that fragment and relink
		// it to itself, so the run is a no-op instead.
		p.Logger.Info("selected rows already covered by an existing fragment, skipping",
			slog.Int64("source", sourceID),
			slog.Int64("fragment", timestamp),
			slog.Int64("predecessor", state.Predecessor))
		return Result{Status: StatusSkipped}, nil
	}

	fragment := &FragmentData{
		SourceID:    strconv.FormatInt(sourceID, 10),
		PrefixURI:   p.PrefixURI,
		Timestamp:   timestamp,
		Predecessor: state.Predecessor,
		Meta:        p.Resolver.Resolve(ctx, src),
		Records:     records,
	}

	content, err := p.Renderer.Render(fragment)
	if err != nil {
		return Result{}, fmt.Errorf("render fragment: %w", err)
	}

	committer := &Committer{Dir: dir, Logger: p.Logger}
	path, err := committer.Commit(fragment, content)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Status:       StatusPublished,
		FragmentPath: path,
		Translations: len(rows),
	}, nil
}
