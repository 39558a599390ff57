// Package feed republishes curated translations as an append-only,
// temporally-chained sequence of immutable fragment files, one directory per
// source.
package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// FragmentExt is the content-type extension of fragment files.
	FragmentExt = ".ttl"

	// PointerFile holds a byte copy of the most recently written fragment.
	PointerFile = "latest" + FragmentExt

	indexFile  = "index.json"
	lockSuffix = ".lock"
)

// State describes what was recovered from a persisted feed directory.
type State int

const (
	// StateNoFeed means no feed exists yet; the next fragment is the first.
	StateNoFeed State = iota

	// StateCursorKnown means the pointer file yielded a resume cursor.
	StateCursorKnown

	// StateCursorUnknown means fragments exist but no cursor could be
	// recovered; all eligible rows are selected as if fresh, while the
	// chain predecessor still applies.
	StateCursorUnknown
)

func (s State) String() string {
	switch s {
	case StateNoFeed:
		return "no-feed"
	case StateCursorKnown:
		return "cursor-known"
	case StateCursorUnknown:
		return "cursor-unknown"
	default:
		return "invalid"
	}
}

// FeedState is the recovered publication state. Predecessor is the timestamp
// of the newest existing fragment, 0 when there is none.
type FeedState struct {
	State       State
	Cursor      time.Time
	Predecessor int64
}

// modifiedLiteral matches the embedded modification timestamps of a rendered
// fragment, in either compact or full-IRI predicate form.
var modifiedLiteral = regexp.MustCompile(
	`(?:dcterms:modified|<http://purl\.org/dc/terms/modified>)\s+"([^"]+)"`)

// DetectState inspects the feed directory for a source and recovers the
// resume cursor and chain predecessor. The predecessor comes from a filename
// scan that does not depend on the pointer file, so a stale or missing
// pointer degrades the cursor but never breaks the chain.
func DetectState(dir string, logger *slog.Logger) (FeedState, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return FeedState{State: StateNoFeed}, nil
	} else if err != nil {
		return FeedState{}, fmt.Errorf("stat feed directory: %w", err)
	}

	pred, err := LatestFragment(dir, logger)
	if err != nil {
		return FeedState{}, err
	}

	pointerPath := filepath.Join(dir, PointerFile)
	if _, err := os.Stat(pointerPath); err == nil {
		cursor, ok := maxModifiedInFragment(pointerPath, logger)
		if ok {
			return FeedState{State: StateCursorKnown, Cursor: cursor, Predecessor: pred}, nil
		}
		logger.Warn("pointer file yielded no modification timestamps, cursor unknown",
			slog.String("path", pointerPath))
		return FeedState{State: StateCursorUnknown, Predecessor: pred}, nil
	}

	if pred > 0 {
		return FeedState{State: StateCursorUnknown, Predecessor: pred}, nil
	}
	return FeedState{State: StateNoFeed}, nil
}

// maxModifiedInFragment parses a fragment file and returns the maximum
// embedded modification timestamp.
func maxModifiedInFragment(path string, logger *slog.Logger) (time.Time, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read fragment", slog.String("path", path), slog.String("error", err.Error()))
		return time.Time{}, false
	}

	var max time.Time
	var found bool
	for _, m := range modifiedLiteral.FindAllStringSubmatch(string(content), -1) {
		t, err := parseXSDDateTime(m[1])
		if err != nil {
			continue
		}
		if !found || t.After(max) {
			max = t
			found = true
		}
	}
	return max, found
}

func parseXSDDateTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized xsd:dateTime %q", s)
}

// scanFragments returns the maximum fragment timestamp found by parsing the
// filenames in dir, excluding the pointer file. 0 means no fragments.
func scanFragments(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("scan feed directory: %w", err)
	}

	var max int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == PointerFile || !strings.HasSuffix(name, FragmentExt) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, FragmentExt), 10, 64)
		if err != nil {
			continue
		}
		if id > max {
			max = id
		}
	}
	return max, nil
}
