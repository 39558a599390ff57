package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// IndexEntry is one fragment in the persisted chain index. Predecessor 0
// means the fragment is the first in the chain.
type IndexEntry struct {
	ID          int64  `json:"id"`
	Predecessor int64  `json:"predecessor,omitempty"`
	Time        string `json:"time"`
}

// ReadIndex loads the chain index for a feed directory. A missing index is
// not an error; the filename scan covers that case.
func ReadIndex(dir string) ([]IndexEntry, error) {
	content, err := os.ReadFile(filepath.Join(dir, indexFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chain index: %w", err)
	}
	var entries []IndexEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("parse chain index: %w", err)
	}
	return entries, nil
}

// appendIndexEntry records a committed fragment in the chain index.
func appendIndexEntry(dir string, e IndexEntry) error {
	entries, err := ReadIndex(dir)
	if err != nil {
		// A corrupt index is rebuilt from this entry on; the filename scan
		// remains the recovery authority for the chain itself.
		entries = nil
	}
	entries = append(entries, e)
	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, indexFile), content, 0o644); err != nil {
		return fmt.Errorf("write chain index: %w", err)
	}
	return nil
}

// LatestFragment resolves the newest existing fragment timestamp. The chain
// index is consulted and cross-checked against the filename scan; on any
// disagreement the scan wins, so a stale or corrupt index self-heals.
func LatestFragment(dir string, logger *slog.Logger) (int64, error) {
	if logger == nil {
		logger = slog.Default()
	}

	scanMax, err := scanFragments(dir)
	if err != nil {
		return 0, err
	}

	entries, err := ReadIndex(dir)
	if err != nil {
		logger.Warn("chain index unreadable, falling back to filename scan",
			slog.String("dir", dir), slog.String("error", err.Error()))
		return scanMax, nil
	}

	var idxMax int64
	for _, e := range entries {
		if e.ID > idxMax {
			idxMax = e.ID
		}
	}
	if len(entries) > 0 && idxMax != scanMax {
		logger.Warn("chain index disagrees with filename scan, trusting scan",
			slog.Int64("index_max", idxMax), slog.Int64("scan_max", scanMax))
	}
	return scanMax, nil
}

func indexTime(id int64) string {
	return time.Unix(id, 0).UTC().Format(time.RFC3339)
}
