package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Committer writes fragments and maintains the latest pointer and chain
// index for one feed directory.
type Committer struct {
	Dir    string
	Logger *slog.Logger
}

// Commit writes the new immutable fragment under its timestamp-derived name,
// then copies its content over the pointer file, then records the chain
// entry. A crash between the first two steps leaves the pointer stale but
// the chain fully recoverable via the filename scan.
func (c *Committer) Commit(f *FragmentData, content []byte) (string, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create feed directory: %w", err)
	}

	// Fragments are immutable once written; exclusive create enforces that
	// even if a caller slips past the predecessor guard.
	fragPath := filepath.Join(c.Dir, fmt.Sprintf("%d%s", f.Timestamp, FragmentExt))
	frag, err := os.OpenFile(fragPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("fragment %s already exists", fragPath)
		}
		return "", fmt.Errorf("write fragment: %w", err)
	}
	if _, err := frag.Write(content); err != nil {
		frag.Close()
		return "", fmt.Errorf("write fragment: %w", err)
	}
	if err := frag.Close(); err != nil {
		return "", fmt.Errorf("write fragment: %w", err)
	}

	pointerPath := filepath.Join(c.Dir, PointerFile)
	if err := os.WriteFile(pointerPath, content, 0o644); err != nil {
		return "", fmt.Errorf("update pointer: %w", err)
	}

	if err := appendIndexEntry(c.Dir, IndexEntry{
		ID:          f.Timestamp,
		Predecessor: f.Predecessor,
		Time:        indexTime(f.Timestamp),
	}); err != nil {
		// The index is an optimization over the filename scan; failing to
		// update it is not a failed commit.
		logger.Warn("failed to update chain index", slog.String("error", err.Error()))
	}

	logger.Info("committed fragment",
		slog.String("fragment", fragPath),
		slog.Int64("predecessor", f.Predecessor))
	return fragPath, nil
}
