package feed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrPublishLocked means another publish run holds the per-source lock.
var ErrPublishLocked = errors.New("publish already in progress for source")

// AcquireLock takes the per-source publish lock, serializing publish runs so
// two of them cannot observe the same predecessor and race on the pointer
// file. The lock file sits beside the feed directory, not inside it, so
// locking a source that has no feed yet leaves its directory uncreated.
// The returned release function must be called when publication ends.
func AcquireLock(dir string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("create feed base directory: %w", err)
	}

	path := filepath.Clean(dir) + lockSuffix
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPublishLocked, path)
		}
		return nil, fmt.Errorf("acquire publish lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() { _ = os.Remove(path) }, nil
}
