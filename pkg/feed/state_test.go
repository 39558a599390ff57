package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFragmentFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDetectStateNoFeed(t *testing.T) {
	state, err := DetectState(filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, err)
	require.Equal(t, StateNoFeed, state.State)
	require.Zero(t, state.Predecessor)
}

func TestDetectStateEmptyDirectoryIsNoFeed(t *testing.T) {
	state, err := DetectState(t.TempDir(), nil)
	require.NoError(t, err)
	require.Equal(t, StateNoFeed, state.State)
}

func TestDetectStateCursorKnown(t *testing.T) {
	dir := t.TempDir()
	fragment := `<http://ex/1#1714557600>
    dcterms:modified "2024-05-01T10:00:00Z"^^xsd:dateTime .
<http://ex/2#1714557600>
    dcterms:modified "2024-05-01T12:00:00Z"^^xsd:dateTime .
`
	writeFragmentFile(t, dir, "1714557600.ttl", fragment)
	writeFragmentFile(t, dir, PointerFile, fragment)

	state, err := DetectState(dir, nil)
	require.NoError(t, err)
	require.Equal(t, StateCursorKnown, state.State)
	require.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), state.Cursor)
	require.Equal(t, int64(1714557600), state.Predecessor)
}

func TestDetectStateCursorUnknownWithoutPointer(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "100.ttl", "fragment content")
	writeFragmentFile(t, dir, "200.ttl", "fragment content")

	state, err := DetectState(dir, nil)
	require.NoError(t, err)
	require.Equal(t, StateCursorUnknown, state.State)
	require.Equal(t, int64(200), state.Predecessor)
}

func TestDetectStateCursorUnknownWithUnparsablePointer(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "100.ttl", "no timestamps here")
	writeFragmentFile(t, dir, PointerFile, "no timestamps here")

	state, err := DetectState(dir, nil)
	require.NoError(t, err)
	require.Equal(t, StateCursorUnknown, state.State)
	require.Equal(t, int64(100), state.Predecessor)
}

func TestDetectStateAcceptsFullIRIModifiedPredicate(t *testing.T) {
	dir := t.TempDir()
	fragment := `<http://ex/1#100>
    <http://purl.org/dc/terms/modified> "2024-05-01T10:00:00Z"^^xsd:dateTime .
`
	writeFragmentFile(t, dir, "100.ttl", fragment)
	writeFragmentFile(t, dir, PointerFile, fragment)

	state, err := DetectState(dir, nil)
	require.NoError(t, err)
	require.Equal(t, StateCursorKnown, state.State)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), state.Cursor)
}

func TestScanFragmentsIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "100.ttl", "x")
	writeFragmentFile(t, dir, "250.ttl", "x")
	writeFragmentFile(t, dir, PointerFile, "x")
	writeFragmentFile(t, dir, "notes.txt", "x")
	writeFragmentFile(t, dir, "abc.ttl", "x")

	max, err := scanFragments(dir)
	require.NoError(t, err)
	require.Equal(t, int64(250), max)
}

func TestLatestFragmentScanWinsOverStaleIndex(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "100.ttl", "x")
	writeFragmentFile(t, dir, "300.ttl", "x")
	// Index never learned about 300.
	require.NoError(t, appendIndexEntry(dir, IndexEntry{ID: 100, Time: indexTime(100)}))

	max, err := LatestFragment(dir, nil)
	require.NoError(t, err)
	require.Equal(t, int64(300), max)
}

func TestLatestFragmentSurvivesCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "100.ttl", "x")
	writeFragmentFile(t, dir, indexFile, "{not json")

	max, err := LatestFragment(dir, nil)
	require.NoError(t, err)
	require.Equal(t, int64(100), max)
}

func TestParseXSDDateTime(t *testing.T) {
	got, err := parseXSDDateTime("2024-05-01T10:00:00Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got)

	got, err = parseXSDDateTime("2024-05-01T10:00:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got)

	_, err = parseXSDDateTime("May 1st")
	require.Error(t, err)
}
