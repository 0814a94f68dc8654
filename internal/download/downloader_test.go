package download_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kokorev/ghcndaily/internal/domain"
	"github.com/kokorev/ghcndaily/internal/download"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://example.test/ghcn/daily/"

// --- mocks ---

type fakeFetcher struct {
	files map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	f.calls = append(f.calls, url)
	body, ok := f.files[url]
	if !ok {
		return nil, &domain.TransferError{URL: url, StatusCode: 404, Err: errors.New("not found")}
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

// failingBody delivers some bytes and then breaks, like a dropped connection.
type failingBody struct{ sent bool }

func (b *failingBody) Read(p []byte) (int, error) {
	if b.sent {
		return 0, errors.New("connection reset")
	}
	b.sent = true
	return copy(p, "USC00011084"), nil
}

func (b *failingBody) Close() error { return nil }

type brokenFetcher struct{}

func (brokenFetcher) Fetch(context.Context, string) (io.ReadCloser, error) {
	return &failingBody{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// --- tests ---

func TestFetchAndStore_WritesOneFilePerStation(t *testing.T) {
	f := &fakeFetcher{files: map[string]string{
		base + "all/USC00011084.dly": "alabama\n",
		base + "all/USW00094728.dly": "new york\n",
	}}
	d := download.New(f, base, discardLogger())
	dir := t.TempDir()

	err := d.FetchAndStore(context.Background(), []string{"USC00011084", "USW00094728"}, dir)
	require.NoError(t, err)

	assert.Equal(t, "alabama\n", readFile(t, filepath.Join(dir, "USC00011084.dly")))
	assert.Equal(t, "new york\n", readFile(t, filepath.Join(dir, "USW00094728.dly")))
	assert.Equal(t, []string{base + "all/USC00011084.dly", base + "all/USW00094728.dly"}, f.calls)
}

func TestFetchAndStore_EmptyListDoesNothing(t *testing.T) {
	f := &fakeFetcher{}
	d := download.New(f, base, discardLogger())
	dir := t.TempDir()

	require.NoError(t, d.FetchAndStore(context.Background(), nil, dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.calls)
}

func TestFetchAndStore_AbortsOnFirstFailure(t *testing.T) {
	f := &fakeFetcher{files: map[string]string{
		base + "all/USC00011084.dly": "alabama\n",
		base + "all/GME00102380.dly": "germany\n",
	}}
	d := download.New(f, base, discardLogger())
	dir := t.TempDir()

	err := d.FetchAndStore(context.Background(), []string{"USC00011084", "XXX00000000", "GME00102380"}, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransfer)

	var te *domain.TransferError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 404, te.StatusCode)
	assert.Contains(t, te.URL, "XXX00000000.dly")

	// Completed files stay, nothing after the failure is attempted.
	assert.FileExists(t, filepath.Join(dir, "USC00011084.dly"))
	assert.NoFileExists(t, filepath.Join(dir, "XXX00000000.dly"))
	assert.NoFileExists(t, filepath.Join(dir, "GME00102380.dly"))
	assert.Len(t, f.calls, 2)
}

func TestFetchAndStore_BrokenBodyLeavesNoFile(t *testing.T) {
	d := download.New(brokenFetcher{}, base, discardLogger())
	dir := t.TempDir()

	err := d.FetchAndStore(context.Background(), []string{"USC00011084"}, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransfer)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial downloads must be cleaned up")
}

func TestFetchAndStore_RejectsUnsafeID(t *testing.T) {
	f := &fakeFetcher{}
	d := download.New(f, base, discardLogger())

	err := d.FetchAndStore(context.Background(), []string{"../etc/passwd"}, t.TempDir())
	require.Error(t, err)
	assert.Empty(t, f.calls)
}

func TestFetchAndStore_CreatesMissingDir(t *testing.T) {
	f := &fakeFetcher{files: map[string]string{base + "all/USC00011084.dly": "x\n"}}
	d := download.New(f, base, discardLogger())
	dir := filepath.Join(t.TempDir(), "nested", "daily")

	require.NoError(t, d.FetchAndStore(context.Background(), []string{"USC00011084"}, dir))
	assert.FileExists(t, filepath.Join(dir, "USC00011084.dly"))
}

func TestEnsureStation(t *testing.T) {
	f := &fakeFetcher{files: map[string]string{base + "all/USC00011084.dly": "fresh\n"}}
	d := download.New(f, base, discardLogger())
	dir := t.TempDir()

	t.Run("fetches when absent", func(t *testing.T) {
		path, err := d.EnsureStation(context.Background(), "USC00011084", dir)
		require.NoError(t, err)
		assert.Equal(t, download.StationPath(dir, "USC00011084"), path)
		assert.Equal(t, "fresh\n", readFile(t, path))
		assert.Len(t, f.calls, 1)
	})

	t.Run("reuses existing file", func(t *testing.T) {
		path := download.StationPath(dir, "USC00011084")
		require.NoError(t, os.WriteFile(path, []byte("cached\n"), 0o644))

		got, err := d.EnsureStation(context.Background(), "USC00011084", dir)
		require.NoError(t, err)
		assert.Equal(t, path, got)
		assert.Equal(t, "cached\n", readFile(t, path))
		assert.Len(t, f.calls, 1)
	})

	t.Run("transfer failure", func(t *testing.T) {
		_, err := d.EnsureStation(context.Background(), "ZZZ00000001", dir)
		assert.ErrorIs(t, err, domain.ErrTransfer)
		_, statErr := os.Stat(download.StationPath(dir, "ZZZ00000001"))
		assert.ErrorIs(t, statErr, fs.ErrNotExist)
	})
}

func TestFetchInventoryAndStations(t *testing.T) {
	f := &fakeFetcher{files: map[string]string{
		base + domain.InventoryFile: "inventory\n",
		base + domain.StationsFile:  "stations\n",
	}}
	d := download.New(f, strings.TrimSuffix(base, "/"), discardLogger())
	dir := t.TempDir()

	inv := filepath.Join(dir, domain.InventoryFile)
	st := filepath.Join(dir, domain.StationsFile)
	require.NoError(t, d.FetchInventory(context.Background(), inv))
	require.NoError(t, d.FetchStations(context.Background(), st))

	assert.Equal(t, "inventory\n", readFile(t, inv))
	assert.Equal(t, "stations\n", readFile(t, st))
}
