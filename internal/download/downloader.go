// Package download copies GHCN-Daily files from a remote base location
// into a local directory, one whole file per request.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kokorev/ghcndaily/internal/domain"
)

// Fetcher retrieves a remote file. Implementations return a
// *domain.TransferError when the transfer fails.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Downloader stores remote files under local paths. It issues one fetch
// per file and never retries; callers may run downloads for different
// stations concurrently.
type Downloader struct {
	fetcher Fetcher
	baseURL string
	logger  *slog.Logger
}

// New creates a Downloader for the given base location.
func New(fetcher Fetcher, baseURL string, logger *slog.Logger) *Downloader {
	return &Downloader{fetcher: fetcher, baseURL: baseURL, logger: logger}
}

// StationPath is where a station's daily file lives inside dir.
func StationPath(dir, stationID string) string {
	return filepath.Join(dir, domain.StationFile(stationID))
}

// FetchAndStore downloads all/{id}.dly for each station into dir/{id}.dly,
// in order. The first failure stops the run and is returned; files already
// written stay in place.
func (d *Downloader) FetchAndStore(ctx context.Context, stationIDs []string, dir string) error {
	for _, id := range stationIDs {
		if err := domain.ValidateStationID(id); err != nil {
			return err
		}
		if err := d.store(ctx, domain.StationURL(d.baseURL, id), StationPath(dir, id)); err != nil {
			return fmt.Errorf("station %s: %w", id, err)
		}
		d.logger.Info("station downloaded", "station_id", id, "dir", dir)
	}
	return nil
}

// EnsureStation returns the local path of a station's daily file, fetching
// it first when it is not already in dir.
func (d *Downloader) EnsureStation(ctx context.Context, stationID, dir string) (string, error) {
	if err := domain.ValidateStationID(stationID); err != nil {
		return "", err
	}
	path := StationPath(dir, stationID)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err := d.store(ctx, domain.StationURL(d.baseURL, stationID), path); err != nil {
		return "", fmt.Errorf("station %s: %w", stationID, err)
	}
	d.logger.Info("station downloaded", "station_id", stationID, "dir", dir)
	return path, nil
}

// FetchInventory downloads ghcnd-inventory.txt to path.
func (d *Downloader) FetchInventory(ctx context.Context, path string) error {
	return d.store(ctx, domain.InventoryURL(d.baseURL), path)
}

// FetchStations downloads ghcnd-stations.txt to path.
func (d *Downloader) FetchStations(ctx context.Context, path string) error {
	return d.store(ctx, domain.StationsURL(d.baseURL), path)
}

// store writes the body of url to a temporary file next to path and
// renames it into place, so path is either absent or complete.
func (d *Downloader) store(ctx context.Context, url, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	body, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	n, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		return &domain.TransferError{URL: url, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}

	d.logger.Debug("file stored", "url", url, "path", path, "bytes", n)
	return nil
}
