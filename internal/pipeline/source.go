package pipeline

import (
	"context"

	"github.com/kokorev/ghcndaily/internal/domain"
)

// StationFetcher makes a station's daily file available locally.
type StationFetcher interface {
	EnsureStation(ctx context.Context, stationID, dir string) (string, error)
}

// StationFileSource implements ObservationSource over the local data
// directory, downloading station files that are not there yet.
type StationFileSource struct {
	fetcher      StationFetcher
	dir          string
	element      string
	includeFlags bool
}

// NewStationFileSource creates a source that expands element for every
// station, keeping the per-day flags when includeFlags is set.
func NewStationFileSource(fetcher StationFetcher, dir, element string, includeFlags bool) *StationFileSource {
	return &StationFileSource{
		fetcher:      fetcher,
		dir:          dir,
		element:      element,
		includeFlags: includeFlags,
	}
}

func (s *StationFileSource) Observations(ctx context.Context, stationID string) ([]domain.DailyObservation, error) {
	path, err := s.fetcher.EnsureStation(ctx, stationID, s.dir)
	if err != nil {
		return nil, err
	}
	return domain.ReadDailyFile(path, s.element, s.includeFlags)
}
