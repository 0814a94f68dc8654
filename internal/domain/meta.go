package domain

import (
	"fmt"
	"io"
	"os"

	"github.com/kokorev/ghcndaily/internal/fixedwidth"
)

// MetaStore holds the parsed station list, read-only after load.
type MetaStore struct {
	records []StationMetaRecord
}

// NewMetaStore wraps already-parsed records.
func NewMetaStore(records []StationMetaRecord) *MetaStore {
	return &MetaStore{records: records}
}

// LoadMeta parses a ghcnd-stations.txt file.
func LoadMeta(path string) (*MetaStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMeta(f, path)
}

// ParseMeta parses station list lines from r.
func ParseMeta(r io.Reader) (*MetaStore, error) {
	return parseMeta(r, "")
}

func parseMeta(r io.Reader, path string) (*MetaStore, error) {
	var records []StationMetaRecord
	err := scanLines(r, path, func(line string) error {
		rec, err := fixedwidth.Decode(MetaSchema, line)
		if err != nil {
			return err
		}
		mr, err := parseStationMetaRecord(rec)
		if err != nil {
			return err
		}
		records = append(records, mr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewMetaStore(records), nil
}

// Records returns every record in load order.
func (s *MetaStore) Records() []StationMetaRecord { return s.records }

// Len returns the number of loaded records.
func (s *MetaStore) Len() int { return len(s.records) }

// GetMeta returns the records whose station key is in keys, in store order.
// Keys that match nothing are ignored.
func (s *MetaStore) GetMeta(keys []string) []StationMetaRecord {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return apply(s.records, func(r StationMetaRecord) bool {
		_, ok := set[r.Key()]
		return ok
	})
}

// Filter applies the country and box dimensions of c. The station list has
// no element column, so a non-empty Elements dimension is rejected.
func (s *MetaStore) Filter(c Criteria) ([]StationMetaRecord, error) {
	if len(c.Elements) > 0 {
		return nil, fmt.Errorf("%w: elements on station metadata", ErrUnsupportedCriterion)
	}
	return apply(s.records, All(
		CountryIn[StationMetaRecord](c.Countries),
		InAnyBox[StationMetaRecord](c.Boxes),
	)), nil
}
