package domain

import (
	"io"
	"os"

	"github.com/kokorev/ghcndaily/internal/fixedwidth"
)

// InventoryStore holds the parsed inventory, read-only after load.
type InventoryStore struct {
	records []StationRecord
}

// NewInventoryStore wraps already-parsed records.
func NewInventoryStore(records []StationRecord) *InventoryStore {
	return &InventoryStore{records: records}
}

// LoadInventory parses a ghcnd-inventory.txt file. Any malformed line aborts
// the load with a *FormatError; a missing file returns the os error.
func LoadInventory(path string) (*InventoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseInventory(f, path)
}

// ParseInventory parses inventory lines from r.
func ParseInventory(r io.Reader) (*InventoryStore, error) {
	return parseInventory(r, "")
}

func parseInventory(r io.Reader, path string) (*InventoryStore, error) {
	var records []StationRecord
	err := scanLines(r, path, func(line string) error {
		rec, err := fixedwidth.Decode(InventorySchema, line)
		if err != nil {
			return err
		}
		sr, err := parseStationRecord(rec)
		if err != nil {
			return err
		}
		records = append(records, sr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewInventoryStore(records), nil
}

// Records returns every record in load order.
func (s *InventoryStore) Records() []StationRecord { return s.records }

// Len returns the number of loaded records.
func (s *InventoryStore) Len() int { return len(s.records) }

// Filter returns the records matching c in load order. An empty Criteria
// returns the whole store.
func (s *InventoryStore) Filter(c Criteria) []StationRecord {
	return apply(s.records, All(
		CountryIn[StationRecord](c.Countries),
		ElementIn(c.Elements),
		InAnyBox[StationRecord](c.Boxes),
	))
}

// Keys returns the distinct station keys of records in first-seen order.
func Keys(records []StationRecord) []string {
	seen := make(map[string]struct{}, len(records))
	keys := make([]string, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
