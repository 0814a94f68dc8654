package domain

import (
	"fmt"
	"strings"
)

// Files published at the root of a GHCN-Daily base location.
const (
	InventoryFile = "ghcnd-inventory.txt"
	StationsFile  = "ghcnd-stations.txt"
)

// StationFile is the name of a station's daily file, both remotely under
// all/ and in a local data directory.
func StationFile(stationID string) string { return stationID + ".dly" }

// InventoryURL returns the inventory location under base.
func InventoryURL(base string) string { return withSlash(base) + InventoryFile }

// StationsURL returns the station list location under base.
func StationsURL(base string) string { return withSlash(base) + StationsFile }

// StationURL returns the daily file location of a station under base.
func StationURL(base, stationID string) string {
	return withSlash(base) + "all/" + StationFile(stationID)
}

// ValidateStationID rejects identifiers that are empty or contain anything
// other than ASCII letters and digits. IDs end up in URLs and file names.
func ValidateStationID(id string) error {
	if id == "" {
		return fmt.Errorf("station id is empty")
	}
	for _, c := range id {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return fmt.Errorf("station id %q: invalid character %q", id, c)
		}
	}
	return nil
}

func withSlash(base string) string {
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
