package domain

import (
	"github.com/kokorev/ghcndaily/internal/fixedwidth"
)

// InventorySchema describes one line of ghcnd-inventory.txt.
var InventorySchema = fixedwidth.MustNewSchema(
	fixedwidth.Field{Name: "country", Width: 2, Kind: fixedwidth.Text},
	fixedwidth.Field{Name: "network", Width: 1, Kind: fixedwidth.Text},
	fixedwidth.Field{Name: "id", Width: 8, Kind: fixedwidth.Text},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "lat", Width: 8, Kind: fixedwidth.Float},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "lon", Width: 9, Kind: fixedwidth.Float},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "element", Width: 4, Kind: fixedwidth.Text},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "first_year", Width: 4, Kind: fixedwidth.Int},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "last_year", Width: 4, Kind: fixedwidth.Int},
)

// MetaSchema describes one line of ghcnd-stations.txt.
var MetaSchema = fixedwidth.MustNewSchema(
	fixedwidth.Field{Name: "country", Width: 2, Kind: fixedwidth.Text},
	fixedwidth.Field{Name: "network", Width: 1, Kind: fixedwidth.Text},
	fixedwidth.Field{Name: "id", Width: 8, Kind: fixedwidth.Text},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "lat", Width: 8, Kind: fixedwidth.Float},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "lon", Width: 9, Kind: fixedwidth.Float},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "elevation", Width: 6, Kind: fixedwidth.Float},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "state", Width: 2, Kind: fixedwidth.Text},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "name", Width: 30, Kind: fixedwidth.Text},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "gsn_flag", Width: 3, Kind: fixedwidth.Text},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "hcn_crn_flag", Width: 3, Kind: fixedwidth.Text},
	fixedwidth.Gap(1),
	fixedwidth.Field{Name: "wmo_id", Width: 5, Kind: fixedwidth.Text},
)

// StationRecord is one inventory line: a station's period of record for a
// single element.
type StationRecord struct {
	Country   string  `json:"country"`
	Network   string  `json:"network"`
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Element   string  `json:"element"`
	FirstYear int     `json:"first_year"`
	LastYear  int     `json:"last_year"`
}

// Key is the 11-character station identifier used by the daily files.
func (r StationRecord) Key() string { return r.Country + r.Network + r.ID }

// CountryCode returns the two-letter FIPS country code.
func (r StationRecord) CountryCode() string { return r.Country }

// Coordinates returns the station latitude and longitude in decimal degrees.
func (r StationRecord) Coordinates() (lat, lon float64) { return r.Lat, r.Lon }

// StationMetaRecord is one line of the station list.
type StationMetaRecord struct {
	Country    string  `json:"country"`
	Network    string  `json:"network"`
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Elevation  float64 `json:"elevation"`
	State      string  `json:"state"`
	Name       string  `json:"name"`
	GSNFlag    string  `json:"gsn_flag"`
	HCNCRNFlag string  `json:"hcn_crn_flag"`
	WMOID      string  `json:"wmo_id"`
}

// Key is the 11-character station identifier.
func (r StationMetaRecord) Key() string { return r.Country + r.Network + r.ID }

// CountryCode returns the two-letter FIPS country code.
func (r StationMetaRecord) CountryCode() string { return r.Country }

// Coordinates returns the station latitude and longitude in decimal degrees.
func (r StationMetaRecord) Coordinates() (lat, lon float64) { return r.Lat, r.Lon }

func parseStationRecord(rec fixedwidth.Record) (StationRecord, error) {
	lat, err := rec.Float("lat")
	if err != nil {
		return StationRecord{}, err
	}
	lon, err := rec.Float("lon")
	if err != nil {
		return StationRecord{}, err
	}
	first, err := rec.Int("first_year")
	if err != nil {
		return StationRecord{}, err
	}
	last, err := rec.Int("last_year")
	if err != nil {
		return StationRecord{}, err
	}
	return StationRecord{
		Country:   rec.Text("country"),
		Network:   rec.Text("network"),
		ID:        rec.Text("id"),
		Lat:       lat,
		Lon:       lon,
		Element:   rec.Text("element"),
		FirstYear: first,
		LastYear:  last,
	}, nil
}

func parseStationMetaRecord(rec fixedwidth.Record) (StationMetaRecord, error) {
	lat, err := rec.Float("lat")
	if err != nil {
		return StationMetaRecord{}, err
	}
	lon, err := rec.Float("lon")
	if err != nil {
		return StationMetaRecord{}, err
	}
	elev, err := rec.Float("elevation")
	if err != nil {
		return StationMetaRecord{}, err
	}
	return StationMetaRecord{
		Country:    rec.Text("country"),
		Network:    rec.Text("network"),
		ID:         rec.Text("id"),
		Lat:        lat,
		Lon:        lon,
		Elevation:  elev,
		State:      rec.Text("state"),
		Name:       rec.Text("name"),
		GSNFlag:    rec.Text("gsn_flag"),
		HCNCRNFlag: rec.Text("hcn_crn_flag"),
		WMOID:      rec.Text("wmo_id"),
	}, nil
}
