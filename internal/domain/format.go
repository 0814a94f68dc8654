package domain

import (
	"fmt"
	"strconv"

	"github.com/kokorev/ghcndaily/internal/fixedwidth"
)

// FormatStationRecord renders r as one inventory line.
func FormatStationRecord(r StationRecord) (string, error) {
	return fixedwidth.Encode(InventorySchema, fixedwidth.NewRecord(InventorySchema, map[string]string{
		"country":    pad(r.Country, 2),
		"network":    pad(r.Network, 1),
		"id":         pad(r.ID, 8),
		"lat":        fmt.Sprintf("%.4f", r.Lat),
		"lon":        fmt.Sprintf("%.4f", r.Lon),
		"element":    pad(r.Element, 4),
		"first_year": strconv.Itoa(r.FirstYear),
		"last_year":  strconv.Itoa(r.LastYear),
	}))
}

// FormatStationMetaRecord renders r as one station list line.
func FormatStationMetaRecord(r StationMetaRecord) (string, error) {
	return fixedwidth.Encode(MetaSchema, fixedwidth.NewRecord(MetaSchema, map[string]string{
		"country":      pad(r.Country, 2),
		"network":      pad(r.Network, 1),
		"id":           pad(r.ID, 8),
		"lat":          fmt.Sprintf("%.4f", r.Lat),
		"lon":          fmt.Sprintf("%.4f", r.Lon),
		"elevation":    fmt.Sprintf("%.1f", r.Elevation),
		"state":        pad(r.State, 2),
		"name":         pad(r.Name, 30),
		"gsn_flag":     pad(r.GSNFlag, 3),
		"hcn_crn_flag": pad(r.HCNCRNFlag, 3),
		"wmo_id":       pad(r.WMOID, 5),
	}))
}

// FormatMonthlyRow renders row as one .dly line. Day slots past the end of
// the month should hold MissingValue.
func FormatMonthlyRow(row MonthlyRow) (string, error) {
	values := map[string]string{
		"id":      pad(row.StationID, 11),
		"year":    fmt.Sprintf("%04d", row.Year),
		"month":   fmt.Sprintf("%02d", row.Month),
		"element": pad(row.Element, 4),
	}
	for i, slot := range row.Days {
		day := i + 1
		values[valueField(day)] = strconv.Itoa(slot.Value)
		values[fmt.Sprintf("mflag_%d", day)] = pad(slot.MFlag, 1)
		values[fmt.Sprintf("qflag_%d", day)] = pad(slot.QFlag, 1)
		values[fmt.Sprintf("sflag_%d", day)] = pad(slot.SFlag, 1)
	}
	return fixedwidth.Encode(DailySchema, fixedwidth.NewRecord(DailySchema, values))
}

// pad left-aligns s in a column of width w. Longer values are left alone so
// the encoder reports them.
func pad(s string, w int) string {
	return fmt.Sprintf("%-*s", w, s)
}
