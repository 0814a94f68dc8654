package domain

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/kokorev/ghcndaily/internal/fixedwidth"
)

const (
	// MissingValue is the sentinel for "no measurement" in daily files.
	MissingValue = -9999

	// DaysPerRow is the number of day slots in every monthly row,
	// regardless of the month's real length.
	DaysPerRow = 31
)

// DailySchema describes one line of a .dly file: station, year, month,
// element, then 31 groups of value and three flags.
var DailySchema = fixedwidth.MustNewSchema(dailyFields()...)

func dailyFields() []fixedwidth.Field {
	fields := []fixedwidth.Field{
		{Name: "id", Width: 11, Kind: fixedwidth.Text},
		{Name: "year", Width: 4, Kind: fixedwidth.Int},
		{Name: "month", Width: 2, Kind: fixedwidth.Int},
		{Name: "element", Width: 4, Kind: fixedwidth.Text},
	}
	for day := 1; day <= DaysPerRow; day++ {
		fields = append(fields,
			fixedwidth.Field{Name: valueField(day), Width: 5, Kind: fixedwidth.Int},
			fixedwidth.Field{Name: fmt.Sprintf("mflag_%d", day), Width: 1, Kind: fixedwidth.Text},
			fixedwidth.Field{Name: fmt.Sprintf("qflag_%d", day), Width: 1, Kind: fixedwidth.Text},
			fixedwidth.Field{Name: fmt.Sprintf("sflag_%d", day), Width: 1, Kind: fixedwidth.Text},
		)
	}
	return fields
}

func valueField(day int) string { return fmt.Sprintf("value_%d", day) }

// DaySlot is one of the 31 value groups of a monthly row.
type DaySlot struct {
	Value int
	MFlag string
	QFlag string
	SFlag string
}

// Missing reports whether the slot holds the sentinel. Blank value columns
// decode to the sentinel.
func (d DaySlot) Missing() bool { return d.Value == MissingValue }

// MonthlyRow is one physical line of a .dly file.
type MonthlyRow struct {
	StationID string
	Year      int
	Month     int
	Element   string
	Days      [DaysPerRow]DaySlot
}

// Flags are the per-day measurement, quality and source flags, verbatim.
type Flags struct {
	Measurement string `json:"mflag"`
	Quality     string `json:"qflag"`
	Source      string `json:"sflag"`
}

// DailyObservation is one valid, non-missing day of one element.
type DailyObservation struct {
	StationID string    `json:"station_id"`
	Element   string    `json:"element"`
	Date      time.Time `json:"date"`
	Value     int       `json:"value"`
	Flags     *Flags    `json:"flags,omitempty"`
}

// ParseMonthlyRow decodes a single .dly line.
func ParseMonthlyRow(line string) (MonthlyRow, error) {
	rec, err := fixedwidth.Decode(DailySchema, line)
	if err != nil {
		return MonthlyRow{}, err
	}
	return monthlyRowFromRecord(rec)
}

func monthlyRowFromRecord(rec fixedwidth.Record) (MonthlyRow, error) {
	year, err := rec.Int("year")
	if err != nil {
		return MonthlyRow{}, err
	}
	month, err := rec.Int("month")
	if err != nil {
		return MonthlyRow{}, err
	}
	row := MonthlyRow{
		StationID: rec.Text("id"),
		Year:      year,
		Month:     month,
		Element:   rec.Text("element"),
	}
	for i := range row.Days {
		day := i + 1
		v, err := rec.Int(valueField(day))
		switch {
		case fixedwidth.IsBlank(err):
			v = MissingValue
		case err != nil:
			return MonthlyRow{}, err
		}
		row.Days[i] = DaySlot{
			Value: v,
			MFlag: rec.Text(fmt.Sprintf("mflag_%d", day)),
			QFlag: rec.Text(fmt.Sprintf("qflag_%d", day)),
			SFlag: rec.Text(fmt.Sprintf("sflag_%d", day)),
		}
	}
	return row, nil
}

// ReadDailyFile reads one element from a .dly file. A missing file returns
// the os error unchanged.
func ReadDailyFile(path, element string, includeFlags bool) ([]DailyObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readDaily(f, path, element, includeFlags)
}

// ReadDaily reads one element from .dly content. Every line must decode,
// whatever its element: a malformed row of another element still aborts
// the read. Rows of other elements are dropped before expansion. The result
// is sorted by date.
func ReadDaily(r io.Reader, element string, includeFlags bool) ([]DailyObservation, error) {
	return readDaily(r, "", element, includeFlags)
}

func readDaily(r io.Reader, path, element string, includeFlags bool) ([]DailyObservation, error) {
	var rows []MonthlyRow
	err := scanLines(r, path, func(line string) error {
		row, err := ParseMonthlyRow(line)
		if err != nil {
			return err
		}
		if row.Element == element {
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ExpandRows(rows, element, includeFlags), nil
}

// ReadMonthlyRows decodes every row of a .dly file, all elements included.
func ReadMonthlyRows(path string) ([]MonthlyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []MonthlyRow
	err = scanLines(f, path, func(line string) error {
		row, err := ParseMonthlyRow(line)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExpandRows widens monthly rows of element into one observation per valid
// calendar day. Rows of other elements are skipped. Days that do not exist
// in the month and days holding MissingValue are dropped. The result is
// stably sorted by date; rows repeating a month are not merged, so their
// days appear twice.
func ExpandRows(rows []MonthlyRow, element string, includeFlags bool) []DailyObservation {
	out := make([]DailyObservation, 0)
	for _, row := range rows {
		if row.Element != element {
			continue
		}
		out = appendRow(out, row, includeFlags)
	}
	slices.SortStableFunc(out, func(a, b DailyObservation) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

func appendRow(out []DailyObservation, row MonthlyRow, includeFlags bool) []DailyObservation {
	for i, slot := range row.Days {
		day := i + 1
		if !ValidDate(row.Year, row.Month, day) || slot.Missing() {
			continue
		}
		obs := DailyObservation{
			StationID: row.StationID,
			Element:   row.Element,
			Date:      time.Date(row.Year, time.Month(row.Month), day, 0, 0, 0, 0, time.UTC),
			Value:     slot.Value,
		}
		if includeFlags {
			obs.Flags = &Flags{Measurement: slot.MFlag, Quality: slot.QFlag, Source: slot.SFlag}
		}
		out = append(out, obs)
	}
	return out
}
