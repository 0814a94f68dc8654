package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kokorev/ghcndaily/internal/fixedwidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStation = "USC00011084"

// dlyLine builds a 269-character .dly line. Days absent from values are
// written as blank value columns.
func dlyLine(id string, year, month int, element string, values map[int]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-11s%04d%02d%-4s", id, year, month, element)
	for day := 1; day <= DaysPerRow; day++ {
		if v, ok := values[day]; ok {
			fmt.Fprintf(&b, "%5d   ", v)
			continue
		}
		b.WriteString("        ")
	}
	return b.String()
}

func fullMonth(value int) map[int]int {
	m := make(map[int]int, DaysPerRow)
	for d := 1; d <= DaysPerRow; d++ {
		m[d] = value
	}
	return m
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailySchemaWidth(t *testing.T) {
	assert.Equal(t, 269, DailySchema.Width())
	assert.Len(t, dlyLine(testStation, 2020, 1, "TMAX", nil), 269)
}

func TestParseMonthlyRow(t *testing.T) {
	line := dlyLine(testStation, 2020, 2, "TMAX", map[int]int{1: 150, 2: MissingValue})
	row, err := ParseMonthlyRow(line)
	require.NoError(t, err)

	assert.Equal(t, testStation, row.StationID)
	assert.Equal(t, 2020, row.Year)
	assert.Equal(t, 2, row.Month)
	assert.Equal(t, "TMAX", row.Element)
	assert.Equal(t, 150, row.Days[0].Value)
	assert.True(t, row.Days[1].Missing())
	assert.True(t, row.Days[2].Missing(), "blank value decodes to the sentinel")
	assert.Equal(t, " ", row.Days[0].MFlag)
}

func TestParseMonthlyRow_Errors(t *testing.T) {
	t.Run("truncated", func(t *testing.T) {
		_, err := ParseMonthlyRow(dlyLine(testStation, 2020, 1, "TMAX", nil)[:100])
		var tle *fixedwidth.TruncatedLineError
		require.True(t, errors.As(err, &tle))
		assert.Equal(t, 269, tle.Want)
	})

	t.Run("non-numeric value", func(t *testing.T) {
		line := dlyLine(testStation, 2020, 1, "TMAX", nil)
		line = line[:21] + "  1x2" + line[26:]
		_, err := ParseMonthlyRow(line)
		var fe *fixedwidth.FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "value_1", fe.Field)
	})

	t.Run("non-numeric year", func(t *testing.T) {
		line := dlyLine(testStation, 2020, 1, "TMAX", nil)
		line = line[:11] + "20X0" + line[15:]
		_, err := ParseMonthlyRow(line)
		require.Error(t, err)
	})
}

func TestExpandRows_DropsImpossibleDates(t *testing.T) {
	for year := 1999; year <= 2004; year++ {
		for month := 1; month <= 12; month++ {
			row, err := ParseMonthlyRow(dlyLine(testStation, year, month, "TMAX", fullMonth(5)))
			require.NoError(t, err)

			obs := ExpandRows([]MonthlyRow{row}, "TMAX", false)
			require.Len(t, obs, DaysInMonth(year, month), "%d-%02d", year, month)
			for _, o := range obs {
				assert.Equal(t, time.Month(month), o.Date.Month())
				assert.Equal(t, year, o.Date.Year())
			}
		}
	}
}

func TestExpandRows_InvalidMonthYieldsNothing(t *testing.T) {
	row, err := ParseMonthlyRow(dlyLine(testStation, 2020, 13, "TMAX", fullMonth(5)))
	require.NoError(t, err)
	assert.Empty(t, ExpandRows([]MonthlyRow{row}, "TMAX", false))
}

func TestExpandRows_DropsSentinel(t *testing.T) {
	values := fullMonth(42)
	values[5] = MissingValue
	row, err := ParseMonthlyRow(dlyLine(testStation, 2021, 3, "PRCP", values))
	require.NoError(t, err)

	obs := ExpandRows([]MonthlyRow{row}, "PRCP", false)
	require.Len(t, obs, 30)
	for _, o := range obs {
		assert.NotEqual(t, 5, o.Date.Day())
		assert.Equal(t, 42, o.Value)
	}
}

func TestExpandRows_FlagsOptional(t *testing.T) {
	line := dlyLine(testStation, 2021, 3, "PRCP", map[int]int{1: 3})
	line = line[:26] + "TI7" + line[29:]
	row, err := ParseMonthlyRow(line)
	require.NoError(t, err)

	withFlags := ExpandRows([]MonthlyRow{row}, "PRCP", true)
	require.Len(t, withFlags, 1)
	require.NotNil(t, withFlags[0].Flags)
	assert.Equal(t, Flags{Measurement: "T", Quality: "I", Source: "7"}, *withFlags[0].Flags)

	without := ExpandRows([]MonthlyRow{row}, "PRCP", false)
	require.Len(t, without, 1)
	assert.Nil(t, without[0].Flags)
}

func TestExpandRows_SortsAndKeepsDuplicates(t *testing.T) {
	later, err := ParseMonthlyRow(dlyLine(testStation, 2020, 3, "TMAX", map[int]int{1: 30}))
	require.NoError(t, err)
	earlier, err := ParseMonthlyRow(dlyLine(testStation, 2020, 1, "TMAX", map[int]int{2: 10}))
	require.NoError(t, err)
	dup, err := ParseMonthlyRow(dlyLine(testStation, 2020, 1, "TMAX", map[int]int{2: 11}))
	require.NoError(t, err)
	other, err := ParseMonthlyRow(dlyLine(testStation, 2020, 1, "TMIN", map[int]int{1: -5}))
	require.NoError(t, err)

	obs := ExpandRows([]MonthlyRow{later, earlier, other, dup}, "TMAX", false)

	want := []DailyObservation{
		{StationID: testStation, Element: "TMAX", Date: date(2020, time.January, 2), Value: 10},
		{StationID: testStation, Element: "TMAX", Date: date(2020, time.January, 2), Value: 11},
		{StationID: testStation, Element: "TMAX", Date: date(2020, time.March, 1), Value: 30},
	}
	if diff := cmp.Diff(want, obs); diff != "" {
		t.Fatalf("observations mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDaily_LeapFebruary(t *testing.T) {
	values := map[int]int{1: 150, 2: MissingValue, 29: 200}
	for d := 3; d <= 28; d++ {
		values[d] = MissingValue
	}
	input := dlyLine("USC001", 2020, 2, "TMAX", values) + "\n"

	obs, err := ReadDaily(strings.NewReader(input), "TMAX", false)
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, date(2020, time.February, 1), obs[0].Date)
	assert.Equal(t, 150, obs[0].Value)
	assert.Equal(t, date(2020, time.February, 29), obs[1].Date)
	assert.Equal(t, 200, obs[1].Value)
	assert.Equal(t, "USC001     ", obs[0].StationID)
}

func TestReadDaily_NonLeapFebruaryDropsDay29(t *testing.T) {
	input := dlyLine(testStation, 2019, 2, "TMAX", map[int]int{28: 1, 29: 2, 30: 3})
	obs, err := ReadDaily(strings.NewReader(input), "TMAX", false)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 28, obs[0].Date.Day())
}

func TestReadDaily_NoMatchingElement(t *testing.T) {
	input := dlyLine(testStation, 2020, 1, "TMAX", fullMonth(1))
	obs, err := ReadDaily(strings.NewReader(input), "SNWD", true)
	require.NoError(t, err)
	assert.NotNil(t, obs)
	assert.Empty(t, obs)
}

func TestReadDaily_TruncatedLineAbortsLoad(t *testing.T) {
	good := dlyLine(testStation, 2020, 1, "TMAX", fullMonth(1))
	input := good + "\n" + good[:50] + "\n" + good + "\n"

	obs, err := ReadDaily(strings.NewReader(input), "TMAX", false)
	require.Error(t, err)
	assert.Nil(t, obs)
	assert.True(t, errors.Is(err, ErrFormat))

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Line)

	var tle *fixedwidth.TruncatedLineError
	assert.True(t, errors.As(err, &tle))
}

func TestReadDaily_BadValueAbortsLoad(t *testing.T) {
	bad := dlyLine(testStation, 2020, 1, "TMAX", nil)
	bad = bad[:29] + "  abc" + bad[34:]
	_, err := ReadDaily(strings.NewReader(bad), "TMAX", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestReadDaily_MalformedOtherElementAbortsLoad(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(line string) string
	}{
		{"bad year", func(l string) string { return l[:11] + "20x0" + l[15:] }},
		{"bad value", func(l string) string { return l[:21] + "  abc" + l[26:] }},
	}
	good := dlyLine(testStation, 2020, 1, "TMAX", fullMonth(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmin := tt.mangle(dlyLine(testStation, 2020, 1, "TMIN", fullMonth(-5)))
			obs, err := ReadDaily(strings.NewReader(good+"\n"+tmin+"\n"), "TMAX", false)
			require.Error(t, err)
			assert.Nil(t, obs)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 2, fe.Line)
		})
	}
}

func TestReadDaily_SkipsBlankLines(t *testing.T) {
	good := dlyLine(testStation, 2020, 1, "TMAX", fullMonth(1))
	input := good + "\n   \n\t\r\n\n"

	obs, err := ReadDaily(strings.NewReader(input), "TMAX", false)
	require.NoError(t, err)
	assert.Len(t, obs, 31)
}

func TestReadDailyFile(t *testing.T) {
	obs, err := ReadDailyFile(filepath.Join("testdata", "USC00011084.dly"), "TMAX", true)
	require.NoError(t, err)

	// April 2019 (30) + January 2020 (31) + February 2020 (28 of 29 days).
	require.Len(t, obs, 89)
	assert.Equal(t, date(2019, time.April, 1), obs[0].Date)
	assert.Equal(t, 1, obs[0].Value)
	assert.Equal(t, date(2020, time.February, 29), obs[len(obs)-1].Date)
	assert.Equal(t, 200, obs[len(obs)-1].Value)
	assert.Equal(t, &Flags{Measurement: " ", Quality: "I", Source: "6"}, obs[len(obs)-1].Flags)

	for i := 1; i < len(obs); i++ {
		assert.False(t, obs[i].Date.Before(obs[i-1].Date), "observations must be sorted")
	}

	feb1 := obs[30+31]
	assert.Equal(t, date(2020, time.February, 1), feb1.Date)
	assert.Equal(t, 150, feb1.Value)
	assert.Equal(t, &Flags{Measurement: "T", Quality: " ", Source: "0"}, feb1.Flags)
	assert.Equal(t, date(2020, time.February, 3), obs[30+31+1].Date)

	prcp, err := ReadDailyFile(filepath.Join("testdata", "USC00011084.dly"), "PRCP", false)
	require.NoError(t, err)
	assert.Len(t, prcp, 29)
}

func TestReadDailyFile_Missing(t *testing.T) {
	_, err := ReadDailyFile(filepath.Join(t.TempDir(), "nope.dly"), "TMAX", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrFormat))
}

func TestReadMonthlyRows(t *testing.T) {
	rows, err := ReadMonthlyRows(filepath.Join("testdata", "USC00011084.dly"))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = fmt.Sprintf("%s %04d-%02d", r.Element, r.Year, r.Month)
	}
	assert.Equal(t, []string{"TMAX 2020-02", "PRCP 2020-02", "TMAX 2020-01", "TMAX 2019-04"}, got)
	assert.Equal(t, 999, rows[3].Days[30].Value)
}

func TestReadMonthlyRows_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dly")
	content := dlyLine(testStation, 2020, 1, "TMAX", nil) + "\n" + "USC00011084202002TMAX  12\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadMonthlyRows(path)
	require.ErrorIs(t, err, ErrFormat)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Line)
}
