// Command genmock writes a synthetic GHCN-Daily data directory: an
// inventory, a station list and one .dly file per station. Output is
// deterministic for a given seed, so it can back demos and load tests
// without touching the NOAA servers.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -stations 20 -from 2015 -to 2020
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/kokorev/ghcndaily/internal/domain"
)

// elements generated for every station.
var elements = []string{"TMAX", "TMIN", "PRCP"}

// countries cycles through a few FIPS codes with a plausible latitude band.
var countries = []struct {
	code     string
	state    string
	lat, lon float64
}{
	{code: "US", state: "AL", lat: 31.0, lon: -87.0},
	{code: "CA", state: "BC", lat: 49.0, lon: -123.0},
	{code: "GM", lat: 48.0, lon: 11.0},
	{code: "AS", lat: -33.9, lon: 151.2},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory")
	n := flag.Int("stations", 10, "number of stations")
	from := flag.Int("from", 2019, "first year")
	to := flag.Int("to", 2020, "last year")
	seed := flag.Uint64("seed", 1, "random seed")
	missing := flag.Float64("missing", 0.02, "fraction of days written as missing")
	flag.Parse()

	if *out == "" || *n < 1 || *from > *to {
		flag.Usage()
		return fmt.Errorf("need -out, -stations >= 1 and -from <= -to")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	var inventory []domain.StationRecord
	var stations []domain.StationMetaRecord

	for i := range *n {
		c := countries[i%len(countries)]
		meta := domain.StationMetaRecord{
			Country:   c.code,
			Network:   "C",
			ID:        fmt.Sprintf("%08d", 90000+i),
			Lat:       round4(c.lat + rng.Float64()*4 - 2),
			Lon:       round4(c.lon + rng.Float64()*4 - 2),
			Elevation: math.Round(rng.Float64()*15000) / 10,
			State:     c.state,
			Name:      fmt.Sprintf("MOCK STATION %d", i+1),
		}
		stations = append(stations, meta)
		for _, el := range elements {
			inventory = append(inventory, domain.StationRecord{
				Country: meta.Country, Network: meta.Network, ID: meta.ID,
				Lat: meta.Lat, Lon: meta.Lon,
				Element: el, FirstYear: *from, LastYear: *to,
			})
		}

		rows := monthlyRows(rng, meta.Key(), *from, *to, *missing)
		if err := writeLines(filepath.Join(*out, domain.StationFile(meta.Key())), rows, domain.FormatMonthlyRow); err != nil {
			return err
		}
	}

	if err := writeLines(filepath.Join(*out, domain.InventoryFile), inventory, domain.FormatStationRecord); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(*out, domain.StationsFile), stations, domain.FormatStationMetaRecord); err != nil {
		return err
	}

	log.Printf("wrote %d stations, %d inventory records, years %d-%d to %s", len(stations), len(inventory), *from, *to, *out)
	return nil
}

// monthlyRows builds one row per element and month. Temperatures follow a
// seasonal curve in tenths of a degree; precipitation is mostly dry days.
func monthlyRows(rng *rand.Rand, id string, from, to int, missing float64) []domain.MonthlyRow {
	var rows []domain.MonthlyRow
	for year := from; year <= to; year++ {
		for month := 1; month <= 12; month++ {
			for _, el := range elements {
				row := domain.MonthlyRow{StationID: id, Year: year, Month: month, Element: el}
				for d := range row.Days {
					row.Days[d] = daySlot(rng, el, year, month, d+1, missing)
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func daySlot(rng *rand.Rand, element string, year, month, day int, missing float64) domain.DaySlot {
	slot := domain.DaySlot{Value: domain.MissingValue, MFlag: " ", QFlag: " ", SFlag: " "}
	if !domain.ValidDate(year, month, day) || rng.Float64() < missing {
		return slot
	}

	season := math.Sin(2 * math.Pi * (float64(month) - 4) / 12)
	switch element {
	case "TMAX":
		slot.Value = int(150 + 120*season + rng.NormFloat64()*30)
	case "TMIN":
		slot.Value = int(40 + 100*season + rng.NormFloat64()*30)
	case "PRCP":
		if rng.Float64() < 0.3 {
			slot.Value = int(rng.ExpFloat64() * 60)
		} else {
			slot.Value = 0
		}
	}
	slot.SFlag = "7"
	if rng.Float64() < 0.005 {
		slot.QFlag = "I"
	}
	return slot
}

func writeLines[T any](path string, items []T, format func(T) (string, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, item := range items {
		line, err := format(item)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
