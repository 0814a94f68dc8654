// Command validate checks the integrity of a local GHCN-Daily data
// directory: the inventory and station list decode, every inventory station
// has a station list entry, and every local .dly file decodes and agrees
// with the inventory on elements and period of record.
//
// Usage:
//
//	go run ./cmd/validate -dir data
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kokorev/ghcndaily/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// period is the inventory's first and last year for a station element.
type period struct{ first, last int }

func main() {
	dir := flag.String("dir", "data", "data directory holding the inventory, station list and .dly files")
	inventoryPath := flag.String("inventory", "", "inventory path (default <dir>/"+domain.InventoryFile+")")
	stationsPath := flag.String("station-list", "", "station list path (default <dir>/"+domain.StationsFile+")")
	flag.Parse()

	if *inventoryPath == "" {
		*inventoryPath = filepath.Join(*dir, domain.InventoryFile)
	}
	if *stationsPath == "" {
		*stationsPath = filepath.Join(*dir, domain.StationsFile)
	}

	os.Exit(run(*dir, *inventoryPath, *stationsPath))
}

func run(dir, inventoryPath, stationsPath string) int {
	fmt.Println("=== GHCN-Daily Data Validation ===")
	fmt.Println()

	inv, err := domain.LoadInventory(inventoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load inventory: %v\n", err)
		return 1
	}
	meta, err := domain.LoadMeta(stationsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load station list: %v\n", err)
		return 1
	}
	dlyFiles, err := filepath.Glob(filepath.Join(dir, "*.dly"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: list daily files: %v\n", err)
		return 1
	}
	sort.Strings(dlyFiles)

	periods := inventoryPeriods(inv)
	dailyPhase, rows := validateDailyFiles(dlyFiles)
	phases := []*phase{
		validateInventoryParity(inv, meta),
		dailyPhase,
		validateDailyAgainstInventory(rows, periods),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d inventory, %d stations, %d daily files, %d monthly rows\n",
		inv.Len(), meta.Len(), len(dlyFiles), countRows(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func inventoryPeriods(inv *domain.InventoryStore) map[string]period {
	out := make(map[string]period, inv.Len())
	for _, r := range inv.Records() {
		out[r.Key()+"|"+r.Element] = period{first: r.FirstYear, last: r.LastYear}
	}
	return out
}

// validateInventoryParity checks that every inventory station is described
// in the station list with the same coordinates.
func validateInventoryParity(inv *domain.InventoryStore, meta *domain.MetaStore) *phase {
	p := &phase{name: "Inventory stations in station list"}

	keys := domain.Keys(inv.Records())
	byKey := make(map[string]domain.StationMetaRecord, len(keys))
	for _, m := range meta.GetMeta(keys) {
		byKey[m.Key()] = m
	}
	missing := map[string]bool{}
	for _, r := range inv.Records() {
		m, ok := byKey[r.Key()]
		if !ok {
			if !missing[r.Key()] {
				p.errorf("%s: not in station list", r.Key())
				missing[r.Key()] = true
			}
			continue
		}
		if m.Lat != r.Lat || m.Lon != r.Lon {
			p.errorf("%s %s: inventory at %.4f,%.4f, station list at %.4f,%.4f",
				r.Key(), r.Element, r.Lat, r.Lon, m.Lat, m.Lon)
		}
	}
	return p
}

// validateDailyFiles decodes every .dly file and checks each row belongs to
// the station named by the file.
func validateDailyFiles(paths []string) (*phase, map[string][]domain.MonthlyRow) {
	p := &phase{name: "Daily files decode"}
	rows := make(map[string][]domain.MonthlyRow, len(paths))

	for _, path := range paths {
		id := strings.TrimSuffix(filepath.Base(path), ".dly")
		fileRows, err := domain.ReadMonthlyRows(path)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		for _, r := range fileRows {
			if r.StationID != id {
				p.errorf("%s: row for station %s", filepath.Base(path), r.StationID)
			}
			if r.Month < 1 || r.Month > 12 {
				p.errorf("%s: %s %04d has month %d", filepath.Base(path), r.Element, r.Year, r.Month)
			}
		}
		rows[id] = fileRows
	}
	return p, rows
}

// validateDailyAgainstInventory checks every daily element is listed in the
// inventory and its rows fall inside the listed period of record.
func validateDailyAgainstInventory(rows map[string][]domain.MonthlyRow, periods map[string]period) *phase {
	p := &phase{name: "Daily elements match inventory"}

	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		reported := map[string]bool{}
		for _, r := range rows[id] {
			key := id + "|" + r.Element
			per, ok := periods[key]
			if !ok {
				if !reported[r.Element] {
					p.errorf("%s: element %s not in inventory", id, r.Element)
					reported[r.Element] = true
				}
				continue
			}
			if r.Year < per.first || r.Year > per.last {
				p.errorf("%s %s: year %d outside inventory period %d-%d", id, r.Element, r.Year, per.first, per.last)
			}
		}
	}
	return p
}

func countRows(rows map[string][]domain.MonthlyRow) int {
	n := 0
	for _, r := range rows {
		n += len(r)
	}
	return n
}
