// Command validate performs data integrity checks on a wildlife case export:
// identifiers, the reporting window, coordinates against region centroids,
// category membership, and affected-animal ranges per severity.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/cases.csv \
//	  -window-days 365 \
//	  -as-of 2024-06-01
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
)

// maxCentroidDistance bounds how far a record may sit from its region centroid
// in either axis, in degrees.
const maxCentroidDistance = 1.0

var caseIDPattern = regexp.MustCompile(`^([A-Za-z0-9]+)-(\d{4})-(\d{4,})$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("csv", "", "path to the case export (.csv or .json)")
	windowDays := flag.Int("window-days", 365, "maximum days between a report and the reference date")
	asOf := flag.String("as-of", "", "reference date in YYYY-MM-DD (default: latest report date)")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *path, *windowDays, *asOf); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, path string, windowDays int, asOf string) int {
	fmt.Fprintln(out, "=== Wildlife Case Integrity Validation ===")
	fmt.Fprintln(out)

	records, err := load(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load %s: %v\n", path, err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "FATAL: %s has no records\n", path)
		return 1
	}

	ref := latest(records)
	if asOf != "" {
		ref, err = domain.ParseDate(asOf)
		if err != nil {
			fmt.Fprintf(out, "FATAL: -as-of: %v\n", err)
			return 1
		}
	}

	catalog := domain.DefaultCatalog()

	phases := []*phase{
		validateIdentifiers(records),
		validateWindow(records, ref, windowDays),
		validateGeography(records, catalog),
		validateCategories(records, catalog),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d, reference date %s, window %d days\n",
		len(records), ref.Format(domain.DateLayout), windowDays)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func load(path string) ([]domain.CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var records []domain.CaseRecord
		if err := json.NewDecoder(f).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return records, nil
	}
	return store.ReadCSV(f)
}

func latest(records []domain.CaseRecord) time.Time {
	var last time.Time
	for i := range records {
		if records[i].ReportDate.After(last) {
			last = records[i].ReportDate
		}
	}
	return last
}

// ── Phase 1: Identifiers ──

func validateIdentifiers(records []domain.CaseRecord) *phase {
	p := &phase{name: "Phase 1: Case identifiers"}
	fmt.Fprintln(os.Stderr, "Phase 1: Validating case identifiers...")

	seen := make(map[string]int, len(records))
	seqs := make(map[int]bool, len(records))
	prefixes := map[string]bool{}

	for i := range records {
		r := &records[i]
		if prev, dup := seen[r.CaseID]; dup {
			p.errorf("record %d: case_id %s duplicates record %d", i+1, r.CaseID, prev)
			continue
		}
		seen[r.CaseID] = i + 1

		m := caseIDPattern.FindStringSubmatch(r.CaseID)
		if m == nil {
			p.errorf("record %d: case_id %q is not PREFIX-YYYY-NNNN", i+1, r.CaseID)
			continue
		}
		prefixes[m[1]] = true
		seq, _ := strconv.Atoi(m[3])
		seqs[seq] = true
	}

	if len(prefixes) > 1 {
		p.errorf("case ids use %d different prefixes", len(prefixes))
	}
	if p.passed() {
		for n := 1; n <= len(records); n++ {
			if !seqs[n] {
				p.errorf("sequence number %04d is missing", n)
				break
			}
		}
	}
	return p
}

// ── Phase 2: Reporting window ──

func validateWindow(records []domain.CaseRecord, ref time.Time, windowDays int) *phase {
	p := &phase{name: "Phase 2: Reporting window and order"}
	fmt.Fprintln(os.Stderr, "Phase 2: Validating reporting window...")

	earliest := ref.AddDate(0, 0, -windowDays)
	for i := range records {
		r := &records[i]
		if r.ReportDate.Before(earliest) || r.ReportDate.After(ref) {
			p.errorf("%s: report_date %s outside [%s, %s]", r.CaseID,
				r.ReportDate.Format(domain.DateLayout), earliest.Format(domain.DateLayout), ref.Format(domain.DateLayout))
		}
		if i > 0 && r.ReportDate.Before(records[i-1].ReportDate) {
			p.errorf("%s: report_date %s precedes previous record %s", r.CaseID,
				r.ReportDate.Format(domain.DateLayout), records[i-1].ReportDate.Format(domain.DateLayout))
		}
	}
	return p
}

// ── Phase 3: Geography ──

func validateGeography(records []domain.CaseRecord, catalog domain.Catalog) *phase {
	p := &phase{name: "Phase 3: Regions and coordinates"}
	fmt.Fprintln(os.Stderr, "Phase 3: Validating regions and coordinates...")

	for i := range records {
		r := &records[i]
		region, ok := catalog.RegionByName(r.Region)
		if !ok {
			p.errorf("%s: unknown region %q", r.CaseID, r.Region)
			continue
		}
		if d := math.Abs(r.Latitude - region.Lat); d > maxCentroidDistance {
			p.errorf("%s: latitude %.4f is %.2f° from %s centroid", r.CaseID, r.Latitude, d, r.Region)
		}
		if d := math.Abs(r.Longitude - region.Lon); d > maxCentroidDistance {
			p.errorf("%s: longitude %.4f is %.2f° from %s centroid", r.CaseID, r.Longitude, d, r.Region)
		}
		if !fourDecimals(r.Latitude) || !fourDecimals(r.Longitude) {
			p.errorf("%s: coordinates (%v, %v) carry more than 4 decimals", r.CaseID, r.Latitude, r.Longitude)
		}
	}
	return p
}

func fourDecimals(v float64) bool {
	return math.Abs(v*1e4-math.Round(v*1e4)) < 1e-6
}

// ── Phase 4: Categories ──

func validateCategories(records []domain.CaseRecord, catalog domain.Catalog) *phase {
	p := &phase{name: "Phase 4: Categories and affected ranges"}
	fmt.Fprintln(os.Stderr, "Phase 4: Validating categories...")

	for i := range records {
		r := &records[i]
		if !catalog.HasSpecies(r.Species) {
			p.errorf("%s: unknown species %q", r.CaseID, r.Species)
		}
		if !catalog.HasSyndrome(r.Syndrome) {
			p.errorf("%s: unknown syndrome %q", r.CaseID, r.Syndrome)
		}
		if !slices.Contains(domain.Statuses, r.Status) {
			p.errorf("%s: unknown status %q", r.CaseID, r.Status)
		}
		rng, ok := catalog.AffectedRanges[r.Severity]
		if !ok {
			p.errorf("%s: unknown severity %q", r.CaseID, r.Severity)
			continue
		}
		if !rng.Contains(r.AnimalsAffected) {
			p.errorf("%s: %d animals affected outside %s range [%d, %d]",
				r.CaseID, r.AnimalsAffected, r.Severity, rng.Min, rng.Max)
		}
	}
	return p
}
