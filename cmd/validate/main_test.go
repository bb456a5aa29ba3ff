package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/generator"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func writeExport(t *testing.T, records []domain.CaseRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, store.WriteCSV(f, records))
	return path
}

func generated(t *testing.T) []domain.CaseRecord {
	t.Helper()
	records, err := generator.Generate(generator.DefaultRequest(asOf))
	require.NoError(t, err)
	return records
}

func TestRun_GeneratedDataPasses(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, writeExport(t, generated(t)), 365, "2024-06-01")

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_DefaultsReferenceToLatestReport(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, writeExport(t, generated(t)), 365, "")

	assert.Equal(t, 0, code, out.String())
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, filepath.Join(t.TempDir(), "nope.csv"), 365, ""))
	assert.Contains(t, out.String(), "FATAL")
}

func TestPhases_DetectCorruption(t *testing.T) {
	catalog := domain.DefaultCatalog()

	tests := []struct {
		name   string
		mutate func(records []domain.CaseRecord)
		check  func(records []domain.CaseRecord) *phase
	}{
		{
			name:   "duplicate id",
			mutate: func(r []domain.CaseRecord) { r[1].CaseID = r[0].CaseID },
			check:  validateIdentifiers,
		},
		{
			name:   "malformed id",
			mutate: func(r []domain.CaseRecord) { r[0].CaseID = "case-one" },
			check:  validateIdentifiers,
		},
		{
			name:   "report after reference date",
			mutate: func(r []domain.CaseRecord) { r[len(r)-1].ReportDate = asOf.AddDate(0, 0, 1) },
			check:  func(r []domain.CaseRecord) *phase { return validateWindow(r, asOf, 365) },
		},
		{
			name:   "out of order",
			mutate: func(r []domain.CaseRecord) { r[0].ReportDate = asOf },
			check:  func(r []domain.CaseRecord) *phase { return validateWindow(r, asOf, 365) },
		},
		{
			name:   "far from centroid",
			mutate: func(r []domain.CaseRecord) { r[0].Latitude += 2 },
			check:  func(r []domain.CaseRecord) *phase { return validateGeography(r, catalog) },
		},
		{
			name:   "unknown region",
			mutate: func(r []domain.CaseRecord) { r[0].Region = "Serengeti" },
			check:  func(r []domain.CaseRecord) *phase { return validateGeography(r, catalog) },
		},
		{
			name: "critical with too few animals",
			mutate: func(r []domain.CaseRecord) {
				r[0].Severity = domain.SeverityCritical
				r[0].AnimalsAffected = 1
			},
			check: func(r []domain.CaseRecord) *phase { return validateCategories(r, catalog) },
		},
		{
			name:   "unknown species",
			mutate: func(r []domain.CaseRecord) { r[0].Species = "Pangolin" },
			check:  func(r []domain.CaseRecord) *phase { return validateCategories(r, catalog) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := generated(t)
			require.True(t, tt.check(records).passed())

			tt.mutate(records)
			p := tt.check(records)
			assert.False(t, p.passed())
		})
	}
}

func TestFourDecimals(t *testing.T) {
	assert.True(t, fourDecimals(-1.4833))
	assert.True(t, fourDecimals(38))
	assert.False(t, fourDecimals(-1.48331))
}
