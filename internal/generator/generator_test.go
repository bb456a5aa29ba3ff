package generator_test

import (
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)

func generateDefault(t *testing.T) []domain.CaseRecord {
	t.Helper()
	records, err := generator.Generate(generator.DefaultRequest(asOf))
	require.NoError(t, err)
	return records
}

func TestGenerate_CountAndUniqueIDs(t *testing.T) {
	records := generateDefault(t)
	require.Len(t, records, generator.DefaultCount)

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		assert.False(t, seen[r.CaseID], "duplicate case id %s", r.CaseID)
		seen[r.CaseID] = true
	}
	assert.True(t, seen["WHW-2024-0001"])
	assert.True(t, seen["WHW-2024-0500"])
}

func TestGenerate_DatesInsideWindowAndSorted(t *testing.T) {
	records := generateDefault(t)

	end := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -generator.DefaultWindowDays)

	for i, r := range records {
		assert.False(t, r.ReportDate.Before(start), "%s before window", r.CaseID)
		assert.False(t, r.ReportDate.After(end), "%s after window", r.CaseID)
		assert.Equal(t, domain.CivilDate(r.ReportDate), r.ReportDate, "report date carries a time of day")
		if i > 0 {
			assert.False(t, r.ReportDate.Before(records[i-1].ReportDate), "not sorted at %d", i)
		}
	}
}

func TestGenerate_CoordinatesNearRegionCentroid(t *testing.T) {
	catalog := domain.DefaultCatalog()

	for _, r := range generateDefault(t) {
		region, ok := catalog.RegionByName(r.Region)
		require.True(t, ok, "unknown region %q", r.Region)
		assert.Less(t, math.Abs(r.Latitude-region.Lat), 1.0, r.CaseID)
		assert.Less(t, math.Abs(r.Longitude-region.Lon), 1.0, r.CaseID)
		assert.Equal(t, math.Round(r.Latitude*1e4)/1e4, r.Latitude)
		assert.Equal(t, math.Round(r.Longitude*1e4)/1e4, r.Longitude)
	}
}

func TestGenerate_CategoriesAndAffectedRanges(t *testing.T) {
	catalog := domain.DefaultCatalog()

	for _, r := range generateDefault(t) {
		assert.True(t, catalog.HasSpecies(r.Species), r.Species)
		assert.True(t, catalog.HasSyndrome(r.Syndrome), r.Syndrome)
		assert.Contains(t, domain.Severities, r.Severity)
		assert.Contains(t, domain.Statuses, r.Status)

		span := catalog.AffectedRanges[r.Severity]
		assert.True(t, span.Contains(r.AnimalsAffected),
			"%s: %d animals for %s", r.CaseID, r.AnimalsAffected, r.Severity)
		if r.Severity == domain.SeverityCritical {
			assert.GreaterOrEqual(t, r.AnimalsAffected, 5)
			assert.LessOrEqual(t, r.AnimalsAffected, 20)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generateDefault(t)
	b := generateDefault(t)
	assert.Equal(t, a, b)

	req := generator.DefaultRequest(asOf)
	req.Seed = 7
	c, err := generator.Generate(req)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerate_SeverityIsStationary(t *testing.T) {
	req := generator.DefaultRequest(asOf)
	req.Count = 10000
	records, err := generator.Generate(req)
	require.NoError(t, err)

	counts := make(map[domain.Severity]int)
	for _, r := range records {
		counts[r.Severity]++
	}

	n := float64(len(records))
	assert.InDelta(t, 0.40, float64(counts[domain.SeverityLow])/n, 0.03)
	assert.InDelta(t, 0.35, float64(counts[domain.SeverityModerate])/n, 0.03)
	assert.InDelta(t, 0.20, float64(counts[domain.SeverityHigh])/n, 0.03)
	assert.InDelta(t, 0.05, float64(counts[domain.SeverityCritical])/n, 0.02)
}

func TestSeverityShares(t *testing.T) {
	shares, err := generator.SeverityShares()
	require.NoError(t, err)

	require.Len(t, shares, len(domain.Severities))
	assert.InDelta(t, 0.40, shares[domain.SeverityLow], 1e-12)
	assert.InDelta(t, 0.35, shares[domain.SeverityModerate], 1e-12)
	assert.InDelta(t, 0.20, shares[domain.SeverityHigh], 1e-12)
	assert.InDelta(t, 0.05, shares[domain.SeverityCritical], 1e-12)

	c := domain.DefaultCatalog()
	c.SeverityWeights = []float64{1, 1, 1, 1}
	g, err := generator.NewWithCatalog(c)
	require.NoError(t, err)
	for _, s := range domain.Severities {
		assert.InDelta(t, 0.25, g.SeverityShares()[s], 1e-12, s)
	}
}

func TestGenerate_StatusSkewsByRecency(t *testing.T) {
	req := generator.DefaultRequest(asOf)
	req.Count = 10000
	records, err := generator.Generate(req)
	require.NoError(t, err)

	var fresh, freshActive, stale, staleResolved int
	for _, r := range records {
		daysAgo := domain.DaysBetween(r.ReportDate, asOf)
		switch {
		case daysAgo < 14:
			fresh++
			if r.Status == domain.StatusActive {
				freshActive++
			}
		case daysAgo >= 60:
			stale++
			if r.Status == domain.StatusResolved {
				staleResolved++
			}
		}
	}

	require.Positive(t, fresh)
	require.Positive(t, stale)
	assert.Greater(t, float64(freshActive)/float64(fresh), 0.45)
	assert.Greater(t, float64(staleResolved)/float64(stale), 0.75)
}

func TestGenerate_CustomPrefixAndYear(t *testing.T) {
	req := generator.DefaultRequest(time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC))
	req.Count = 3
	req.Prefix = "KWS"

	records, err := generator.Generate(req)
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.CaseID)
	}
	assert.ElementsMatch(t, []string{"KWS-2025-0001", "KWS-2025-0002", "KWS-2025-0003"}, ids)
}

func TestGenerate_InvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*generator.Request)
	}{
		{"zero count", func(r *generator.Request) { r.Count = 0 }},
		{"negative count", func(r *generator.Request) { r.Count = -5 }},
		{"zero window", func(r *generator.Request) { r.WindowDays = 0 }},
		{"empty prefix", func(r *generator.Request) { r.Prefix = "" }},
		{"unset reference time", func(r *generator.Request) { r.Now = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := generator.DefaultRequest(asOf)
			tt.mutate(&req)

			records, err := generator.Generate(req)
			require.ErrorIs(t, err, domain.ErrInvalidGenerationRequest)
			assert.Nil(t, records)
		})
	}
}

func TestNewWithCatalog_MalformedTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Catalog)
	}{
		{"no regions", func(c *domain.Catalog) { c.Regions = nil }},
		{"species weight count mismatch", func(c *domain.Catalog) { c.SpeciesWeights = c.SpeciesWeights[:3] }},
		{"negative severity weight", func(c *domain.Catalog) { c.SeverityWeights = []float64{40, -35, 20, 5} }},
		{"all-zero wet syndrome weights", func(c *domain.Catalog) { c.SyndromeWeights.Wet = make([]float64, 8) }},
		{"short stale status weights", func(c *domain.Catalog) { c.StatusWeights.Stale = []float64{1, 1} }},
		{"missing affected range", func(c *domain.Catalog) { delete(c.AffectedRanges, domain.SeverityHigh) }},
		{"inverted affected range", func(c *domain.Catalog) {
			c.AffectedRanges[domain.SeverityLow] = domain.IntRange{Min: 3, Max: 1}
		}},
		{"recency buckets out of order", func(c *domain.Catalog) { c.RecentDays = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.DefaultCatalog()
			tt.mutate(&c)

			g, err := generator.NewWithCatalog(c)
			require.ErrorIs(t, err, domain.ErrInvalidGenerationRequest)
			assert.Nil(t, g)
		})
	}
}

func TestSeasonFor(t *testing.T) {
	tests := []struct {
		month time.Month
		want  generator.Season
	}{
		{time.January, generator.SeasonShoulder},
		{time.February, generator.SeasonShoulder},
		{time.March, generator.SeasonWet},
		{time.May, generator.SeasonWet},
		{time.June, generator.SeasonDry},
		{time.August, generator.SeasonDry},
		{time.September, generator.SeasonShoulder},
		{time.November, generator.SeasonWet},
		{time.December, generator.SeasonShoulder},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, generator.SeasonFor(tt.month))
		})
	}
}
