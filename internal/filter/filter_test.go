package filter_test

import (
	"net/url"
	"slices"
	"testing"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/filter"
	"github.com/couchcryptid/wildlife-health-watch/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func collection(t *testing.T) []domain.CaseRecord {
	t.Helper()
	records, err := generator.Generate(generator.DefaultRequest(asOf))
	require.NoError(t, err)
	return records
}

func ptr[T any](v T) *T { return &v }

func TestApply_ZeroSpecMatchesEverything(t *testing.T) {
	records := collection(t)
	assert.Equal(t, records, filter.Apply(records, filter.Spec{}))
}

func TestApply_Idempotent(t *testing.T) {
	records := collection(t)
	spec := filter.Spec{
		DateFrom:   ptr(asOf.AddDate(0, -6, 0)),
		Region:     ptr("Maasai Mara"),
		Severities: []domain.Severity{domain.SeverityHigh, domain.SeverityCritical},
	}

	once := filter.Apply(records, spec)
	twice := filter.Apply(once, spec)
	assert.Equal(t, once, twice)
}

func TestApply_EmptySeveritySetMatchesNothing(t *testing.T) {
	records := collection(t)

	assert.Empty(t, filter.Apply(records, filter.Spec{Severities: []domain.Severity{}}))
	assert.Empty(t, filter.Apply(records, filter.Spec{Statuses: []domain.Status{}}))
	assert.Len(t, filter.Apply(records, filter.Spec{Severities: nil}), len(records))
}

func TestApply_DateFromAfterDateToIsEmpty(t *testing.T) {
	records := collection(t)
	spec := filter.Spec{
		DateFrom: ptr(asOf.AddDate(0, 0, -10)),
		DateTo:   ptr(asOf.AddDate(0, 0, -20)),
	}

	got := filter.Apply(records, spec)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_DateBoundsAreInclusive(t *testing.T) {
	records := collection(t)
	target := records[len(records)/2].ReportDate
	spec := filter.Spec{DateFrom: ptr(target), DateTo: ptr(target)}

	got := filter.Apply(records, spec)
	require.NotEmpty(t, got)
	for _, r := range got {
		assert.Equal(t, target, r.ReportDate)
	}
}

func TestApply_RegionAndStatusMatchesDirectCount(t *testing.T) {
	records := collection(t)

	want := 0
	for _, r := range records {
		if r.Region == "Tsavo East" && r.Status == domain.StatusActive {
			want++
		}
	}

	got := filter.Apply(records, filter.Spec{
		Region:   ptr("Tsavo East"),
		Statuses: []domain.Status{domain.StatusActive},
	})
	assert.Len(t, got, want)
	for _, r := range got {
		assert.Equal(t, "Tsavo East", r.Region)
		assert.Equal(t, domain.StatusActive, r.Status)
	}
}

func TestApply_PreservesOrderAndDoesNotMutate(t *testing.T) {
	records := collection(t)
	before := slices.Clone(records)

	got := filter.Apply(records, filter.Spec{Species: ptr("Zebra")})

	assert.Equal(t, before, records)
	assert.True(t, slices.IsSortedFunc(got, func(a, b domain.CaseRecord) int {
		return a.ReportDate.Compare(b.ReportDate)
	}))
}

func TestApply_UnknownRegionMatchesNothing(t *testing.T) {
	assert.Empty(t, filter.Apply(collection(t), filter.Spec{Region: ptr("Serengeti")}))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, s filter.Spec)
	}{
		{
			name:  "empty query is unconstrained",
			query: "",
			check: func(t *testing.T, s filter.Spec) {
				assert.Equal(t, filter.Spec{}, s)
			},
		},
		{
			name:  "dates",
			query: "date_from=2024-01-01&date_to=2024-03-31",
			check: func(t *testing.T, s filter.Spec) {
				require.NotNil(t, s.DateFrom)
				require.NotNil(t, s.DateTo)
				assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *s.DateFrom)
				assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *s.DateTo)
			},
		},
		{
			name:  "All region and species are unconstrained",
			query: "region=All&species=all",
			check: func(t *testing.T, s filter.Spec) {
				assert.Nil(t, s.Region)
				assert.Nil(t, s.Species)
			},
		},
		{
			name:  "region and species",
			query: "region=Tsavo+East&species=African+Elephant",
			check: func(t *testing.T, s filter.Spec) {
				assert.Equal(t, ptr("Tsavo East"), s.Region)
				assert.Equal(t, ptr("African Elephant"), s.Species)
			},
		},
		{
			name:  "repeated and comma separated sets",
			query: "severity=Critical,high&severity=High&status=under_investigation",
			check: func(t *testing.T, s filter.Spec) {
				assert.Equal(t, []domain.Severity{domain.SeverityCritical, domain.SeverityHigh}, s.Severities)
				assert.Equal(t, []domain.Status{domain.StatusUnderInvestigation}, s.Statuses)
			},
		},
		{
			name:  "present but empty severity selects nothing",
			query: "severity=",
			check: func(t *testing.T, s filter.Spec) {
				assert.NotNil(t, s.Severities)
				assert.Empty(t, s.Severities)
				assert.Nil(t, s.Statuses)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			spec, err := filter.Parse(values)
			require.NoError(t, err)
			tt.check(t, spec)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad date_from", "date_from=01/02/2024"},
		{"bad date_to", "date_to=2024-13-01"},
		{"unknown severity", "severity=Extreme"},
		{"unknown status", "status=Closed"},
		{"one bad member", "severity=Low,Nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = filter.Parse(values)
			assert.ErrorIs(t, err, domain.ErrMalformedFilterSpec)
		})
	}
}

func TestKey_Canonical(t *testing.T) {
	a := filter.Spec{Severities: []domain.Severity{domain.SeverityCritical, domain.SeverityLow}}
	b := filter.Spec{Severities: []domain.Severity{domain.SeverityLow, domain.SeverityCritical}}
	assert.Equal(t, a.Key(), b.Key())

	assert.Equal(t,
		"date_from=*;date_to=*;region=*;species=*;severity=*;status=*",
		filter.Spec{}.Key())
	assert.Equal(t,
		"date_from=*;date_to=*;region=*;species=*;severity=;status=*",
		filter.Spec{Severities: []domain.Severity{}}.Key())
}

func TestValues_RoundTrip(t *testing.T) {
	specs := []filter.Spec{
		{},
		{
			DateFrom:   ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			DateTo:     ptr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			Region:     ptr("Lake Nakuru"),
			Species:    ptr("Rhino"),
			Severities: []domain.Severity{domain.SeverityHigh},
			Statuses:   []domain.Status{domain.StatusUnderInvestigation, domain.StatusActive},
		},
		{Severities: []domain.Severity{}, Statuses: []domain.Status{}},
	}

	for _, want := range specs {
		t.Run(want.Key(), func(t *testing.T) {
			got, err := filter.Parse(want.Values())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
