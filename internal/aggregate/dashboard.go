package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
)

// Dashboard bundles every view derived from one filtered set.
type Dashboard struct {
	Empty     bool                `json:"empty"`
	Metrics   Metrics             `json:"metrics"`
	Weekly    []WeekBucket        `json:"weekly"`
	Species   []Tally             `json:"species"`
	Syndromes []Tally             `json:"syndromes"`
	Points    []GeoPoint          `json:"points"`
	Recent    []domain.CaseRecord `json:"recent"`
}

// Build runs every aggregation over records. now anchors the 30-day metric.
func Build(records []domain.CaseRecord, now time.Time) Dashboard {
	return Dashboard{
		Empty:     len(records) == 0,
		Metrics:   Summarize(records, now),
		Weekly:    Weekly(records),
		Species:   SpeciesTally(records),
		Syndromes: SyndromeTally(records),
		Points:    GeoPoints(records),
		Recent:    Recent(records, RecentLimit),
	}
}

// FilterOptions lists the values a filter form can offer for a collection.
type FilterOptions struct {
	Regions    []string          `json:"regions"`
	Species    []string          `json:"species"`
	Severities []domain.Severity `json:"severities"` // most severe first
	Statuses   []domain.Status   `json:"statuses"`
	DateMin    string            `json:"date_min,omitempty"`
	DateMax    string            `json:"date_max,omitempty"`
}

// Options collects the distinct values present in records.
func Options(records []domain.CaseRecord) FilterOptions {
	opts := FilterOptions{
		Regions:    distinct(records, func(r domain.CaseRecord) string { return r.Region }),
		Species:    distinct(records, func(r domain.CaseRecord) string { return r.Species }),
		Severities: distinct(records, func(r domain.CaseRecord) domain.Severity { return r.Severity }),
		Statuses:   distinct(records, func(r domain.CaseRecord) domain.Status { return r.Status }),
	}
	slices.SortFunc(opts.Severities, func(a, b domain.Severity) int { return b.Rank() - a.Rank() })

	if len(records) == 0 {
		return opts
	}
	lo, hi := records[0].ReportDate, records[0].ReportDate
	for _, r := range records[1:] {
		if r.ReportDate.Before(lo) {
			lo = r.ReportDate
		}
		if r.ReportDate.After(hi) {
			hi = r.ReportDate
		}
	}
	opts.DateMin = lo.Format(domain.DateLayout)
	opts.DateMax = hi.Format(domain.DateLayout)
	return opts
}

func distinct[T cmp.Ordered](records []domain.CaseRecord, key func(domain.CaseRecord) T) []T {
	seen := make(map[T]struct{})
	out := make([]T, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
