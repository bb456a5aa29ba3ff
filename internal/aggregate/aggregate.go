// Package aggregate derives the dashboard views from a filtered case set.
//
// Every function is pure: it reads the records it is given and returns fresh
// values. Empty input produces empty (non-nil) slices and zero metrics so
// callers can render an "empty" state without special cases.
package aggregate

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
)

// RecentLimit caps the recent-cases table.
const RecentLimit = 10

// recentWindowDays is the lookback of Metrics.CasesLast30Days.
const recentWindowDays = 30

// WeekBucket counts the cases reported in one ISO week (Monday to Sunday).
type WeekBucket struct {
	Label           string // ISO year and week, e.g. "2024-W17"
	WeekStart       time.Time
	WeekEnd         time.Time
	Cases           int
	AnimalsAffected int
}

func (w WeekBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label           string `json:"label"`
		WeekStart       string `json:"week_start"`
		WeekEnd         string `json:"week_end"`
		Cases           int    `json:"cases"`
		AnimalsAffected int    `json:"animals_affected"`
	}{w.Label, w.WeekStart.Format(domain.DateLayout), w.WeekEnd.Format(domain.DateLayout), w.Cases, w.AnimalsAffected})
}

// Tally is the case count for one category value.
type Tally struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Metrics are the headline numbers of the dashboard.
type Metrics struct {
	TotalCases       int `json:"total_cases"`
	ActiveCases      int `json:"active_cases"`
	CriticalCases    int `json:"critical_cases"`
	AnimalsAffected  int `json:"animals_affected"`
	RegionsMonitored int `json:"regions_monitored"`
	CasesLast30Days  int `json:"cases_last_30_days"`
}

// GeoPoint is one map marker.
type GeoPoint struct {
	CaseID          string          `json:"case_id"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	Severity        domain.Severity `json:"severity"`
	AnimalsAffected int             `json:"animals_affected"`
	Species         string          `json:"species"`
	Syndrome        string          `json:"syndrome"`
	Region          string          `json:"region"`
	ReportDate      string          `json:"report_date"`
}

// Weekly groups records by ISO week and returns the non-empty weeks in
// chronological order.
func Weekly(records []domain.CaseRecord) []WeekBucket {
	byStart := make(map[time.Time]*WeekBucket)
	for _, r := range records {
		start := weekStart(r.ReportDate)
		b, ok := byStart[start]
		if !ok {
			year, week := start.ISOWeek()
			b = &WeekBucket{
				Label:     fmt.Sprintf("%d-W%02d", year, week),
				WeekStart: start,
				WeekEnd:   start.AddDate(0, 0, 6),
			}
			byStart[start] = b
		}
		b.Cases++
		b.AnimalsAffected += r.AnimalsAffected
	}

	out := make([]WeekBucket, 0, len(byStart))
	for _, b := range byStart {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b WeekBucket) int { return a.WeekStart.Compare(b.WeekStart) })
	return out
}

// weekStart returns the Monday on or before t's calendar date.
func weekStart(t time.Time) time.Time {
	d := domain.CivilDate(t)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// SpeciesTally counts cases per species.
func SpeciesTally(records []domain.CaseRecord) []Tally {
	return tally(records, func(r domain.CaseRecord) string { return r.Species })
}

// SyndromeTally counts cases per syndrome.
func SyndromeTally(records []domain.CaseRecord) []Tally {
	return tally(records, func(r domain.CaseRecord) string { return r.Syndrome })
}

// tally orders by count descending, breaking ties by name.
func tally(records []domain.CaseRecord, key func(domain.CaseRecord) string) []Tally {
	counts := make(map[string]int)
	for _, r := range records {
		counts[key(r)]++
	}

	out := make([]Tally, 0, len(counts))
	for name, n := range counts {
		out = append(out, Tally{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Tally) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Summarize computes the headline metrics. CasesLast30Days counts reports
// fewer than 30 calendar days before now's date.
func Summarize(records []domain.CaseRecord, now time.Time) Metrics {
	var m Metrics
	regions := make(map[string]struct{})
	for _, r := range records {
		m.TotalCases++
		m.AnimalsAffected += r.AnimalsAffected
		if r.Status == domain.StatusActive {
			m.ActiveCases++
		}
		if r.Severity == domain.SeverityCritical {
			m.CriticalCases++
		}
		if domain.DaysBetween(r.ReportDate, now) < recentWindowDays {
			m.CasesLast30Days++
		}
		regions[r.Region] = struct{}{}
	}
	m.RegionsMonitored = len(regions)
	return m
}

// GeoPoints maps each record to a marker, preserving input order.
func GeoPoints(records []domain.CaseRecord) []GeoPoint {
	out := make([]GeoPoint, 0, len(records))
	for _, r := range records {
		out = append(out, GeoPoint{
			CaseID:          r.CaseID,
			Latitude:        r.Latitude,
			Longitude:       r.Longitude,
			Severity:        r.Severity,
			AnimalsAffected: r.AnimalsAffected,
			Species:         r.Species,
			Syndrome:        r.Syndrome,
			Region:          r.Region,
			ReportDate:      r.ReportDate.Format(domain.DateLayout),
		})
	}
	return out
}

// Recent returns at most limit records, newest first. Records sharing a date
// keep their input order.
func Recent(records []domain.CaseRecord, limit int) []domain.CaseRecord {
	if limit <= 0 {
		return []domain.CaseRecord{}
	}
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.CaseRecord) int {
		return b.ReportDate.Compare(a.ReportDate)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []domain.CaseRecord{}
	}
	return sorted
}
