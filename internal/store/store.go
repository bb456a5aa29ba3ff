// Package store holds the immutable case collection a dashboard is built from.
//
// A [Store] is created once per snapshot and never modified; every reader gets
// its own copy of the records, so filtering and aggregation cannot disturb the
// shared snapshot. [Cache] memoizes stores for the lifetime of the process.
package store

import (
	"slices"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
)

// Store is a chronologically ordered, read-only case collection.
type Store struct {
	records []domain.CaseRecord
}

// New copies records and stably sorts the copy by report date.
func New(records []domain.CaseRecord) *Store {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.CaseRecord) int {
		return a.ReportDate.Compare(b.ReportDate)
	})
	return &Store{records: sorted}
}

// Records returns a copy of the collection in report-date order.
func (s *Store) Records() []domain.CaseRecord {
	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// DateBounds returns the earliest and latest report dates. ok is false for an
// empty store.
func (s *Store) DateBounds() (first, last time.Time, ok bool) {
	if len(s.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.records[0].ReportDate, s.records[len(s.records)-1].ReportDate, true
}
