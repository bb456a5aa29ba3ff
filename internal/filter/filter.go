// Package filter narrows a case collection to the records a dashboard view
// should show.
//
// A [Spec] is a conjunction of optional clauses. An absent clause places no
// constraint. For the severity and status sets, nil means absent while a
// non-nil empty set is an explicit choice of nothing and matches no record.
package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
)

// Query parameter names understood by Parse.
const (
	ParamDateFrom = "date_from"
	ParamDateTo   = "date_to"
	ParamRegion   = "region"
	ParamSpecies  = "species"
	ParamSeverity = "severity"
	ParamStatus   = "status"
)

// allValue selects every region or species.
const allValue = "All"

// Spec is a filter specification. The zero value matches every record.
type Spec struct {
	DateFrom   *time.Time // inclusive
	DateTo     *time.Time // inclusive
	Region     *string
	Species    *string
	Severities []domain.Severity
	Statuses   []domain.Status
}

// Parse reads a Spec from query values. Dates must be YYYY-MM-DD. Region and
// species accept "All" or an empty value as unconstrained. Severity and status
// may repeat or be comma-separated; a key present with no values selects the
// empty set. Unknown severity or status names and unparseable dates return
// domain.ErrMalformedFilterSpec. Region and species names are not checked
// against the catalog, so an unknown name simply matches nothing.
func Parse(values url.Values) (Spec, error) {
	var spec Spec
	var err error

	if spec.DateFrom, err = parseDate(values, ParamDateFrom); err != nil {
		return Spec{}, err
	}
	if spec.DateTo, err = parseDate(values, ParamDateTo); err != nil {
		return Spec{}, err
	}
	spec.Region = parseChoice(values, ParamRegion)
	spec.Species = parseChoice(values, ParamSpecies)

	if spec.Severities, err = parseSet(values, ParamSeverity, domain.ParseSeverity); err != nil {
		return Spec{}, err
	}
	if spec.Statuses, err = parseSet(values, ParamStatus, domain.ParseStatus); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func parseDate(values url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrMalformedFilterSpec, key, err)
	}
	return &t, nil
}

func parseChoice(values url.Values, key string) *string {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" || strings.EqualFold(raw, allValue) {
		return nil
	}
	return &raw
}

func parseSet[T comparable](values url.Values, key string, parse func(string) (T, error)) ([]T, error) {
	raw, present := values[key]
	if !present {
		return nil, nil
	}

	set := make([]T, 0, len(raw))
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			item, err := parse(part)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", domain.ErrMalformedFilterSpec, key, err)
			}
			if !slices.Contains(set, item) {
				set = append(set, item)
			}
		}
	}
	return set, nil
}

// Match reports whether r satisfies every clause of the spec.
func (s Spec) Match(r domain.CaseRecord) bool {
	date := domain.CivilDate(r.ReportDate)
	if s.DateFrom != nil && date.Before(domain.CivilDate(*s.DateFrom)) {
		return false
	}
	if s.DateTo != nil && date.After(domain.CivilDate(*s.DateTo)) {
		return false
	}
	if s.Region != nil && r.Region != *s.Region {
		return false
	}
	if s.Species != nil && r.Species != *s.Species {
		return false
	}
	if s.Severities != nil && !slices.Contains(s.Severities, r.Severity) {
		return false
	}
	if s.Statuses != nil && !slices.Contains(s.Statuses, r.Status) {
		return false
	}
	return true
}

// Apply returns the records matching spec in their original order. The input
// slice is never modified. A date_from after date_to yields an empty result.
func Apply(records []domain.CaseRecord, spec Spec) []domain.CaseRecord {
	out := make([]domain.CaseRecord, 0, len(records))
	for _, r := range records {
		if spec.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Values renders the spec as query values that Parse reads back into an
// equal Spec. An explicit empty set is encoded as a key with one empty value.
func (s Spec) Values() url.Values {
	v := url.Values{}
	if s.DateFrom != nil {
		v.Set(ParamDateFrom, s.DateFrom.Format(domain.DateLayout))
	}
	if s.DateTo != nil {
		v.Set(ParamDateTo, s.DateTo.Format(domain.DateLayout))
	}
	if s.Region != nil {
		v.Set(ParamRegion, *s.Region)
	}
	if s.Species != nil {
		v.Set(ParamSpecies, *s.Species)
	}
	setValues(v, ParamSeverity, s.Severities)
	setValues(v, ParamStatus, s.Statuses)
	return v
}

func setValues[T ~string](v url.Values, key string, items []T) {
	if items == nil {
		return
	}
	if len(items) == 0 {
		v.Set(key, "")
		return
	}
	for _, item := range items {
		v.Add(key, string(item))
	}
}

// Key renders the spec in a canonical form: equal specs produce equal keys
// regardless of the order set members were given in. "*" marks an absent
// clause.
func (s Spec) Key() string {
	var b strings.Builder
	writeClause(&b, ParamDateFrom, formatDate(s.DateFrom))
	writeClause(&b, ParamDateTo, formatDate(s.DateTo))
	writeClause(&b, ParamRegion, derefOrAny(s.Region))
	writeClause(&b, ParamSpecies, derefOrAny(s.Species))

	if s.Severities == nil {
		writeClause(&b, ParamSeverity, "*")
	} else {
		sev := slices.Clone(s.Severities)
		slices.SortFunc(sev, func(a, b domain.Severity) int { return a.Rank() - b.Rank() })
		writeClause(&b, ParamSeverity, joinStrings(sev))
	}

	if s.Statuses == nil {
		writeClause(&b, ParamStatus, "*")
	} else {
		st := slices.Clone(s.Statuses)
		slices.SortFunc(st, func(a, b domain.Status) int {
			return slices.Index(domain.Statuses, a) - slices.Index(domain.Statuses, b)
		})
		writeClause(&b, ParamStatus, joinStrings(st))
	}
	return b.String()
}

func writeClause(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(';')
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "*"
	}
	return t.Format(domain.DateLayout)
}

func derefOrAny(s *string) string {
	if s == nil {
		return "*"
	}
	return *s
}

func joinStrings[T ~string](items []T) string {
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}
