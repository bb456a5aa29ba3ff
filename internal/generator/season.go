package generator

import (
	"slices"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
)

// Season selects the syndrome weight set for a report month.
type Season int

const (
	SeasonShoulder Season = iota
	SeasonDry
	SeasonWet
)

func (s Season) String() string {
	switch s {
	case SeasonDry:
		return "dry"
	case SeasonWet:
		return "wet"
	default:
		return "shoulder"
	}
}

var defaultCatalog = domain.DefaultCatalog()

// SeasonFor classifies a month using the default Kenyan calendar:
// June to August dry, March to May plus November wet, everything else shoulder.
func SeasonFor(m time.Month) Season {
	return seasonOf(defaultCatalog, m)
}

func seasonOf(c domain.Catalog, m time.Month) Season {
	switch {
	case slices.Contains(c.DryMonths, m):
		return SeasonDry
	case slices.Contains(c.WetMonths, m):
		return SeasonWet
	default:
		return SeasonShoulder
	}
}

// recency buckets the days elapsed between a report and the end of the window.
type recency int

const (
	recencyFresh recency = iota
	recencyRecent
	recencyStale
)

func (r recency) String() string {
	return [...]string{"fresh", "recent", "stale"}[r]
}

func (g *Generator) recencyOf(daysAgo int) recency {
	switch {
	case daysAgo < g.catalog.FreshDays:
		return recencyFresh
	case daysAgo < g.catalog.RecentDays:
		return recencyRecent
	default:
		return recencyStale
	}
}
