// Package generator produces synthetic wildlife surveillance records.
//
// Records are drawn from the weighted tables in a [domain.Catalog]. Output is
// fully determined by the request: the same count, seed, window, prefix and
// reference time always yield the same collection. Case ids carry the 1-based
// generation index; the returned collection is then stably sorted by report
// date, so ids are unique but not chronological.
package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/weighted"
)

const (
	DefaultCount      = 500
	DefaultSeed       = 42
	DefaultWindowDays = 365
	DefaultPrefix     = "WHW"

	// coordNoise is the standard deviation, in degrees, of the jitter added to
	// a region centroid.
	coordNoise = 0.1

	// seedMix derives the second PCG stream word from the seed.
	seedMix = 0x9E3779B97F4A7C15
)

// Request describes one generation run.
type Request struct {
	Count      int
	Seed       uint64
	WindowDays int
	Now        time.Time // reference "today"; the window ends on its calendar date
	Prefix     string
}

// DefaultRequest returns the standard 500-record, one-year request anchored at now.
func DefaultRequest(now time.Time) Request {
	return Request{
		Count:      DefaultCount,
		Seed:       DefaultSeed,
		WindowDays: DefaultWindowDays,
		Now:        now,
		Prefix:     DefaultPrefix,
	}
}

func (r Request) validate() error {
	switch {
	case r.Count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", domain.ErrInvalidGenerationRequest, r.Count)
	case r.WindowDays <= 0:
		return fmt.Errorf("%w: window must be positive, got %d days", domain.ErrInvalidGenerationRequest, r.WindowDays)
	case r.Prefix == "":
		return fmt.Errorf("%w: case id prefix is empty", domain.ErrInvalidGenerationRequest)
	case r.Now.IsZero():
		return fmt.Errorf("%w: reference time is not set", domain.ErrInvalidGenerationRequest)
	}
	return nil
}

// Generator samples records from a validated catalog. It holds no mutable
// state and is safe for concurrent use.
type Generator struct {
	catalog   domain.Catalog
	species   *weighted.Table[string]
	syndromes map[Season]*weighted.Table[string]
	severity  *weighted.Table[domain.Severity]
	status    map[recency]*weighted.Table[domain.Status]
}

// NewWithCatalog builds a generator over c. Malformed weight tables or
// affected-animal ranges return domain.ErrInvalidGenerationRequest.
func NewWithCatalog(c domain.Catalog) (*Generator, error) {
	if len(c.Regions) == 0 {
		return nil, fmt.Errorf("%w: catalog has no regions", domain.ErrInvalidGenerationRequest)
	}
	if c.FreshDays <= 0 || c.RecentDays < c.FreshDays {
		return nil, fmt.Errorf("%w: recency buckets %d/%d days are not increasing",
			domain.ErrInvalidGenerationRequest, c.FreshDays, c.RecentDays)
	}
	for _, s := range domain.Severities {
		rng, ok := c.AffectedRanges[s]
		if !ok || rng.Min < 1 || rng.Max < rng.Min {
			return nil, fmt.Errorf("%w: animals-affected range for %s is %d-%d",
				domain.ErrInvalidGenerationRequest, s, rng.Min, rng.Max)
		}
	}

	g := &Generator{
		catalog:   c,
		syndromes: make(map[Season]*weighted.Table[string], 3),
		status:    make(map[recency]*weighted.Table[domain.Status], 3),
	}

	var err error
	if g.species, err = weighted.New(c.Species, c.SpeciesWeights); err != nil {
		return nil, fmt.Errorf("species table: %w", err)
	}
	if g.severity, err = weighted.New(domain.Severities, c.SeverityWeights); err != nil {
		return nil, fmt.Errorf("severity table: %w", err)
	}

	for season, weights := range map[Season][]float64{
		SeasonDry:      c.SyndromeWeights.Dry,
		SeasonWet:      c.SyndromeWeights.Wet,
		SeasonShoulder: c.SyndromeWeights.Shoulder,
	} {
		t, err := weighted.New(c.Syndromes, weights)
		if err != nil {
			return nil, fmt.Errorf("%s syndrome table: %w", season, err)
		}
		g.syndromes[season] = t
	}

	for bucket, weights := range map[recency][]float64{
		recencyFresh:  c.StatusWeights.Fresh,
		recencyRecent: c.StatusWeights.Recent,
		recencyStale:  c.StatusWeights.Stale,
	} {
		t, err := weighted.New(domain.Statuses, weights)
		if err != nil {
			return nil, fmt.Errorf("%s status table: %w", bucket, err)
		}
		g.status[bucket] = t
	}

	return g, nil
}

var defaultGenerator = sync.OnceValues(func() (*Generator, error) {
	return NewWithCatalog(domain.DefaultCatalog())
})

// Generate draws a collection from the default catalog.
func Generate(req Request) ([]domain.CaseRecord, error) {
	g, err := defaultGenerator()
	if err != nil {
		return nil, err
	}
	return g.Generate(req)
}

// SeverityShares returns the probability of each severity in the default
// catalog.
func SeverityShares() (map[domain.Severity]float64, error) {
	g, err := defaultGenerator()
	if err != nil {
		return nil, err
	}
	return g.SeverityShares(), nil
}

// SeverityShares returns the normalised severity weights the generator draws with.
func (g *Generator) SeverityShares() map[domain.Severity]float64 {
	shares := make(map[domain.Severity]float64, g.severity.Len())
	for i, s := range g.severity.Items() {
		shares[s] = g.severity.Probability(i)
	}
	return shares
}

// Generate draws req.Count records. On error no records are returned.
func (g *Generator) Generate(req Request) ([]domain.CaseRecord, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewPCG(req.Seed, req.Seed^seedMix))
	start := domain.CivilDate(req.Now).AddDate(0, 0, -req.WindowDays)
	year := req.Now.Year()

	records := make([]domain.CaseRecord, req.Count)
	for i := range records {
		region := g.catalog.Regions[r.IntN(len(g.catalog.Regions))]
		lat := region.Lat + r.NormFloat64()*coordNoise
		lon := region.Lon + r.NormFloat64()*coordNoise

		offset := r.IntN(req.WindowDays + 1)
		date := start.AddDate(0, 0, offset)

		species := g.species.Pick(r)
		syndrome := g.syndromes[seasonOf(g.catalog, date.Month())].Pick(r)
		severity := g.severity.Pick(r)
		status := g.status[g.recencyOf(req.WindowDays-offset)].Pick(r)

		span := g.catalog.AffectedRanges[severity]
		affected := span.Min + r.IntN(span.Max-span.Min+1)

		records[i] = domain.CaseRecord{
			CaseID:          fmt.Sprintf("%s-%d-%04d", req.Prefix, year, i+1),
			ReportDate:      date,
			Region:          region.Name,
			Latitude:        round4(lat),
			Longitude:       round4(lon),
			Species:         species,
			Syndrome:        syndrome,
			Severity:        severity,
			Status:          status,
			AnimalsAffected: affected,
		}
	}

	slices.SortStableFunc(records, func(a, b domain.CaseRecord) int {
		return a.ReportDate.Compare(b.ReportDate)
	})
	return records, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
