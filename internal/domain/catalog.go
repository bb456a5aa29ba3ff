package domain

import (
	"slices"
	"time"
)

// Region is a named surveillance zone with its nominal centroid.
type Region struct {
	Name string
	Lat  float64
	Lon  float64
}

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int
	Max int
}

// Contains reports whether n lies within the range.
func (r IntRange) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// SeasonalWeights holds one syndrome weight set per season.
type SeasonalWeights struct {
	Dry      []float64
	Wet      []float64
	Shoulder []float64
}

// StatusWeights holds one status weight triple per recency bucket, aligned
// with [Statuses].
type StatusWeights struct {
	Fresh  []float64 // fewer than FreshDays since report
	Recent []float64 // fewer than RecentDays since report
	Stale  []float64
}

// Catalog is the full set of category tables the generator draws from.
// Weight slices are aligned index-for-index with their category slices.
type Catalog struct {
	Regions []Region

	Species        []string
	SpeciesWeights []float64

	Syndromes       []string
	SyndromeWeights SeasonalWeights
	DryMonths       []time.Month
	WetMonths       []time.Month

	SeverityWeights []float64 // aligned with Severities

	StatusWeights StatusWeights
	FreshDays     int
	RecentDays    int

	AffectedRanges map[Severity]IntRange
}

// DefaultCatalog returns the Kenya surveillance tables.
func DefaultCatalog() Catalog {
	return Catalog{
		Regions: []Region{
			{Name: "Maasai Mara", Lat: -1.4833, Lon: 35.1333},
			{Name: "Amboseli", Lat: -2.6527, Lon: 37.2606},
			{Name: "Tsavo East", Lat: -2.6857, Lon: 38.7578},
			{Name: "Tsavo West", Lat: -3.0167, Lon: 38.0667},
			{Name: "Samburu", Lat: 0.5833, Lon: 37.5333},
			{Name: "Lake Nakuru", Lat: -0.3667, Lon: 36.0833},
			{Name: "Nairobi NP", Lat: -1.3733, Lon: 36.8581},
			{Name: "Meru", Lat: 0.0500, Lon: 38.1833},
		},

		Species: []string{
			"African Elephant", "Lion", "Zebra", "Giraffe", "Buffalo",
			"Wildebeest", "Hippopotamus", "Rhino", "Cheetah", "Hyena",
		},
		SpeciesWeights: []float64{15, 8, 20, 12, 18, 15, 5, 2, 3, 7},

		Syndromes: []string{
			"Respiratory", "Gastrointestinal", "Neurological", "Dermatological",
			"Musculoskeletal", "Sudden Death", "Reproductive", "Ocular",
		},
		SyndromeWeights: SeasonalWeights{
			Dry:      []float64{25, 15, 10, 15, 10, 10, 5, 10},
			Wet:      []float64{15, 25, 10, 10, 10, 15, 10, 5},
			Shoulder: []float64{15, 15, 15, 15, 10, 15, 10, 5},
		},
		DryMonths: []time.Month{time.June, time.July, time.August},
		WetMonths: []time.Month{time.March, time.April, time.May, time.November},

		SeverityWeights: []float64{40, 35, 20, 5},

		StatusWeights: StatusWeights{
			Fresh:  []float64{60, 20, 20},
			Recent: []float64{30, 50, 20},
			Stale:  []float64{10, 80, 10},
		},
		FreshDays:  14,
		RecentDays: 60,

		AffectedRanges: map[Severity]IntRange{
			SeverityLow:      {Min: 1, Max: 3},
			SeverityModerate: {Min: 1, Max: 5},
			SeverityHigh:     {Min: 3, Max: 10},
			SeverityCritical: {Min: 5, Max: 20},
		},
	}
}

// RegionByName looks up a region in the catalog.
func (c Catalog) RegionByName(name string) (Region, bool) {
	for _, r := range c.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// HasSpecies reports whether name is a catalog species.
func (c Catalog) HasSpecies(name string) bool { return slices.Contains(c.Species, name) }

// HasSyndrome reports whether name is a catalog syndrome.
func (c Catalog) HasSyndrome(name string) bool { return slices.Contains(c.Syndromes, name) }
