// Package weighted draws from fixed categorical distributions.
//
// A [Table] stores the cumulative weights of its categories normalised to 1.
// Each draw takes one uniform variate in [0, 1) and binary-searches the
// cumulative table, so every weighted field of a generated record (species,
// syndrome, severity, status) is sampled the same way.
package weighted

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
)

// Table is an immutable categorical distribution over items.
type Table[T any] struct {
	items []T
	cum   []float64
}

// New builds a table from items and their weights. Weights need not sum to 1
// but must be finite, non-negative, have a positive total, and match items
// one-for-one. Violations wrap domain.ErrInvalidGenerationRequest.
func New[T any](items []T, weights []float64) (*Table[T], error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: weight table has no categories", domain.ErrInvalidGenerationRequest)
	}
	if len(items) != len(weights) {
		return nil, fmt.Errorf("%w: %d weights for %d categories",
			domain.ErrInvalidGenerationRequest, len(weights), len(items))
	}

	var total float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, fmt.Errorf("%w: weight %d is %v", domain.ErrInvalidGenerationRequest, i, w)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: weights sum to zero", domain.ErrInvalidGenerationRequest)
	}

	cum := make([]float64, len(weights))
	var running float64
	for i, w := range weights {
		running += w
		cum[i] = running / total
	}
	// Guard against rounding leaving the last bound just under 1.
	cum[len(cum)-1] = 1

	return &Table[T]{items: slices.Clone(items), cum: cum}, nil
}

// Pick draws one item using a single uniform variate from r.
func (t *Table[T]) Pick(r *rand.Rand) T {
	return t.items[t.index(r.Float64())]
}

// index maps u in [0, 1) to the category whose half-open interval
// [cum[i-1], cum[i]) contains it. Zero-weight categories are never selected.
func (t *Table[T]) index(u float64) int {
	i := sort.Search(len(t.cum), func(i int) bool { return t.cum[i] > u })
	if i >= len(t.cum) {
		return len(t.cum) - 1
	}
	return i
}

// Probability returns the normalised weight of the i-th item.
func (t *Table[T]) Probability(i int) float64 {
	if i == 0 {
		return t.cum[0]
	}
	return t.cum[i] - t.cum[i-1]
}

// Len returns the number of categories.
func (t *Table[T]) Len() int { return len(t.items) }

// Items returns a copy of the categories in table order.
func (t *Table[T]) Items() []T { return slices.Clone(t.items) }
