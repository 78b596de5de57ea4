// Package approval estimates a partner's approval probability for a
// loan, bucketed by credit-score risk bands and backed by a TTL cache.
package approval

import (
	"fmt"
	"sort"
)

// Bucket identifies a credit-score risk band, e.g. "650-749" or "800+".
type Bucket string

// Bands discretizes CIBIL scores into risk buckets. Band edges are a
// configuration input so the bucketing can be tuned without touching
// the estimation algorithm.
type Bands struct {
	edges []int
}

// NewBands builds a band set from the lower edges of each bucket above
// the base band. Edges must be strictly increasing; e.g. edges
// 650, 750, 800 yield buckets <650, 650-749, 750-799, 800+.
func NewBands(edges []int) (Bands, error) {
	if len(edges) == 0 {
		return Bands{}, fmt.Errorf("%w: at least one edge required", ErrInvalidBands)
	}
	if !sort.IntsAreSorted(edges) {
		return Bands{}, fmt.Errorf("%w: edges must be increasing", ErrInvalidBands)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return Bands{}, fmt.Errorf("%w: duplicate edge %d", ErrInvalidBands, edges[i])
		}
	}
	cp := make([]int, len(edges))
	copy(cp, edges)
	return Bands{edges: cp}, nil
}

// DefaultBands returns the standard CIBIL bucketing:
// <650, 650-749, 750-799, 800+.
func DefaultBands() Bands {
	b, _ := NewBands([]int{650, 750, 800})
	return b
}

// Bucket maps a credit score to its risk bucket.
func (b Bands) Bucket(score int) Bucket {
	if score < b.edges[0] {
		return Bucket(fmt.Sprintf("<%d", b.edges[0]))
	}
	for i := 1; i < len(b.edges); i++ {
		if score < b.edges[i] {
			return Bucket(fmt.Sprintf("%d-%d", b.edges[i-1], b.edges[i]-1))
		}
	}
	return Bucket(fmt.Sprintf("%d+", b.edges[len(b.edges)-1]))
}
