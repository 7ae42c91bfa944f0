// Package panel builds per-chromosome interval indexes from region definition files.
package panel

import (
	"fmt"
	"slices"
	"sync"
)

// Region is a half-open genomic interval [Start, End) from a panel file.
// It accumulates the indexes of samples carrying a variant inside it.
type Region struct {
	Chrom      string // canonical chromosome name (no "chr" prefix)
	Start      int64  // inclusive
	End        int64  // exclusive
	Annotation string // optional fourth column, may be empty
	Line       int    // 1-based source line

	mu      sync.Mutex
	samples []int
}

// NewRegion creates a region with an empty sample accumulator.
func NewRegion(chrom string, start, end int64, annotation string) *Region {
	return &Region{Chrom: chrom, Start: start, End: end, Annotation: annotation}
}

// Contains reports whether pos lies in [Start, End).
func (r *Region) Contains(pos int64) bool {
	return pos >= r.Start && pos < r.End
}

// Len returns the number of bases covered by the region.
func (r *Region) Len() int64 {
	return r.End - r.Start
}

// AddSample records a hit by sample idx. A sample hit by several variants is
// recorded once per variant. Reports whether this was the region's first hit.
func (r *Region) AddSample(idx int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, idx)
	return len(r.samples) == 1
}

// Samples returns a copy of the recorded sample indexes in hit order.
func (r *Region) Samples() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.samples)
}

// HasSample reports whether sample idx hit the region at least once.
func (r *Region) HasSample(idx int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.samples, idx)
}

// HitCount returns the number of recorded hits, duplicates included.
func (r *Region) HitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func (r *Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}
