package panel

import (
	"sort"
	"strconv"

	"github.com/inodb/vibe-assess/internal/vcf"
)

// Panel is a named set of regions indexed by canonical chromosome.
type Panel struct {
	Name       string // source path or label, as given
	Index      int    // position in the input list
	TotalBases int64  // sum of End-Start over all regions
	Skipped    int    // malformed lines skipped while loading

	trees map[string]*IntervalTree
}

// New creates an empty panel.
func New(name string, index int) *Panel {
	return &Panel{
		Name:  name,
		Index: index,
		trees: make(map[string]*IntervalTree),
	}
}

// Add inserts a region, normalizing its chromosome name.
func (p *Panel) Add(r *Region) {
	r.Chrom = vcf.NormalizeChrom(r.Chrom)
	tree, ok := p.trees[r.Chrom]
	if !ok {
		tree = &IntervalTree{}
		p.trees[r.Chrom] = tree
	}
	tree.Insert(r)
	p.TotalBases += r.Len()
}

// Find returns the regions on chrom that contain the 1-based position pos.
func (p *Panel) Find(chrom string, pos int64) []*Region {
	tree, ok := p.trees[vcf.NormalizeChrom(chrom)]
	if !ok {
		return nil
	}
	return tree.FindContaining(pos)
}

// Build finalizes every chromosome tree so that Find is safe for concurrent use.
func (p *Panel) Build() {
	for _, tree := range p.trees {
		tree.Build()
	}
}

// RegionCount returns the total number of regions in the panel.
func (p *Panel) RegionCount() int {
	n := 0
	for _, tree := range p.trees {
		n += tree.Len()
	}
	return n
}

// Regions returns the regions on chrom ordered by start.
func (p *Panel) Regions(chrom string) []*Region {
	tree, ok := p.trees[vcf.NormalizeChrom(chrom)]
	if !ok {
		return nil
	}
	return tree.Regions()
}

// Chromosomes returns the panel's chromosomes in natural order.
func (p *Panel) Chromosomes() []string {
	chroms := make([]string, 0, len(p.trees))
	for chrom := range p.trees {
		chroms = append(chroms, chrom)
	}
	sort.Slice(chroms, func(i, j int) bool {
		return CompareChrom(chroms[i], chroms[j]) < 0
	})
	return chroms
}

// CompareChrom orders chromosome names numerically where both are numbers,
// numbered chromosomes before named ones, and lexically otherwise.
func CompareChrom(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
