package classify

import (
	"sync"

	"github.com/inodb/vibe-assess/internal/panel"
)

// Locus is a panel region that received at least one hit.
type Locus struct {
	Panel  *panel.Panel
	Region *panel.Region
}

// Registry records, per panel, the regions that were hit. Each region is
// registered once however many samples hit it. Safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	seen  []map[*panel.Region]struct{}
	order [][]*panel.Region
}

// NewRegistry creates a registry for n panels.
func NewRegistry(n int) *Registry {
	reg := &Registry{
		seen:  make([]map[*panel.Region]struct{}, n),
		order: make([][]*panel.Region, n),
	}
	for i := range reg.seen {
		reg.seen[i] = make(map[*panel.Region]struct{})
	}
	return reg
}

// Add registers r under panel pdx and reports whether it was new.
func (reg *Registry) Add(pdx int, r *panel.Region) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.seen[pdx][r]; ok {
		return false
	}
	reg.seen[pdx][r] = struct{}{}
	reg.order[pdx] = append(reg.order[pdx], r)
	return true
}

// Loci returns the regions registered for panel pdx in discovery order.
func (reg *Registry) Loci(pdx int) []*panel.Region {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return append([]*panel.Region(nil), reg.order[pdx]...)
}

// Len returns the total number of registered loci across panels.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	n := 0
	for _, loci := range reg.order {
		n += len(loci)
	}
	return n
}

// All returns every locus, panel by panel in input order.
func (reg *Registry) All(panels []*panel.Panel) []Locus {
	var loci []Locus
	for pdx, p := range panels {
		for _, r := range reg.Loci(pdx) {
			loci = append(loci, Locus{Panel: p, Region: r})
		}
	}
	return loci
}
