package panel

import "sort"

// IntervalTree provides O(log n + k) containment queries using a sorted-slice approach.
// Regions are inserted while a panel loads; the tree is rebuilt lazily on the
// next query. Queries are safe for concurrent use once the tree is built.
type IntervalTree struct {
	regions []*Region
	maxEnd  []int64 // maxEnd[i] = max(End) for regions[:i+1]
	dirty   bool
}

// BuildIntervalTree creates an interval tree from a slice of regions.
func BuildIntervalTree(regions []*Region) *IntervalTree {
	t := &IntervalTree{regions: append([]*Region(nil), regions...), dirty: true}
	t.Build()
	return t
}

// Insert adds a region. Duplicates and overlaps are kept as distinct entries.
func (t *IntervalTree) Insert(r *Region) {
	t.regions = append(t.regions, r)
	t.dirty = true
}

// Len returns the number of regions in the tree.
func (t *IntervalTree) Len() int {
	return len(t.regions)
}

// Regions returns the regions ordered by start position.
func (t *IntervalTree) Regions() []*Region {
	t.Build()
	return t.regions
}

// Build sorts the regions and computes the prefix-max end array.
func (t *IntervalTree) Build() {
	if !t.dirty {
		return
	}
	t.dirty = false
	if len(t.regions) == 0 {
		t.maxEnd = nil
		return
	}

	sort.SliceStable(t.regions, func(i, j int) bool {
		return t.regions[i].Start < t.regions[j].Start
	})

	// maxEnd[i] = max(end) for regions[:i+1]
	t.maxEnd = make([]int64, len(t.regions))
	t.maxEnd[0] = t.regions[0].End
	for i := 1; i < len(t.regions); i++ {
		t.maxEnd[i] = t.regions[i].End
		if t.maxEnd[i-1] > t.maxEnd[i] {
			t.maxEnd[i] = t.maxEnd[i-1]
		}
	}
}

// FindContaining returns all regions whose [Start, End) range contains pos.
func (t *IntervalTree) FindContaining(pos int64) []*Region {
	t.Build()
	if len(t.regions) == 0 {
		return nil
	}

	// hi is the first index with start > pos; candidates are [0, hi).
	hi := sort.Search(len(t.regions), func(i int) bool {
		return t.regions[i].Start > pos
	})

	var result []*Region
	for i := hi - 1; i >= 0; i-- {
		// No region in [0, i] ends after pos.
		if t.maxEnd[i] <= pos {
			break
		}
		if t.regions[i].End > pos {
			result = append(result, t.regions[i])
		}
	}

	return result
}

// Overlapping returns each region that overlaps an earlier region in start order.
func (t *IntervalTree) Overlapping() []*Region {
	t.Build()
	var result []*Region
	for i := 1; i < len(t.regions); i++ {
		if t.regions[i].Start < t.maxEnd[i-1] {
			result = append(result, t.regions[i])
		}
	}
	return result
}
