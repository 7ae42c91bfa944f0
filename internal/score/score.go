// Package score computes per-locus confusion counts and classification metrics.
package score

import (
	"math"
	"sort"

	"github.com/inodb/vibe-assess/internal/classify"
	"github.com/inodb/vibe-assess/internal/panel"
)

// Counts is the 2x2 outcome of using "variant present" to predict group 1.
type Counts struct {
	TP int // group 1, present
	TN int // group 0, absent
	FP int // group 0, present
	FN int // group 1, absent
}

// Total returns the number of samples counted.
func (c Counts) Total() int {
	return c.TP + c.TN + c.FP + c.FN
}

// Sensitivity returns TP/(TP+FN), or NaN when there are no group 1 samples.
func (c Counts) Sensitivity() float64 {
	return ratio(c.TP, c.TP+c.FN)
}

// Specificity returns TN/(TN+FP), or NaN when there are no group 0 samples.
func (c Counts) Specificity() float64 {
	return ratio(c.TN, c.TN+c.FP)
}

// Accuracy returns (TP+TN)/total, or NaN when no samples were counted.
func (c Counts) Accuracy() float64 {
	return ratio(c.TP+c.TN, c.Total())
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

// Row is the scored result for one locus.
type Row struct {
	Panel       string
	PanelIndex  int
	Chrom       string
	Start       int64
	End         int64
	Annotation  string
	Counts      Counts
	Sensitivity float64
	Specificity float64
	Accuracy    float64
}

// Tally classifies every sample against one region.
func Tally(r *panel.Region, groups []int) Counts {
	var c Counts
	for idx, group := range groups {
		present := r.HasSample(idx)
		switch {
		case present && group == classify.Group1:
			c.TP++
		case present:
			c.FP++
		case group == classify.Group1:
			c.FN++
		default:
			c.TN++
		}
	}
	return c
}

// Score computes one row per registered locus. Rows are ordered by panel
// input order, then chromosome, start, end and annotation.
func Score(panels []*panel.Panel, reg *classify.Registry, groups []int) []Row {
	loci := reg.All(panels)
	rows := make([]Row, 0, len(loci))
	for _, l := range loci {
		c := Tally(l.Region, groups)
		rows = append(rows, Row{
			Panel:       l.Panel.Name,
			PanelIndex:  l.Panel.Index,
			Chrom:       l.Region.Chrom,
			Start:       l.Region.Start,
			End:         l.Region.End,
			Annotation:  l.Region.Annotation,
			Counts:      c,
			Sensitivity: c.Sensitivity(),
			Specificity: c.Specificity(),
			Accuracy:    c.Accuracy(),
		})
	}
	Sort(rows)
	return rows
}

// Sort orders rows by panel, chromosome, start, end and annotation.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.PanelIndex != b.PanelIndex {
			return a.PanelIndex < b.PanelIndex
		}
		if c := panel.CompareChrom(a.Chrom, b.Chrom); c != 0 {
			return c < 0
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Annotation < b.Annotation
	})
}

// PanelSummary describes the scored loci of one panel.
type PanelSummary struct {
	Panel string
	Loci  int
	Best  *Row // highest accuracy, first in row order on ties; nil if no rows
}

// Summarize groups rows by panel, keeping every panel in input order.
func Summarize(panels []*panel.Panel, rows []Row) []PanelSummary {
	summaries := make([]PanelSummary, len(panels))
	for i, p := range panels {
		summaries[i].Panel = p.Name
	}
	for i := range rows {
		row := &rows[i]
		s := &summaries[row.PanelIndex]
		s.Loci++
		if math.IsNaN(row.Accuracy) {
			continue
		}
		if s.Best == nil || row.Accuracy > s.Best.Accuracy {
			s.Best = row
		}
	}
	return summaries
}
