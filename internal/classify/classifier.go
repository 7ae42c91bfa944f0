package classify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-assess/internal/panel"
	"github.com/inodb/vibe-assess/internal/vcf"
)

// SampleStats summarizes one sample's pass over its variants.
type SampleStats struct {
	Sample     Sample
	Variants   int   // records read
	Considered int   // indels checked against the panels
	Insertions int   // considered indels lengthening the reference
	Deletions  int   // considered indels shortening the reference
	Filtered   int   // records dropped by pass-only filtering
	Found      []int // per panel, indels hitting at least one region
}

// VariantError reports a record lacking the alleles needed for classification.
type VariantError struct {
	Path    string
	Line    int
	Message string
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant error in %s at line %d: %s", e.Path, e.Line, e.Message)
}

// Classifier records which samples carry indels inside each panel region.
type Classifier struct {
	panels   []*panel.Panel
	passOnly bool
	registry *Registry
	logger   *zap.Logger
}

// NewClassifier creates a classifier over the given panels.
func NewClassifier(panels []*panel.Panel, passOnly bool) *Classifier {
	for _, p := range panels {
		p.Build()
	}
	return &Classifier{
		panels:   panels,
		passOnly: passOnly,
		registry: NewRegistry(len(panels)),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and debug messages.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Registry returns the loci discovered so far.
func (c *Classifier) Registry() *Registry {
	return c.registry
}

// Classify reads every variant from p and records sample s on each region
// containing a qualifying indel. Substitutions are ignored without being
// counted as considered or filtered.
func (c *Classifier) Classify(s Sample, p vcf.VariantParser) (SampleStats, error) {
	stats := SampleStats{Sample: s, Found: make([]int, len(c.panels))}

	c.logger.Info("processing sample",
		zap.String("vcf", s.Path),
		zap.String("name", s.Name),
		zap.Int("group", s.Group))

	for {
		v, err := p.Next()
		if err != nil {
			return stats, fmt.Errorf("read variant from %s: %w", s.Path, err)
		}
		if v == nil {
			break
		}
		stats.Variants++

		if c.passOnly && !v.IsPass() {
			stats.Filtered++
			continue
		}

		if err := checkAlleles(v); err != nil {
			return stats, &VariantError{Path: s.Path, Line: p.LineNumber(), Message: err.Error()}
		}

		if !v.IsIndel() {
			continue
		}
		stats.Considered++
		if v.IsInsertion() {
			stats.Insertions++
		} else if v.IsDeletion() {
			stats.Deletions++
		}

		for pdx, pan := range c.panels {
			regions := pan.Find(v.Chrom, v.Pos)
			if len(regions) == 0 {
				continue
			}
			stats.Found[pdx]++
			for _, r := range regions {
				c.logger.Debug("hit",
					zap.String("sample", s.Name),
					zap.String("panel", pan.Name),
					zap.Stringer("region", r),
					zap.Int64("pos", v.Pos))
				r.AddSample(s.Index)
				c.registry.Add(pdx, r)
			}
		}
	}

	c.logger.Info("processed sample",
		zap.String("vcf", s.Path),
		zap.String("name", s.Name),
		zap.Int("considered", stats.Considered),
		zap.Int("insertions", stats.Insertions),
		zap.Int("deletions", stats.Deletions),
		zap.Int("filtered", stats.Filtered),
		zap.Ints("found", stats.Found))

	return stats, nil
}

func checkAlleles(v *vcf.Variant) error {
	if v.Ref == "" || v.Ref == "." {
		return fmt.Errorf("missing REF at %s:%d", v.Chrom, v.Pos)
	}
	if alt := v.FirstAlt(); alt == "" || alt == "." {
		return fmt.Errorf("missing ALT at %s:%d", v.Chrom, v.Pos)
	}
	return nil
}
