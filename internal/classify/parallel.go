package classify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-assess/internal/vcf"
)

// OpenFunc opens the variant source at path.
type OpenFunc func(path string) (vcf.VariantParser, error)

// OpenVCF opens a VCF file (or stdin for "-").
func OpenVCF(path string) (vcf.VariantParser, error) {
	p, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ClassifyAll classifies every sample, opening each source with open.
// With workers <= 1 samples are processed strictly in order; otherwise up to
// workers samples run at once. Stats are returned in sample order.
func (c *Classifier) ClassifyAll(ctx context.Context, samples []Sample, open OpenFunc, workers int) ([]SampleStats, error) {
	if open == nil {
		open = OpenVCF
	}
	stats := make([]SampleStats, len(samples))

	if workers <= 1 {
		for i, s := range samples {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			st, err := c.classifyPath(s, open)
			if err != nil {
				return nil, err
			}
			stats[i] = st
		}
		return stats, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := c.classifyPath(s, open)
			if err != nil {
				return err
			}
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Classifier) classifyPath(s Sample, open OpenFunc) (SampleStats, error) {
	p, err := open(s.Path)
	if err != nil {
		return SampleStats{}, fmt.Errorf("open sample %s: %w", s.Path, err)
	}
	defer p.Close()

	if named, ok := p.(interface{ SampleNames() []string }); ok {
		if columns := named.SampleNames(); len(columns) > 1 {
			c.logger.Warn("multi-sample vcf, genotype columns ignored",
				zap.String("vcf", s.Path),
				zap.Strings("columns", columns))
		}
	}
	return c.Classify(s, p)
}
