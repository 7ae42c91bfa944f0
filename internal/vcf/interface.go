// Package vcf provides VCF file parsing functionality.
package vcf

// VariantParser is the interface for parsers that read variants.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// SliceParser serves variants from memory. It is useful for tests and for
// callers that have already materialized records from another reader.
type SliceParser struct {
	variants []*Variant
	next     int
}

// NewSliceParser returns a parser over the given variants.
func NewSliceParser(variants []*Variant) *SliceParser {
	return &SliceParser{variants: variants}
}

// Next returns the next variant, or nil, nil when exhausted.
func (p *SliceParser) Next() (*Variant, error) {
	if p.next >= len(p.variants) {
		return nil, nil
	}
	v := p.variants[p.next]
	p.next++
	return v, nil
}

// Close is a no-op.
func (p *SliceParser) Close() error { return nil }

// LineNumber returns the number of variants served so far.
func (p *SliceParser) LineNumber() int { return p.next }
