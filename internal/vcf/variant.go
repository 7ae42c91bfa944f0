// Package vcf provides VCF file parsing functionality.
package vcf

import "strings"

// chromPrefix is stripped from chromosome names before indexing or lookup.
const chromPrefix = "chr"

// Variant represents a single record from a VCF file.
type Variant struct {
	Chrom  string // Chromosome name (e.g., "12", "chr12")
	Pos    int64  // 1-based genomic position
	ID     string // Variant identifier (e.g., rs ID)
	Ref    string // Reference allele
	Alt    string // ALT column, possibly comma-separated
	Qual   float64
	Filter string // Filter status (PASS, "." or filter names)
}

// FirstAlt returns the first alternate allele.
func (v *Variant) FirstAlt() string {
	if i := strings.IndexByte(v.Alt, ','); i >= 0 {
		return v.Alt[:i]
	}
	return v.Alt
}

// IsPass reports whether no filter is set on the record.
// Both "PASS" and the missing value "." count as passing.
func (v *Variant) IsPass() bool {
	return v.Filter == "" || v.Filter == "." || v.Filter == "PASS"
}

// IsIndel returns true if the reference and first alternate allele differ in length.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.FirstAlt())
}

// IsInsertion returns true if the variant is an insertion.
func (v *Variant) IsInsertion() bool {
	return len(v.FirstAlt()) > len(v.Ref)
}

// IsDeletion returns true if the variant is a deletion.
func (v *Variant) IsDeletion() bool {
	return len(v.Ref) > len(v.FirstAlt())
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return NormalizeChrom(v.Chrom)
}

// NormalizeChrom strips a leading "chr" from a chromosome name, so that
// "chr7" and "7" share the key "7".
func NormalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, chromPrefix)
}
