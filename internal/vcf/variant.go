// Package vcf reads variant records from VCF files.
package vcf

// Variant represents a single data line of a VCF file.
type Variant struct {
	Chrom   string            // Chromosome name (e.g., "12", "chr12")
	Pos     int64             // 1-based genomic position
	ID      string            // Variant identifier, "." if absent
	Ref     string            // Reference allele
	Alts    []string          // Alternate alleles
	Qual    float64           // Quality score
	Filter  string            // Filter status (PASS or filter name)
	Info    map[string]string // INFO key-value pairs; flags map to ""
	Format  []string          // FORMAT keys
	Samples [][]string        // per-sample values in FORMAT order
}

// HasFlag returns true if the INFO field carries key, with or without a value.
func (v *Variant) HasFlag(key string) bool {
	_, ok := v.Info[key]
	return ok
}

// SampleValue returns the FORMAT value of key for the sample at index i.
func (v *Variant) SampleValue(i int, key string) (string, bool) {
	if i < 0 || i >= len(v.Samples) {
		return "", false
	}
	for k, f := range v.Format {
		if f == key {
			if k < len(v.Samples[i]) {
				return v.Samples[i][k], true
			}
			return "", false
		}
	}
	return "", false
}
