// Package variant defines the variant records laid out on a skewer track.
package variant

import "strings"

// NoPosition marks a record whose genomic position is unknown.
const NoPosition int64 = 0

// Side identifies which breakpoint of a structural variant or fusion lies in view.
type Side int8

const (
	SideUnknown Side = iota
	Side5           // 5' partner is in view
	Side3           // 3' partner is in view
)

// String returns the prime notation used in disc labels.
func (s Side) String() string {
	switch s {
	case Side5:
		return "5'"
	case Side3:
		return "3'"
	default:
		return "?"
	}
}

// Record is a single variant observation. Multiple records may share a position.
// Records are read-only once loaded; layout attributes live outside the record.
type Record struct {
	ID         string   // Opaque identity key
	Chr        string   // Chromosome (e.g. "12", "chr12")
	Pos        int64    // 1-based genomic position, NoPosition if unknown
	Ref        string   // Reference allele
	Alt        string   // Alternate allele
	DT         DataType // Data type tag
	Class      string   // Mutation class code (e.g. "M" for missense)
	Name       string   // Display name (e.g. "G12C")
	Occurrence int      // Sample count, 0 if unknown
	AAPos      int64    // Codon index, 0 if unknown
	Side       Side     // Breakpoint in view (SV/fusion only)
	Partner    string   // Partner gene name (SV/fusion only)
	Gene       string   // Hugo symbol, used to split tracks
	Rim1       bool     // First rim indicator (e.g. germline)
	Rim2       bool     // Second rim indicator

	// Attrs holds numeric attributes by name (e.g. "vaf", "am_score").
	Attrs map[string]float64
	// Keyed holds nested numeric values, e.g. per-sample values of a field.
	Keyed map[string]map[string]float64
}

// HasPosition returns true if the record carries a usable position.
func (r *Record) HasPosition() bool {
	return r.Pos > NoPosition
}

// NormalizeChr returns the chromosome name without the "chr" prefix.
func (r *Record) NormalizeChr() string {
	return NormalizeChr(r.Chr)
}

// NormalizeChr strips a leading "chr" from a chromosome name.
func NormalizeChr(chr string) string {
	if len(chr) > 3 && strings.EqualFold(chr[:3], "chr") {
		return chr[3:]
	}
	return chr
}

// SetAttr stores a numeric attribute, allocating the map on first use.
func (r *Record) SetAttr(name string, v float64) {
	if r.Attrs == nil {
		r.Attrs = make(map[string]float64)
	}
	r.Attrs[name] = v
}

// SetKeyed stores a nested numeric value under field/key.
func (r *Record) SetKeyed(field, key string, v float64) {
	if r.Keyed == nil {
		r.Keyed = make(map[string]map[string]float64)
	}
	m := r.Keyed[field]
	if m == nil {
		m = make(map[string]float64)
		r.Keyed[field] = m
	}
	m[key] = v
}
