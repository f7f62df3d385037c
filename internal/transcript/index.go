package transcript

import (
	"sort"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// Index answers which transcripts cover a genomic position. Each chromosome
// keeps its spans sorted by start with a suffix maximum of ends, so a lookup
// is a binary search plus a scan that stops once no earlier span can reach.
type Index struct {
	chroms map[string]*spans
}

type spans struct {
	byStart []*Transcript
	maxEnd  []int64 // maxEnd[i] = max(End) over byStart[i:]
}

// NewIndex builds an index over ts. Chromosome names are matched with or
// without a "chr" prefix.
func NewIndex(ts []*Transcript) *Index {
	idx := &Index{chroms: make(map[string]*spans)}
	for _, t := range ts {
		chr := variant.NormalizeChr(t.Chrom)
		s := idx.chroms[chr]
		if s == nil {
			s = &spans{}
			idx.chroms[chr] = s
		}
		s.byStart = append(s.byStart, t)
	}

	for _, s := range idx.chroms {
		sort.SliceStable(s.byStart, func(i, j int) bool { return s.byStart[i].Start < s.byStart[j].Start })
		n := len(s.byStart)
		s.maxEnd = make([]int64, n)
		s.maxEnd[n-1] = s.byStart[n-1].End
		for i := n - 2; i >= 0; i-- {
			s.maxEnd[i] = max(s.byStart[i].End, s.maxEnd[i+1])
		}
	}
	return idx
}

// Overlaps returns the transcripts whose [Start, End] contains pos.
func (idx *Index) Overlaps(chr string, pos int64) []*Transcript {
	s := idx.chroms[variant.NormalizeChr(chr)]
	if s == nil {
		return nil
	}

	hi := sort.Search(len(s.byStart), func(i int) bool { return s.byStart[i].Start > pos })

	var out []*Transcript
	for i := hi - 1; i >= 0; i-- {
		if s.maxEnd[i] < pos {
			break
		}
		if s.byStart[i].End >= pos {
			out = append(out, s.byStart[i])
		}
	}
	return out
}

// GeneAt returns the gene of the best transcript covering pos: canonical
// first, then protein coding, then the smallest gene name for determinism.
// Empty if no transcript covers pos.
func (idx *Index) GeneAt(chr string, pos int64) string {
	best := ""
	bestRank := -1
	for _, t := range idx.Overlaps(chr, pos) {
		if t.GeneName == "" {
			continue
		}
		rank := 0
		if t.IsCanonical {
			rank += 2
		}
		if t.IsProteinCoding() {
			rank++
		}
		if rank > bestRank || (rank == bestRank && t.GeneName < best) {
			best, bestRank = t.GeneName, rank
		}
	}
	return best
}

// AssignGenes fills in the gene of records that have none. It returns the
// number of records assigned.
func (idx *Index) AssignGenes(records []variant.Record) int {
	n := 0
	for i := range records {
		r := &records[i]
		if r.Gene != "" || !r.HasPosition() {
			continue
		}
		if g := idx.GeneAt(r.Chr, r.Pos); g != "" {
			r.Gene = g
			n++
		}
	}
	return n
}
