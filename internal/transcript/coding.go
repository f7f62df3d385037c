package transcript

// GenomicToCDS converts a genomic position to a 1-based CDS position.
// Returns 0 if the position is not in the CDS.
func GenomicToCDS(genomicPos int64, t *Transcript) int64 {
	if !t.ContainsCDS(genomicPos) {
		return 0
	}

	var cdsPos int64
	if !t.IsReverseStrand() {
		for _, exon := range t.Exons {
			if !exon.IsCoding() {
				continue
			}
			if genomicPos >= exon.CDSStart && genomicPos <= exon.CDSEnd {
				return cdsPos + genomicPos - exon.CDSStart + 1
			}
			if genomicPos > exon.CDSEnd {
				cdsPos += exon.CDSEnd - exon.CDSStart + 1
			}
		}
		return 0
	}

	for i := len(t.Exons) - 1; i >= 0; i-- {
		exon := t.Exons[i]
		if !exon.IsCoding() {
			continue
		}
		if genomicPos >= exon.CDSStart && genomicPos <= exon.CDSEnd {
			return cdsPos + exon.CDSEnd - genomicPos + 1
		}
		if genomicPos < exon.CDSStart {
			cdsPos += exon.CDSEnd - exon.CDSStart + 1
		}
	}
	return 0
}

// CDSLength returns the number of coding bases in the transcript.
func CDSLength(t *Transcript) int64 {
	var n int64
	for _, e := range t.Exons {
		if e.IsCoding() {
			n += e.CDSEnd - e.CDSStart + 1
		}
	}
	return n
}

// CDSToCodon converts a 1-based CDS position to a 1-based codon index.
func CDSToCodon(cdsPos int64) int64 {
	if cdsPos < 1 {
		return 0
	}
	return (cdsPos-1)/3 + 1
}

// snapToCDS returns the CDS position of pos, or of the nearest coding exon
// boundary when pos falls in an intron inside the CDS span.
func snapToCDS(pos int64, t *Transcript) int64 {
	if c := GenomicToCDS(pos, t); c > 0 {
		return c
	}
	if !t.ContainsCDS(pos) {
		return 0
	}
	idx := t.FindNearestExonIdx(pos)
	if idx < 0 {
		return 0
	}
	e := t.Exons[idx]
	if !e.IsCoding() {
		return 0
	}
	if pos < e.CDSStart {
		return GenomicToCDS(e.CDSStart, t)
	}
	return GenomicToCDS(e.CDSEnd, t)
}

// Coding answers codon queries for one protein-coding transcript.
type Coding struct {
	t *Transcript
}

// NewCoding wraps a transcript for codon lookups. Returns nil if the
// transcript has no CDS.
func NewCoding(t *Transcript) *Coding {
	if t == nil || !t.IsProteinCoding() {
		return nil
	}
	return &Coding{t: t}
}

// Transcript returns the wrapped transcript.
func (c *Coding) Transcript() *Transcript {
	return c.t
}

// InCoding returns true if pos lies within the CDS span.
func (c *Coding) InCoding(pos int64) bool {
	return c.t.ContainsCDS(pos)
}

// CodonIndex returns the 1-based codon covering pos. Intronic positions inside
// the CDS span report the codon at the nearest exon boundary.
func (c *Coding) CodonIndex(pos int64) (int64, bool) {
	cds := snapToCDS(pos, c.t)
	if cds == 0 {
		return 0, false
	}
	return CDSToCodon(cds), true
}
