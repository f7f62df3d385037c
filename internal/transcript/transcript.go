// Package transcript models coding transcripts and projects genomic positions
// onto a pixel axis, either genomically or with introns collapsed.
package transcript

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID          string // Transcript ID (e.g., ENST00000311936)
	GeneID      string // Parent gene ID
	GeneName    string // Parent gene symbol
	Chrom       string // Chromosome
	Start       int64  // Transcript start (1-based)
	End         int64  // Transcript end (1-based, inclusive)
	Strand      int8   // +1 or -1
	Biotype     string // Transcript biotype
	IsCanonical bool   // Ensembl canonical flag
	Exons       []Exon // Exons in ascending genomic order
	CDSStart    int64  // CDS start (genomic, 1-based), 0 if non-coding
	CDSEnd      int64  // CDS end (genomic, 1-based), 0 if non-coding
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number   int   // Exon number (1-based)
	Start    int64 // Genomic start (1-based)
	End      int64 // Genomic end (1-based, inclusive)
	CDSStart int64 // CDS portion start, 0 if entirely non-coding
	CDSEnd   int64 // CDS portion end, 0 if entirely non-coding
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSStart > 0 && t.CDSEnd > 0
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == -1
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// ContainsCDS returns true if the given position is within the CDS boundaries.
func (t *Transcript) ContainsCDS(pos int64) bool {
	if !t.IsProteinCoding() {
		return false
	}
	return pos >= t.CDSStart && pos <= t.CDSEnd
}

// FindExon returns the exon containing pos, or nil if pos is intronic.
// Exons are kept in ascending order so a plain binary search is enough.
func (t *Transcript) FindExon(pos int64) *Exon {
	lo, hi := 0, len(t.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		switch {
		case pos < e.Start:
			hi = mid - 1
		case pos > e.End:
			lo = mid + 1
		default:
			return e
		}
	}
	return nil
}

// FindNearestExonIdx returns the index of the exon containing pos, or of the
// exon whose boundary is closest to pos when pos is intronic.
func (t *Transcript) FindNearestExonIdx(pos int64) int {
	n := len(t.Exons)
	if n == 0 {
		return -1
	}
	lo, hi := 0, n-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		switch {
		case pos < e.Start:
			hi = mid - 1
		case pos > e.End:
			lo = mid + 1
		default:
			return mid
		}
	}
	if lo >= n {
		return n - 1
	}
	if hi < 0 {
		return 0
	}
	if pos-t.Exons[hi].End <= t.Exons[lo].Start-pos {
		return hi
	}
	return lo
}

// IsCoding returns true if the exon contains coding sequence.
func (e *Exon) IsCoding() bool {
	return e.CDSStart > 0 && e.CDSEnd > 0
}
