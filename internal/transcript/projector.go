package transcript

import (
	"fmt"

	"github.com/inodb/vibe-skewer/internal/skewer"
	"github.com/inodb/vibe-skewer/internal/variant"
)

// LinearProjector maps a genomic region linearly onto [0, Width].
type LinearProjector struct {
	Chr        string
	Start, End int64 // 1-based inclusive
	Width      float64
}

// PixelsPerBase returns the horizontal scale of the region.
func (p *LinearProjector) PixelsPerBase() float64 {
	if p.End < p.Start {
		return 0
	}
	return p.Width / float64(p.End-p.Start+1)
}

// SeekCoord places pos at the centre of its base.
func (p *LinearProjector) SeekCoord(chr string, pos int64) []skewer.Hit {
	if variant.NormalizeChr(chr) != variant.NormalizeChr(p.Chr) || pos < p.Start || pos > p.End {
		return nil
	}
	return []skewer.Hit{{X: (float64(pos-p.Start) + 0.5) * p.PixelsPerBase()}}
}

// CodingProjector lays out the CDS of one transcript with introns collapsed.
// Intronic positions inside the CDS snap to the nearest exon boundary.
type CodingProjector struct {
	coding *Coding
	width  float64
	cdsLen int64
}

// NewCodingProjector builds a projector over the whole CDS of t.
func NewCodingProjector(t *Transcript, width float64) (*CodingProjector, error) {
	c := NewCoding(t)
	if c == nil {
		return nil, fmt.Errorf("transcript %s is not protein coding", t.ID)
	}
	n := CDSLength(t)
	if n == 0 {
		return nil, fmt.Errorf("transcript %s has an empty CDS", t.ID)
	}
	return &CodingProjector{coding: c, width: width, cdsLen: n}, nil
}

// Coding returns the codon lookup backing the projector.
func (p *CodingProjector) Coding() *Coding {
	return p.coding
}

// PixelsPerBase returns the horizontal scale of one coding base.
func (p *CodingProjector) PixelsPerBase() float64 {
	return p.width / float64(p.cdsLen)
}

// SeekCoord maps a genomic position through its CDS coordinate.
func (p *CodingProjector) SeekCoord(chr string, pos int64) []skewer.Hit {
	t := p.coding.t
	if variant.NormalizeChr(chr) != variant.NormalizeChr(t.Chrom) {
		return nil
	}
	c := snapToCDS(pos, t)
	if c == 0 {
		return nil
	}
	return []skewer.Hit{{X: (float64(c) - 0.5) * p.PixelsPerBase()}}
}
