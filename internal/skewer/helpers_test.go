package skewer

import (
	"github.com/inodb/vibe-skewer/internal/variant"
)

// pixelProjector places position p at x = p * scale on any chromosome.
type pixelProjector struct {
	scale float64
}

func (p pixelProjector) SeekCoord(_ string, pos int64) []Hit {
	return []Hit{{X: float64(pos) * p.scale}}
}

// mapProjector places positions at fixed x values.
type mapProjector map[int64]float64

func (p mapProjector) SeekCoord(_ string, pos int64) []Hit {
	x, ok := p[pos]
	if !ok {
		return nil
	}
	return []Hit{{X: x}}
}

// codonTable treats [lo, hi] as coding with three bases per codon, except
// positions listed in gaps.
type codonTable struct {
	lo, hi int64
	gaps   map[int64]bool
}

func (c codonTable) InCoding(pos int64) bool {
	return pos >= c.lo && pos <= c.hi
}

func (c codonTable) CodonIndex(pos int64) (int64, bool) {
	if !c.InCoding(pos) || c.gaps[pos] {
		return 0, false
	}
	return (pos-c.lo)/3 + 1, true
}

func snv(id string, pos int64, class, name string, occ int) variant.Record {
	return variant.Record{
		ID: id, Chr: "1", Pos: pos, DT: variant.DTSNVIndel,
		Class: class, Name: name, Occurrence: occ,
	}
}
