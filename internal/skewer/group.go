package skewer

import (
	"math"
	"sort"
	"strconv"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// Regime is the grouping resolution chosen for one render pass.
type Regime int

const (
	RegimeBase  Regime = iota // one group per pixel coordinate
	RegimeCodon               // one group per codon, near codons merged
	RegimeBin                 // fixed-width pixel bins
)

func (r Regime) String() string {
	switch r {
	case RegimeBase:
		return "base"
	case RegimeCodon:
		return "codon"
	case RegimeBin:
		return "bin"
	default:
		return "regime" + strconv.Itoa(int(r))
	}
}

// selectRegime picks the regime once per pass.
func selectRegime(view View) Regime {
	switch {
	case view.PixelsPerBase >= PerBaseThreshold:
		return RegimeBase
	case view.Coding != nil:
		return RegimeCodon
	default:
		return RegimeBin
	}
}

// PositionGroup is a set of records drawn at one x coordinate.
type PositionGroup struct {
	Key     string // chr.pos of the representative record
	Chr     string
	Pos     int64
	AAPos   int64 // codon index, codon regime only
	Members []int // indices into the record slice
	X0      float64

	// Set by the skewer pipeline.
	Discs       []*Disc
	Occurrence  int
	MaxRadius   float64
	MaxRimWidth float64
	Width       float64
}

// DropReport counts records excluded from layout, by reason.
type DropReport struct {
	ChrPos    int `json:"chr_pos"`    // missing chromosome or position
	Codon     int `json:"codon"`      // no codon in protein display
	NotCoding int `json:"not_coding"` // outside the coding region
	OutOfView int `json:"out_of_view"`
	UnknownDT int `json:"unknown_dt"` // members of groups with an unknown data type
}

// Reported returns the number of drops surfaced to the user. Records that
// are simply off screen or outside the coding region are not counted.
func (d DropReport) Reported() int {
	return d.ChrPos + d.Codon + d.UnknownDT
}

// Grouping is the result of Group. X and Accepted are parallel to the
// record slice.
type Grouping struct {
	Regime   Regime
	Groups   []*PositionGroup
	X        []float64 // resolved x, NaN if the record was never projected
	Accepted []bool    // record is a member of exactly one group
	Dropped  DropReport
	Unmapped []int // records dropped for lack of a codon
}

// Group resolves every record to an x coordinate and groups the records by
// the regime the view calls for. Groups are ordered by x, ties by first
// appearance. Identical input always yields identical output.
func Group(records []variant.Record, view View, proj Projector) *Grouping {
	g := &Grouping{
		Regime:   selectRegime(view),
		X:        make([]float64, len(records)),
		Accepted: make([]bool, len(records)),
	}

	idx := make([]int, 0, len(records))
	for i := range records {
		r := &records[i]
		g.X[i] = math.NaN()
		if r.Chr == "" || !r.HasPosition() {
			g.Dropped.ChrPos++
			continue
		}
		if view.Coding != nil && !view.Coding.InCoding(r.Pos) {
			g.Dropped.NotCoding++
			continue
		}
		x, ok := project(proj, r, view.Width)
		if !ok {
			g.Dropped.OutOfView++
			continue
		}
		g.X[i] = x
		idx = append(idx, i)
	}

	switch g.Regime {
	case RegimeBase:
		g.Groups = groupByPixel(records, idx, g.X)
	case RegimeCodon:
		g.Groups, g.Unmapped = groupByCodon(records, idx, g.X, view)
		g.Dropped.Codon = len(g.Unmapped)
	default:
		g.Groups = groupByBin(records, idx, g.X)
	}

	seen := make(map[string]int, len(g.Groups))
	for _, pg := range g.Groups {
		// Keys must stay unique for fold state.
		if n := seen[pg.Key]; n > 0 {
			seen[pg.Key] = n + 1
			pg.Key += "#" + strconv.Itoa(n)
		} else {
			seen[pg.Key] = 1
		}
		for _, m := range pg.Members {
			g.Accepted[m] = true
		}
	}
	return g
}

// project returns the first hit that lands in [-1, width+1].
func project(proj Projector, r *variant.Record, width float64) (float64, bool) {
	for _, h := range proj.SeekCoord(r.Chr, r.Pos) {
		if h.X >= -1 && h.X <= width+1 {
			return h.X, true
		}
	}
	return 0, false
}

func groupKey(r *variant.Record) string {
	return r.NormalizeChr() + "." + strconv.FormatInt(r.Pos, 10)
}

func newGroup(records []variant.Record, first int, x float64) *PositionGroup {
	r := &records[first]
	return &PositionGroup{
		Key:     groupKey(r),
		Chr:     r.Chr,
		Pos:     r.Pos,
		Members: []int{first},
		X0:      x,
	}
}

// orderedBins keeps groups in insertion order so that ties after sorting
// resolve by first appearance, never by map iteration.
type orderedBins[K comparable] struct {
	index  map[K]*PositionGroup
	groups []*PositionGroup
}

func newOrderedBins[K comparable]() *orderedBins[K] {
	return &orderedBins[K]{index: make(map[K]*PositionGroup)}
}

func (b *orderedBins[K]) add(k K, records []variant.Record, i int, x float64) *PositionGroup {
	if pg, ok := b.index[k]; ok {
		pg.Members = append(pg.Members, i)
		return pg
	}
	pg := newGroup(records, i, x)
	b.index[k] = pg
	b.groups = append(b.groups, pg)
	return pg
}

func sortByX(groups []*PositionGroup) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].X0 < groups[j].X0 })
}

func groupByPixel(records []variant.Record, idx []int, xs []float64) []*PositionGroup {
	bins := newOrderedBins[float64]()
	for _, i := range idx {
		bins.add(xs[i], records, i, xs[i])
	}
	sortByX(bins.groups)
	return bins.groups
}

func groupByCodon(records []variant.Record, idx []int, xs []float64, view View) ([]*PositionGroup, []int) {
	bins := newOrderedBins[int64]()
	var unmapped []int
	for _, i := range idx {
		r := &records[i]
		aa := r.AAPos
		if aa <= 0 {
			var ok bool
			if aa, ok = view.Coding.CodonIndex(r.Pos); !ok {
				unmapped = append(unmapped, i)
				continue
			}
		}
		pg := bins.add(aa, records, i, xs[i])
		pg.AAPos = aa
	}
	groups := bins.groups
	sortByX(groups)
	if len(groups) == 0 {
		return groups, unmapped
	}

	// Symbolic intron coordinates can put one codon at slightly different x.
	tol := view.PixelsPerBase * CodonMergeFactor
	merged := groups[:1]
	cur := groups[0]
	for _, pg := range groups[1:] {
		if pg.X0-cur.X0 <= tol {
			cur.Members = append(cur.Members, pg.Members...)
			continue
		}
		merged = append(merged, pg)
		cur = pg
	}
	return merged, unmapped
}

func groupByBin(records []variant.Record, idx []int, xs []float64) []*PositionGroup {
	bins := newOrderedBins[int64]()
	for _, i := range idx {
		bins.add(int64(math.Floor(xs[i]/PixelBinWidth)), records, i, xs[i])
	}
	for _, pg := range bins.groups {
		var sum float64
		for _, m := range pg.Members {
			sum += xs[m]
		}
		pg.X0 = sum / float64(len(pg.Members))
	}
	sortByX(bins.groups)
	return bins.groups
}

// shift moves every resolved coordinate by dx.
func (g *Grouping) shift(dx float64) {
	for i := range g.X {
		g.X[i] += dx
	}
	for _, pg := range g.Groups {
		pg.X0 += dx
	}
}
