package skewer

import (
	"math"
	"sort"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// FoldState is the per-group state kept by a Session across passes.
type FoldState struct {
	// Unfolded is the outcome of the last pass.
	Unfolded bool

	// Pinned is set by an explicit toggle and overrides ranking. PinOpen is
	// the toggled direction; passes never write either field.
	Pinned  bool
	PinOpen bool
	FoldY   float64
}

// settle splits groups into the expand and fold sets. Out-of-view groups
// always fold. A non-empty highlight set expands exactly the in-view groups
// holding a highlighted record. Otherwise all groups expand when they fit;
// when they do not, pinned groups come first, then groups that were
// unfolded in the previous pass, then the rest by rank, while the running
// width stays under the expand budget. A group pinned closed folds even
// when everything fits.
func (s *Session) settle(groups []*PositionGroup, records []variant.Record, view View) (expand, fold []*PositionGroup) {
	var inView []*PositionGroup
	var total float64
	for _, g := range groups {
		if view.inView(g.X0) {
			inView = append(inView, g)
			total += g.Width
		} else {
			fold = append(fold, g)
		}
	}

	if len(s.highlight) > 0 {
		for _, g := range inView {
			if s.highlighted(g, records) {
				expand = append(expand, g)
			} else {
				fold = append(fold, g)
			}
		}
		return s.commit(expand, fold)
	}

	if total <= view.Width {
		for _, g := range inView {
			if st := s.fold[g.Key]; st != nil && st.Pinned && !st.PinOpen {
				fold = append(fold, g)
			} else {
				expand = append(expand, g)
			}
		}
		return s.commit(expand, fold)
	}

	ranked := make([]*PositionGroup, len(inView))
	copy(ranked, inView)
	centre := view.Width / 2
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Occurrence != b.Occurrence {
			return a.Occurrence > b.Occurrence
		}
		if len(a.Discs) != len(b.Discs) {
			return len(a.Discs) > len(b.Discs)
		}
		da, db := math.Abs(a.X0-centre), math.Abs(b.X0-centre)
		if da != db {
			return da < db
		}
		return a.X0 < b.X0
	})

	var pinned, sticky, rest []*PositionGroup
	for _, g := range ranked {
		st := s.fold[g.Key]
		switch {
		case st == nil:
			rest = append(rest, g)
		case st.Pinned && st.PinOpen:
			pinned = append(pinned, g)
		case st.Pinned:
			fold = append(fold, g)
		case st.Unfolded:
			sticky = append(sticky, g)
		default:
			rest = append(rest, g)
		}
	}

	var used float64
	for _, g := range pinned {
		if used+g.Width <= view.Width {
			expand = append(expand, g)
			used += g.Width
		} else {
			fold = append(fold, g)
		}
	}
	budget := view.Width * s.cfg.ExpandBudget
	for _, g := range append(sticky, rest...) {
		if used+g.Width < budget {
			expand = append(expand, g)
			used += g.Width
		} else {
			fold = append(fold, g)
		}
	}
	return s.commit(expand, fold)
}

// commit records the outcome in the fold state and returns both sets in
// x order. Pins are left alone so forced folds do not outlive their pass.
func (s *Session) commit(expand, fold []*PositionGroup) ([]*PositionGroup, []*PositionGroup) {
	for _, g := range expand {
		s.state(g.Key).Unfolded = true
	}
	for _, g := range fold {
		s.state(g.Key).Unfolded = false
	}
	sortByX(expand)
	sortByX(fold)
	return expand, fold
}

func (s *Session) highlighted(g *PositionGroup, records []variant.Record) bool {
	for _, m := range g.Members {
		if _, ok := s.highlight[records[m].ID]; ok {
			return true
		}
	}
	return false
}

func (s *Session) state(key string) *FoldState {
	st, ok := s.fold[key]
	if !ok {
		st = &FoldState{}
		s.fold[key] = st
	}
	return st
}

// foldScale maps group occurrence linearly onto [baseline, stemLength -
// maxRadius]. The upper bound never drops below the baseline.
type foldScale struct {
	lo, hi   int
	base, up float64
}

func newFoldScale(groups []*PositionGroup, cfg Config) foldScale {
	fs := foldScale{base: cfg.FoldBaseline, up: cfg.FoldBaseline}
	var maxRadius float64
	for i, g := range groups {
		if i == 0 || g.Occurrence < fs.lo {
			fs.lo = g.Occurrence
		}
		if g.Occurrence > fs.hi {
			fs.hi = g.Occurrence
		}
		maxRadius = max(maxRadius, g.MaxRadius)
	}
	fs.up = max(fs.base, cfg.StemLength()-maxRadius)
	return fs
}

func (fs foldScale) y(occurrence int) float64 {
	if fs.hi <= fs.lo {
		return fs.base
	}
	t := float64(occurrence-fs.lo) / float64(fs.hi-fs.lo)
	return fs.base + t*(fs.up-fs.base)
}
