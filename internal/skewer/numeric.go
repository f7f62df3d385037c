package skewer

import (
	"math"
	"sort"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// ValueSource resolves the value a record is drawn at in numeric mode.
type ValueSource interface {
	Value(r *variant.Record) (float64, bool)
	String() string
}

// AttrValue reads a named numeric attribute.
type AttrValue struct {
	Name string
}

func (a AttrValue) Value(r *variant.Record) (float64, bool) {
	v, ok := r.Attrs[a.Name]
	return v, ok
}

func (a AttrValue) String() string { return a.Name }

// KeyedValue reads a nested value, e.g. one sample's value of a field.
type KeyedValue struct {
	Field string
	Key   string
}

func (k KeyedValue) Value(r *variant.Record) (float64, bool) {
	v, ok := r.Keyed[k.Field][k.Key]
	return v, ok
}

func (k KeyedValue) String() string { return k.Field + "." + k.Key }

// Domain decides the value range mapped onto the axis.
type Domain interface {
	Bounds(values []float64) Range
}

// AutoDomain spans the observed values.
type AutoDomain struct{}

func (AutoDomain) Bounds(values []float64) Range {
	if len(values) == 0 {
		return Range{Min: 0, Max: 1}
	}
	r := Range{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	return r.widen()
}

// FixedDomain is a caller-chosen range.
type FixedDomain Range

func (d FixedDomain) Bounds([]float64) Range {
	r := Range(d)
	if r.Max < r.Min {
		r.Min, r.Max = r.Max, r.Min
	}
	return r.widen()
}

func (r Range) widen() Range {
	if r.Min == r.Max {
		r.Min--
		r.Max++
	}
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MapValues assigns every member record its value and axis offset. Records
// with a missing or non-finite value are flagged and sit at the axis
// minimum. Values outside the domain are clamped onto the axis.
func MapValues(records []variant.Record, groups []*PositionGroup, mode NumericMode, axisHeight float64, ann []RecordAnnotation) Range {
	dom := mode.Domain
	if dom == nil {
		dom = AutoDomain{}
	}

	var values []float64
	for _, g := range groups {
		for _, m := range g.Members {
			v, ok := mode.Source.Value(&records[m])
			if ok && finite(v) {
				values = append(values, v)
				ann[m].Value = v
			} else {
				ann[m].Missing = true
			}
		}
	}

	rng := dom.Bounds(values)
	span := rng.Max - rng.Min
	for _, g := range groups {
		for _, m := range g.Members {
			if ann[m].Missing {
				ann[m].Y = 0
				continue
			}
			y := (ann[m].Value - rng.Min) / span * axisHeight
			ann[m].Y = math.Max(0, math.Min(axisHeight, y))
		}
	}
	return rng
}

// cluster orders members top to bottom, ties by record index.
func cluster(g *PositionGroup, ann []RecordAnnotation) []int {
	order := make([]int, len(g.Members))
	copy(order, g.Members)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if ann[a].Y != ann[b].Y {
			return ann[a].Y > ann[b].Y
		}
		return a < b
	})
	return order
}

// numericPlacement is the horizontal outcome of a numeric pass.
type numericPlacement struct {
	showStem bool
	spacing  float64
	items    []*Item
	order    [][]int
}

// placeNumeric spreads cluster members side by side and packs the clusters.
// Member spacing shrinks uniformly when the clusters do not fit; below the
// minimum spacing stems are dropped and members stay at their group x.
func placeNumeric(groups []*PositionGroup, ann []RecordAnnotation, view View, cfg Config) numericPlacement {
	p := numericPlacement{
		spacing: 2*cfg.NumericRadius + 2,
		items:   make([]*Item, len(groups)),
		order:   make([][]int, len(groups)),
	}
	var n int
	for i, g := range groups {
		p.order[i] = cluster(g, ann)
		n += len(g.Members)
	}
	if n > 0 && float64(n)*p.spacing > view.Width {
		p.spacing = view.Width / float64(n)
	}
	p.showStem = p.spacing >= cfg.MinSpacing

	for i, g := range groups {
		it := &Item{Key: g.Key, X0: g.X0, X: g.X0}
		if p.showStem {
			k := len(p.order[i])
			it.Width = float64(k) * p.spacing
			it.Offsets = make([]float64, k)
			for j := range it.Offsets {
				it.Offsets[j] = (float64(j) - float64(k-1)/2) * p.spacing
			}
		}
		p.items[i] = it
	}
	if p.showStem && !Pack(p.items, view.Width) {
		p.showStem = false
		for _, it := range p.items {
			it.X = it.X0
			it.Offsets = nil
		}
	}

	for i, g := range groups {
		it := p.items[i]
		for j, m := range p.order[i] {
			ann[m].X = it.X
			if p.showStem {
				ann[m].X += it.Offsets[j]
			}
			ann[m].XOffset = ann[m].X - g.X0
		}
	}
	return p
}

// PlaceLabels decides label directions. With stems, singletons are labelled
// above and clusters only when their members are at least crowd pixels
// apart. Without stems, a top-down scan labels above every record whose
// label clears all labels already placed above, and a bottom-up scan does
// the same below for the rest. No two labels on one side are closer than
// thickness.
func PlaceLabels(order [][]int, ann []RecordAnnotation, showStem bool, spacing float64, cfg Config) {
	if showStem {
		for _, members := range order {
			if len(members) == 1 || spacing >= cfg.CrowdSpacing {
				for _, m := range members {
					ann[m].LabelAbove = true
				}
			}
		}
		return
	}

	var all []int
	for _, members := range order {
		all = append(all, members...)
	}
	sort.Ints(all)

	sort.SliceStable(all, func(i, j int) bool { return ann[all[i]].Y > ann[all[j]].Y })
	var above []float64
	for _, m := range all {
		if labelClear(above, ann[m].X, cfg.LabelThickness) {
			ann[m].LabelAbove = true
			above = append(above, ann[m].X)
		}
	}

	sort.Ints(all)
	sort.SliceStable(all, func(i, j int) bool { return ann[all[i]].Y < ann[all[j]].Y })
	var below []float64
	for _, m := range all {
		if ann[m].LabelAbove {
			continue
		}
		if labelClear(below, ann[m].X, cfg.LabelThickness) {
			ann[m].LabelBelow = true
			below = append(below, ann[m].X)
		}
	}
}

func labelClear(placed []float64, x, thickness float64) bool {
	for _, p := range placed {
		if math.Abs(p-x) < thickness {
			return false
		}
	}
	return true
}
