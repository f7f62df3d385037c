package skewer

import (
	"math"
	"sort"
)

const packEps = 1e-9

// Item is the unit the packer places. X and X0 are centres; the footprint
// of an item is [X-Width/2, X+Width/2].
type Item struct {
	Key     string
	X0      float64 // true coordinate
	X       float64 // placed coordinate
	Width   float64
	Offsets []float64 // member offsets from X, numeric clusters only
}

// Pack places items as close to their true coordinates as the viewport
// allows without overlap. Items whose X0 lies outside [0, width] stay at
// X0. Pack returns false when the in-view items need more than width; they
// are then left packed from 0 and may run past the right edge.
func Pack(items []*Item, width float64) bool {
	live := make([]*Item, 0, len(items))
	for _, it := range items {
		it.X = it.X0
		if it.X0 >= 0 && it.X0 <= width {
			live = append(live, it)
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].X0 < live[j].X0 })

	var edge float64
	for _, it := range live {
		it.X = edge + it.Width/2
		edge += it.Width
	}
	if edge > width+packEps {
		return false
	}

	for i, it := range live {
		tail := live[i:]
		last := live[len(live)-1]
		for it.X < it.X0 {
			d := math.Min(1, it.X0-it.X)
			if last.X+d+last.Width/2 > width+packEps {
				break
			}
			if displacement(tail, d) >= displacement(tail, 0)-packEps {
				break
			}
			for _, jt := range tail[1:] {
				jt.X += d
			}
			if d < 1 {
				it.X = it.X0
			} else {
				it.X += d
			}
		}
	}
	return true
}

// displacement returns the total distance from true coordinates after
// shifting every item by d.
func displacement(items []*Item, d float64) float64 {
	var sum float64
	for _, it := range items {
		sum += math.Abs(it.X + d - it.X0)
	}
	return sum
}

// overlaps reports whether any two in-view items overlap. Items must be
// sorted by X.
func overlaps(items []*Item) bool {
	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		if a.X+a.Width/2 > b.X-b.Width/2+packEps {
			return true
		}
	}
	return false
}
