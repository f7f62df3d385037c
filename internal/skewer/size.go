package skewer

import (
	"math"
	"strconv"
)

// Knot fractions of the maximum occurrence and the share of the way from
// unit area to the capped area reached at each knot.
var (
	knotFractions = [...]float64{0.1, 0.5, 0.6, 0.7, 0.8, 0.9}
	knotShares    = [...]float64{0.8, 0.85, 0.9, 0.95, 0.98, 0.99}
)

// digitWidth is the horizontal space one printed digit needs.
const digitWidth = 5.0

// Radius maps an occurrence count to a disc radius. Area, not radius, grows
// with occurrence and saturates quickly so recurrent variants do not crowd
// the track. Occurrence <= 1 always yields baseRadius.
func Radius(occurrence, maxOccurrence int, baseRadius float64) float64 {
	if occurrence <= 1 {
		return baseRadius
	}
	mdc := max(maxOccurrence, occurrence)
	unit := math.Pi * baseRadius * baseRadius
	maxArea := capArea(mdc, unit)

	xs, as := sizeKnots(mdc, unit, maxArea)
	area := interpolate(float64(occurrence), xs, as)
	r := math.Sqrt(area / math.Pi)

	// Leave room for the count printed inside the disc.
	text := float64(len(strconv.Itoa(occurrence))) * digitWidth
	return max(r, text, baseRadius)
}

func capArea(mdc int, unit float64) float64 {
	var a float64
	switch {
	case mdc <= 10:
		a = 0.9 * float64(mdc) * unit
	case mdc <= 100:
		a = 10 * unit
	case mdc <= 1000:
		a = 14 * unit
	default:
		a = 20 * unit
	}
	return max(a, unit)
}

// sizeKnots returns strictly increasing occurrence knots with their areas.
func sizeKnots(mdc int, unit, maxArea float64) (xs, as []float64) {
	xs = append(xs, 1)
	as = append(as, unit)
	top := float64(mdc)
	for i, f := range knotFractions {
		k := f*top + 1
		if k >= top {
			break
		}
		if k <= xs[len(xs)-1] {
			continue
		}
		xs = append(xs, k)
		as = append(as, unit+(maxArea-unit)*knotShares[i])
	}
	xs = append(xs, top)
	as = append(as, maxArea)
	return xs, as
}

func interpolate(v float64, xs, as []float64) float64 {
	if v <= xs[0] {
		return as[0]
	}
	for i := 1; i < len(xs); i++ {
		if v <= xs[i] {
			t := (v - xs[i-1]) / (xs[i] - xs[i-1])
			return as[i-1] + t*(as[i]-as[i-1])
		}
	}
	return as[len(as)-1]
}

// RimWidth returns the rim drawn around a disc with rim-tagged members.
func RimWidth(radius float64, rim1, rim2 int) float64 {
	if rim1+rim2 == 0 {
		return 0
	}
	return max(2, radius/6)
}
