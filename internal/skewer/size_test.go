package skewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRadius_BaseAtOne(t *testing.T) {
	for _, maxOcc := range []int{-5, 0, 1, 2, 100, 100000} {
		assert.Equal(t, 7.0, Radius(1, maxOcc, 7), "max %d", maxOcc)
	}
	assert.Equal(t, 7.0, Radius(0, 10, 7))
	assert.Equal(t, 7.0, Radius(-4, 10, 7))
}

func TestRadius_Monotonic(t *testing.T) {
	for _, maxOcc := range []int{2, 5, 10, 11, 50, 100, 500, 2000} {
		prev := 0.0
		for occ := -1; occ <= maxOcc; occ++ {
			r := Radius(occ, maxOcc, 7)
			assert.GreaterOrEqual(t, r, prev, "occ %d max %d", occ, maxOcc)
			prev = r
		}
	}
}

func TestRadius_Capped(t *testing.T) {
	// At the maximum the area is the capped area: 10 unit areas for max 50.
	r := Radius(50, 50, 7)
	assert.InDelta(t, 7*3.1622776601683795, r, 1e-9)

	// Small maxima scale the cap with the maximum.
	r = Radius(4, 4, 7)
	assert.InDelta(t, 7*1.8973665961010275, r, 1e-9) // sqrt(0.9*4)
}

func TestRadius_DigitFloor(t *testing.T) {
	assert.GreaterOrEqual(t, Radius(12345, 12345, 1), 25.0)
}

func TestRimWidth(t *testing.T) {
	assert.Zero(t, RimWidth(30, 0, 0))
	assert.Equal(t, 2.0, RimWidth(7, 1, 0))
	assert.Equal(t, 5.0, RimWidth(30, 0, 3))
}

func TestSizeKnots_Increasing(t *testing.T) {
	for _, mdc := range []int{2, 3, 7, 40, 1200} {
		xs, as := sizeKnots(mdc, 1, 10)
		for i := 1; i < len(xs); i++ {
			assert.Greater(t, xs[i], xs[i-1], "mdc %d", mdc)
			assert.GreaterOrEqual(t, as[i], as[i-1], "mdc %d", mdc)
		}
		assert.Equal(t, float64(mdc), xs[len(xs)-1])
	}
}
