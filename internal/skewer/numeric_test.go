package skewer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-skewer/internal/variant"
)

func withValue(r variant.Record, name string, v float64) variant.Record {
	r.SetAttr(name, v)
	return r
}

func TestMapValues_AutoDomain(t *testing.T) {
	records := []variant.Record{
		withValue(snv("a", 1, "M", "A", 0), "vaf", 0),
		withValue(snv("b", 1, "M", "B", 0), "vaf", 5),
		withValue(snv("c", 2, "M", "C", 0), "vaf", 10),
		snv("d", 2, "M", "D", 0),
		withValue(snv("e", 2, "M", "E", 0), "vaf", math.NaN()),
	}
	groups := []*PositionGroup{{Key: "1.1", Members: []int{0, 1}}, {Key: "1.2", Members: []int{2, 3, 4}}}
	ann := make([]RecordAnnotation, len(records))

	rng := MapValues(records, groups, NumericMode{Source: AttrValue{Name: "vaf"}}, 150, ann)
	assert.Equal(t, Range{Min: 0, Max: 10}, rng)
	assert.Equal(t, 0.0, ann[0].Y)
	assert.Equal(t, 75.0, ann[1].Y)
	assert.Equal(t, 150.0, ann[2].Y)
	assert.True(t, ann[3].Missing)
	assert.Equal(t, 0.0, ann[3].Y)
	assert.True(t, ann[4].Missing)
	assert.Zero(t, ann[4].Value)
}

func TestMapValues_Domains(t *testing.T) {
	records := []variant.Record{
		withValue(snv("a", 1, "M", "A", 0), "v", 5),
		withValue(snv("b", 1, "M", "B", 0), "v", 10),
	}
	groups := []*PositionGroup{{Key: "1.1", Members: []int{0, 1}}}

	ann := make([]RecordAnnotation, 2)
	rng := MapValues(records, groups, NumericMode{Source: AttrValue{Name: "v"}, Domain: FixedDomain{Min: 0, Max: 5}}, 100, ann)
	assert.Equal(t, Range{Min: 0, Max: 5}, rng)
	assert.Equal(t, 100.0, ann[0].Y)
	assert.Equal(t, 100.0, ann[1].Y, "clamped to the axis")

	ann = make([]RecordAnnotation, 2)
	rng = MapValues(records, groups, NumericMode{Source: AttrValue{Name: "v"}, Domain: FixedDomain{Min: 20, Max: 0}}, 100, ann)
	assert.Equal(t, Range{Min: 0, Max: 20}, rng)
	assert.Equal(t, 25.0, ann[0].Y)

	single := records[:1]
	ann = make([]RecordAnnotation, 1)
	rng = MapValues(single, []*PositionGroup{{Members: []int{0}}}, NumericMode{Source: AttrValue{Name: "v"}}, 100, ann)
	assert.Equal(t, Range{Min: 4, Max: 6}, rng)
	assert.Equal(t, 50.0, ann[0].Y)

	assert.Equal(t, Range{Min: 0, Max: 1}, AutoDomain{}.Bounds(nil))
}

func TestKeyedValue(t *testing.T) {
	r := snv("a", 1, "M", "A", 0)
	r.SetKeyed("vaf", "S1", 0.4)

	v, ok := KeyedValue{Field: "vaf", Key: "S1"}.Value(&r)
	assert.True(t, ok)
	assert.Equal(t, 0.4, v)

	_, ok = KeyedValue{Field: "vaf", Key: "S2"}.Value(&r)
	assert.False(t, ok)
	_, ok = KeyedValue{Field: "depth", Key: "S1"}.Value(&r)
	assert.False(t, ok)
	assert.Equal(t, "vaf.S1", KeyedValue{Field: "vaf", Key: "S1"}.String())
}

func TestSession_NumericWithStems(t *testing.T) {
	records := []variant.Record{
		withValue(snv("a", 100, "M", "A", 0), "v", 1),
		withValue(snv("b", 100, "M", "B", 0), "v", 2),
		withValue(snv("c", 100, "M", "C", 0), "v", 3),
		withValue(snv("d", 500, "M", "D", 0), "v", 2),
	}
	s := NewSession(DefaultConfig())
	l, err := s.Render(records, genomic(1000), pixelProjector{scale: 1}, NumericMode{Source: AttrValue{Name: "v"}})
	require.NoError(t, err)

	assert.Equal(t, "numeric", l.Mode)
	assert.True(t, l.ShowStem)
	assert.Equal(t, &Range{Min: 1, Max: 3}, l.Domain)
	require.Len(t, l.Groups, 2)
	assert.Equal(t, []int{2, 1, 0}, l.Groups[0].Members, "top value first")
	assert.Equal(t, 30.0, l.Groups[0].Width)

	ann := l.Annotations
	assert.Equal(t, 90.0, ann[2].X)
	assert.Equal(t, 100.0, ann[1].X)
	assert.Equal(t, 110.0, ann[0].X)
	assert.Equal(t, 10.0, ann[0].XOffset)
	assert.Equal(t, 150.0, ann[2].Y)
	for _, a := range ann {
		assert.True(t, a.Accepted)
		assert.True(t, a.LabelAbove, "spacing 10 is not crowded")
		assert.False(t, a.LabelBelow)
	}
}

func TestSession_NumericCrowdedCluster(t *testing.T) {
	var records []variant.Record
	for range 15 {
		records = append(records, withValue(snv("c", 20, "M", "A", 0), "v", 1))
	}
	records = append(records, withValue(snv("s", 80, "M", "B", 0), "v", 1))

	s := NewSession(DefaultConfig())
	l, err := s.Render(records, genomic(100), pixelProjector{scale: 1}, NumericMode{Source: AttrValue{Name: "v"}})
	require.NoError(t, err)

	assert.True(t, l.ShowStem, "6.25px spacing still fits stems")
	for i := range 15 {
		assert.False(t, l.Annotations[i].LabelAbove, "record %d", i)
	}
	assert.True(t, l.Annotations[15].LabelAbove)
}

func TestSession_NumericNoStems(t *testing.T) {
	var records []variant.Record
	for i := range 20 {
		records = append(records, withValue(snv("r", int64(i+1), "M", "A", 0), "v", float64(i%5)))
	}
	s := NewSession(DefaultConfig())
	l, err := s.Render(records, genomic(20), pixelProjector{scale: 1}, NumericMode{Source: AttrValue{Name: "v"}})
	require.NoError(t, err)
	assert.False(t, l.ShowStem)

	var above, below []float64
	for _, g := range l.Groups {
		assert.Equal(t, g.X0, g.X)
		assert.Nil(t, g.Stem)
		for _, m := range g.Members {
			a := l.Annotations[m]
			assert.Equal(t, g.X0, a.X)
			assert.False(t, a.LabelAbove && a.LabelBelow)
			if a.LabelAbove {
				above = append(above, a.X)
			}
			if a.LabelBelow {
				below = append(below, a.X)
			}
		}
	}
	assert.NotEmpty(t, above)
	for _, xs := range [][]float64{above, below} {
		for i := range xs {
			for j := i + 1; j < len(xs); j++ {
				assert.GreaterOrEqual(t, math.Abs(xs[i]-xs[j]), 12.0)
			}
		}
	}
}

func TestPlaceLabels_Greedy(t *testing.T) {
	ann := []RecordAnnotation{
		{X: 0, Y: 100},
		{X: 5, Y: 50},
		{X: 30, Y: 10},
		{X: 8, Y: 5},
	}
	PlaceLabels([][]int{{0, 1, 3}, {2}}, ann, false, 0, DefaultConfig())

	assert.True(t, ann[0].LabelAbove)
	assert.False(t, ann[1].LabelAbove, "collides with record 0")
	assert.True(t, ann[2].LabelAbove)
	assert.False(t, ann[3].LabelAbove)

	// Bottom-up: record 3 first, then record 1 collides with it.
	assert.True(t, ann[3].LabelBelow)
	assert.False(t, ann[1].LabelBelow)
}
