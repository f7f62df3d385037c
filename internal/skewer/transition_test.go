package skewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	from := &Layout{Groups: []GroupPlacement{
		{Key: "1.10", X0: 10, X: 12, Expanded: true},
		{Key: "1.20", X0: 20, X: 20, FoldY: 7},
	}}
	to := &Layout{Groups: []GroupPlacement{
		{Key: "1.10", X0: 10, X: 10},
		{Key: "1.30", X0: 30, X: 34, Expanded: true, FoldY: 9},
	}}

	motions := Transition(from, to)
	require.Len(t, motions, 3)

	assert.Equal(t, MotionMove, motions[0].Kind)
	assert.Equal(t, Frame{X: 12, Expanded: true, Opacity: 1}, motions[0].From)
	assert.Equal(t, Frame{X: 10, Opacity: 1}, motions[0].To)

	assert.Equal(t, "1.30", motions[1].Key)
	assert.Equal(t, MotionEnter, motions[1].Kind)
	assert.Equal(t, Frame{X: 30, FoldY: 9}, motions[1].From)

	assert.Equal(t, "1.20", motions[2].Key)
	assert.Equal(t, MotionExit, motions[2].Kind)
	assert.Equal(t, 0.0, motions[2].To.Opacity)
	assert.Equal(t, 20.0, motions[2].To.X)
}

func TestTransition_FromNothing(t *testing.T) {
	to := &Layout{Groups: []GroupPlacement{{Key: "a", X0: 5, X: 6}}}
	motions := Transition(nil, to)
	require.Len(t, motions, 1)
	assert.Equal(t, MotionEnter, motions[0].Kind)
	assert.Equal(t, "enter", motions[0].Kind.String())
	assert.Empty(t, Transition(nil, nil))
}
