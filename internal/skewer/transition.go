package skewer

// MotionKind tells the renderer how a group changes between two layouts.
type MotionKind int

const (
	MotionMove MotionKind = iota
	MotionEnter
	MotionExit
)

func (k MotionKind) String() string {
	switch k {
	case MotionEnter:
		return "enter"
	case MotionExit:
		return "exit"
	default:
		return "move"
	}
}

// Frame is the geometry of one group at one end of a transition.
type Frame struct {
	X        float64
	Expanded bool
	FoldY    float64
	Opacity  float64
}

// Motion is the start and end geometry of one group. Interpolating between
// them is up to the renderer.
type Motion struct {
	Key  string
	Kind MotionKind
	From Frame
	To   Frame
}

func frameOf(g *GroupPlacement) Frame {
	return Frame{X: g.X, Expanded: g.Expanded, FoldY: g.FoldY, Opacity: 1}
}

// Transition matches groups of two layouts by key. Groups only in to enter
// from their true coordinate, groups only in from fade out in place. The
// result lists to's groups in order, followed by exits in from's order. A
// nil from makes every group enter.
func Transition(from, to *Layout) []Motion {
	prev := make(map[string]*GroupPlacement)
	if from != nil {
		for i := range from.Groups {
			prev[from.Groups[i].Key] = &from.Groups[i]
		}
	}

	var motions []Motion
	seen := make(map[string]bool)
	if to != nil {
		for i := range to.Groups {
			g := &to.Groups[i]
			seen[g.Key] = true
			m := Motion{Key: g.Key, To: frameOf(g)}
			if p, ok := prev[g.Key]; ok {
				m.Kind = MotionMove
				m.From = frameOf(p)
			} else {
				m.Kind = MotionEnter
				m.From = Frame{X: g.X0, FoldY: g.FoldY}
			}
			motions = append(motions, m)
		}
	}
	if from != nil {
		for i := range from.Groups {
			g := &from.Groups[i]
			if seen[g.Key] {
				continue
			}
			end := frameOf(g)
			end.Opacity = 0
			motions = append(motions, Motion{Key: g.Key, Kind: MotionExit, From: frameOf(g), To: end})
		}
	}
	return motions
}
