package skewer

import "github.com/inodb/vibe-skewer/internal/variant"

// Layout is the placed geometry of one render pass.
type Layout struct {
	Mode        string             `json:"mode"`
	Width       float64            `json:"width"`
	Regime      Regime             `json:"regime"`
	ShowStem    bool               `json:"show_stem"`
	StemLength  float64            `json:"stem_length"`
	AxisHeight  float64            `json:"axis_height"`
	Domain      *Range             `json:"domain,omitempty"`
	Groups      []GroupPlacement   `json:"groups"`
	Dropped     DropReport         `json:"dropped"`
	Annotations []RecordAnnotation `json:"-"`
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Point is a vertex of a stem polyline. Y grows away from the axis.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GroupPlacement is a placed position group.
type GroupPlacement struct {
	Key        string          `json:"key"`
	Chr        string          `json:"chr"`
	Pos        int64           `json:"pos"`
	AAPos      int64           `json:"aa_pos,omitempty"`
	X0         float64         `json:"x0"`
	X          float64         `json:"x"`
	XOffset    float64         `json:"x_offset"`
	Expanded   bool            `json:"expanded"`
	FoldY      float64         `json:"fold_y"`
	Occurrence int             `json:"occurrence"`
	Width      float64         `json:"width"`
	Discs      []DiscPlacement `json:"discs,omitempty"`
	Members    []int           `json:"members"`
	Stem       []Point         `json:"stem,omitempty"`
}

// DiscPlacement is a placed disc. Y is the disc centre above the axis.
type DiscPlacement struct {
	DT         variant.DataType `json:"dt"`
	Class      string           `json:"class"`
	Name       string           `json:"name"`
	Side       variant.Side     `json:"side,omitempty"`
	Label      string           `json:"label"`
	Compacted  bool             `json:"compacted,omitempty"`
	Occurrence int              `json:"occurrence"`
	Radius     float64          `json:"radius"`
	RimWidth   float64          `json:"rim_width,omitempty"`
	Y          float64          `json:"y"`
	ShowLabel  bool             `json:"show_label"`
	Members    []int            `json:"members"`
}

// RecordAnnotation holds the computed layout attributes of one record.
// Annotations are parallel to the record slice of the pass; records
// themselves are never written.
type RecordAnnotation struct {
	Accepted   bool    `json:"accepted"`
	Group      int     `json:"group"` // index into Layout.Groups, -1 if dropped
	X          float64 `json:"x"`
	XOffset    float64 `json:"x_offset"`
	Value      float64 `json:"value"`
	Missing    bool    `json:"missing"`
	Y          float64 `json:"y"`
	LabelAbove bool    `json:"label_above"`
	LabelBelow bool    `json:"label_below"`
}

// MarshalText encodes the regime by name.
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Group returns the placement with the given key.
func (l *Layout) Group(key string) (*GroupPlacement, bool) {
	for i := range l.Groups {
		if l.Groups[i].Key == key {
			return &l.Groups[i], true
		}
	}
	return nil, false
}

// Expanded returns the keys of all expanded groups in x order.
func (l *Layout) Expanded() []string {
	var keys []string
	for _, g := range l.Groups {
		if g.Expanded {
			keys = append(keys, g.Key)
		}
	}
	return keys
}
