// Package skewer lays out variant markers along a fixed-width horizontal axis.
//
// A render pass groups records by resolved x coordinate, splits each group
// into discs, sizes the discs by occurrence, decides which groups are shown
// expanded, and packs the expanded groups so they do not overlap. Numeric mode
// replaces the disc stacking with a value axis and its own label placement.
// All layout state that survives between passes is owned by a Session.
package skewer

// Hit is one projected location of a genomic position. Multi-region views
// may return several hits for the same position.
type Hit struct {
	X      float64
	Region int
}

// Projector maps genomic coordinates to view pixels.
type Projector interface {
	SeekCoord(chr string, pos int64) []Hit
}

// CodingContext answers codon queries for the transcript in view.
type CodingContext interface {
	InCoding(pos int64) bool
	CodonIndex(pos int64) (int64, bool)
}

// View describes the viewport of one render pass.
type View struct {
	Width         float64
	PixelsPerBase float64
	// Coding is set when a coding transcript is shown in protein display.
	// Nil for genomic display.
	Coding CodingContext
}

func (v View) inView(x float64) bool {
	return x >= 0 && x <= v.Width
}

// Resolution regime constants.
const (
	PerBaseThreshold = 4.0 // pixels per base at which each base gets its own group
	PixelBinWidth    = 2.0 // bin width in the fallback regime
	CodonMergeFactor = 3.0 // codon groups closer than PixelsPerBase*3 merge
)

// Config holds geometry constants. Zero values are not usable; start from
// DefaultConfig.
type Config struct {
	BaseRadius     float64 `mapstructure:"base_radius"`
	Stem1          float64 `mapstructure:"stem1"`
	Stem2          float64 `mapstructure:"stem2"`
	Stem3          float64 `mapstructure:"stem3"`
	GroupPad       float64 `mapstructure:"group_pad"`
	FoldBaseline   float64 `mapstructure:"fold_baseline"`
	ExpandBudget   float64 `mapstructure:"expand_budget"`
	MaxNames       int     `mapstructure:"max_names"`
	NumericRadius  float64 `mapstructure:"numeric_radius"`
	AxisHeight     float64 `mapstructure:"axis_height"`
	CrowdSpacing   float64 `mapstructure:"crowd_spacing"`
	LabelThickness float64 `mapstructure:"label_thickness"`
	MinSpacing     float64 `mapstructure:"min_spacing"`
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		BaseRadius:     7,
		Stem1:          10,
		Stem2:          20,
		Stem3:          5,
		GroupPad:       2,
		FoldBaseline:   7,
		ExpandBudget:   0.8,
		MaxNames:       MaxNamesPerClass,
		NumericRadius:  4,
		AxisHeight:     150,
		CrowdSpacing:   7,
		LabelThickness: 12,
		MinSpacing:     2,
	}
}

// StemLength is the distance from the axis to the first expanded disc.
func (c Config) StemLength() float64 {
	return c.Stem1 + c.Stem2 + c.Stem3
}
