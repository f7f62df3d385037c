package skewer

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// ErrNoValueSource is returned for a numeric render without a value source.
var ErrNoValueSource = errors.New("numeric mode needs a value source")

// Session owns the state one track keeps between render passes: the fold
// state keyed by group key, the highlight set, and the last grouping for
// cheap pans. A Session is not safe for concurrent use.
type Session struct {
	cfg       Config
	logger    *zap.Logger
	fold      map[string]*FoldState
	highlight map[string]struct{}
	last      *pass
}

type pass struct {
	records  []variant.Record
	view     View
	proj     Projector
	mode     Mode
	grouping *Grouping
}

// NewSession creates a session with the given geometry.
func NewSession(cfg Config) *Session {
	return &Session{
		cfg:    cfg,
		logger: zap.NewNop(),
		fold:   make(map[string]*FoldState),
	}
}

// SetLogger sets the logger for dropped-record warnings.
func (s *Session) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Config returns the session geometry.
func (s *Session) Config() Config {
	return s.cfg
}

// Render runs the full pipeline over records. The records are not modified
// and must not be modified while the session may still pan over them.
func (s *Session) Render(records []variant.Record, view View, proj Projector, mode Mode) (l *Layout, err error) {
	defer recoverLayout(&l, &err)

	if mode == nil {
		return nil, ErrUnknownMode
	}
	if proj == nil {
		return nil, errors.New("render track: nil projector")
	}
	g := Group(records, view, proj)
	s.logDrops(records, g)
	s.last = &pass{records: records, view: view, proj: proj, mode: mode, grouping: g}
	return s.arrange(s.last)
}

// Relayout repeats the last pass with the current fold and highlight state.
func (s *Session) Relayout() (l *Layout, err error) {
	defer recoverLayout(&l, &err)

	if s.last == nil {
		return nil, ErrNoLayout
	}
	return s.arrange(s.last)
}

// Pan shifts the last grouping by dx pixels and re-arranges it without
// grouping again. Records that were off screen stay excluded until the next
// Render.
func (s *Session) Pan(dx float64) (l *Layout, err error) {
	defer recoverLayout(&l, &err)

	if s.last == nil {
		return nil, ErrNoLayout
	}
	s.last.grouping.shift(dx)
	return s.arrange(s.last)
}

func recoverLayout(l **Layout, err *error) {
	if r := recover(); r != nil {
		*l = nil
		*err = fmt.Errorf("layout track: %v", r)
	}
}

func (s *Session) logDrops(records []variant.Record, g *Grouping) {
	if g.Dropped.ChrPos > 0 {
		s.logger.Warn("dropped records without chromosome or position",
			zap.Int("count", g.Dropped.ChrPos))
	}
	for _, i := range g.Unmapped {
		r := &records[i]
		s.logger.Warn("dropped record without codon",
			zap.String("id", r.ID),
			zap.String("chr", r.Chr),
			zap.Int64("pos", r.Pos))
	}
}

func (s *Session) arrange(p *pass) (*Layout, error) {
	l := &Layout{
		Mode:       p.mode.Name(),
		Width:      p.view.Width,
		Regime:     p.grouping.Regime,
		ShowStem:   true,
		StemLength: s.cfg.StemLength(),
		AxisHeight: s.cfg.AxisHeight,
		Dropped:    p.grouping.Dropped,
	}
	ann := make([]RecordAnnotation, len(p.records))
	for i := range ann {
		ann[i].Group = -1
	}

	switch m := p.mode.(type) {
	case SkewerMode:
		if err := s.arrangeSkewer(p, l, ann); err != nil {
			return nil, err
		}
	case NumericMode:
		if err := s.arrangeNumeric(p, m, l, ann); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, p.mode.Name())
	}
	l.Annotations = ann
	return l, nil
}

func (s *Session) arrangeSkewer(p *pass, l *Layout, ann []RecordAnnotation) error {
	records := p.records
	groups := make([]*PositionGroup, 0, len(p.grouping.Groups))
	for _, g := range p.grouping.Groups {
		discs, err := Partition(records, g.Members, s.cfg.MaxNames)
		if err != nil {
			var dtErr *UnknownDataTypeError
			if !errors.As(err, &dtErr) {
				return fmt.Errorf("partition group %s: %w", g.Key, err)
			}
			s.logger.Warn("skipping group with unknown data type",
				zap.String("group", g.Key),
				zap.String("chr", g.Chr),
				zap.Int64("pos", g.Pos),
				zap.Int("dt", int(dtErr.DT)))
			l.Dropped.UnknownDT += len(g.Members)
			continue
		}
		g.Discs = discs
		groups = append(groups, g)
	}

	maxOcc := 0
	for _, g := range groups {
		for _, d := range g.Discs {
			maxOcc = max(maxOcc, d.Occurrence)
		}
	}
	for _, g := range groups {
		g.Occurrence, g.MaxRadius, g.MaxRimWidth = 0, 0, 0
		for _, d := range g.Discs {
			d.Radius = Radius(d.Occurrence, maxOcc, s.cfg.BaseRadius)
			d.RimWidth = RimWidth(d.Radius, d.Rim1Count, d.Rim2Count)
			g.Occurrence += d.Occurrence
			g.MaxRadius = max(g.MaxRadius, d.Radius)
			g.MaxRimWidth = max(g.MaxRimWidth, d.RimWidth)
		}
		g.Width = 2*(g.MaxRadius+g.MaxRimWidth) + s.cfg.GroupPad
	}

	scale := newFoldScale(groups, s.cfg)
	expand, _ := s.settle(groups, records, p.view)

	items := make([]*Item, len(expand))
	placedX := make(map[string]float64, len(expand))
	for i, g := range expand {
		items[i] = &Item{Key: g.Key, X0: g.X0, Width: g.Width}
	}
	l.ShowStem = Pack(items, p.view.Width)
	for _, it := range items {
		placedX[it.Key] = it.X
	}

	l.Groups = make([]GroupPlacement, len(groups))
	for gi, g := range groups {
		st := s.state(g.Key)
		st.FoldY = scale.y(g.Occurrence)
		x, expanded := placedX[g.Key]
		if !expanded {
			x = g.X0
		}
		l.Groups[gi] = s.placeGroup(g, x, expanded, l.ShowStem, st.FoldY)
		for _, m := range g.Members {
			ann[m] = RecordAnnotation{Accepted: true, Group: gi, X: x, XOffset: x - g.X0}
		}
	}
	return nil
}

func (s *Session) placeGroup(g *PositionGroup, x float64, expanded, showStem bool, foldY float64) GroupPlacement {
	gp := GroupPlacement{
		Key:        g.Key,
		Chr:        g.Chr,
		Pos:        g.Pos,
		AAPos:      g.AAPos,
		X0:         g.X0,
		X:          x,
		XOffset:    x - g.X0,
		Expanded:   expanded,
		FoldY:      foldY,
		Occurrence: g.Occurrence,
		Width:      g.Width,
		Members:    g.Members,
		Discs:      make([]DiscPlacement, len(g.Discs)),
	}

	// Expanded discs stack upward from the stem tip, touching.
	y := s.cfg.StemLength()
	for i, d := range g.Discs {
		dp := DiscPlacement{
			DT: d.DT, Class: d.Class, Name: d.Name, Side: d.Side,
			Label: d.Label, Compacted: d.Compacted, Occurrence: d.Occurrence,
			Radius: d.Radius, RimWidth: d.RimWidth, Members: d.Members,
			Y: foldY,
		}
		if expanded {
			if i > 0 {
				y += g.Discs[i-1].Radius
			}
			y += d.Radius
			dp.Y = y
			dp.ShowLabel = true
		}
		gp.Discs[i] = dp
	}
	if expanded && showStem {
		gp.Stem = s.cfg.stem(g.X0, x)
	}
	return gp
}

func (c Config) stem(x0, x float64) []Point {
	return []Point{
		{X: x0, Y: 0},
		{X: x0, Y: c.Stem1},
		{X: x, Y: c.Stem1 + c.Stem2},
		{X: x, Y: c.StemLength()},
	}
}

func (s *Session) arrangeNumeric(p *pass, m NumericMode, l *Layout, ann []RecordAnnotation) error {
	if m.Source == nil {
		return ErrNoValueSource
	}
	groups := p.grouping.Groups
	rng := MapValues(p.records, groups, m, s.cfg.AxisHeight, ann)
	np := placeNumeric(groups, ann, p.view, s.cfg)
	PlaceLabels(np.order, ann, np.showStem, np.spacing, s.cfg)

	l.Domain = &rng
	l.ShowStem = np.showStem
	l.Groups = make([]GroupPlacement, len(groups))
	for gi, g := range groups {
		x := np.items[gi].X
		gp := GroupPlacement{
			Key:        g.Key,
			Chr:        g.Chr,
			Pos:        g.Pos,
			AAPos:      g.AAPos,
			X0:         g.X0,
			X:          x,
			XOffset:    x - g.X0,
			Occurrence: len(g.Members),
			Width:      np.items[gi].Width,
			Members:    np.order[gi],
		}
		if np.showStem {
			gp.Stem = s.cfg.stem(g.X0, x)
		}
		l.Groups[gi] = gp
		for _, mi := range g.Members {
			ann[mi].Accepted = true
			ann[mi].Group = gi
		}
	}
	return nil
}

// ExpandOne pins a group open. Takes effect on the next pass.
func (s *Session) ExpandOne(key string) {
	st := s.state(key)
	st.Pinned, st.PinOpen, st.Unfolded = true, true, true
}

// CollapseOne pins a group closed. Takes effect on the next pass.
func (s *Session) CollapseOne(key string) {
	st := s.state(key)
	st.Pinned, st.PinOpen, st.Unfolded = true, false, false
}

// ExpandAll pins every known group open.
func (s *Session) ExpandAll() {
	s.pinAll(true)
}

// CollapseAll pins every known group closed.
func (s *Session) CollapseAll() {
	s.pinAll(false)
}

func (s *Session) pinAll(open bool) {
	if s.last != nil {
		for _, g := range s.last.grouping.Groups {
			s.state(g.Key)
		}
	}
	for _, st := range s.fold {
		st.Pinned, st.PinOpen, st.Unfolded = true, open, open
	}
}

// SetHighlight replaces the highlight set. An empty set turns highlighting off.
func (s *Session) SetHighlight(ids []string) {
	if len(ids) == 0 {
		s.highlight = nil
		return
	}
	s.highlight = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.highlight[id] = struct{}{}
	}
}

// Highlight returns the highlighted record IDs in sorted order.
func (s *Session) Highlight() []string {
	ids := make([]string, 0, len(s.highlight))
	for id := range s.highlight {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State returns the fold state of a group.
func (s *Session) State(key string) (FoldState, bool) {
	st, ok := s.fold[key]
	if !ok {
		return FoldState{}, false
	}
	return *st, true
}

// Reset forgets fold state, highlights and the last pass. Call it when the
// track switches datasets.
func (s *Session) Reset() {
	s.fold = make(map[string]*FoldState)
	s.highlight = nil
	s.last = nil
}
