package skewer

import (
	"sort"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// MaxNamesPerClass is the number of distinct names a class may show before
// its names are compacted into one disc.
const MaxNamesPerClass = 10

// Disc is one visually distinct sub-cluster of a position group.
type Disc struct {
	DT        variant.DataType
	Class     string
	Name      string
	Side      variant.Side
	Label     string
	Members   []int
	Compacted bool // many names merged under the class label

	Occurrence int // always >= 1
	Rim1Count  int
	Rim2Count  int
	Radius     float64
	RimWidth   float64
}

// partitioner splits the members of one data type into discs.
type partitioner func(records []variant.Record, members []int, maxNames int) []*Disc

var partitioners = map[variant.DataType]partitioner{
	variant.DTSNVIndel:  partitionByName,
	variant.DTSV:        partitionByPartner,
	variant.DTFusionRNA: partitionByPartner,
	variant.DTITD:       partitionSingle,
	variant.DTDel:       partitionSingle,
	variant.DTNLoss:     partitionSingle,
	variant.DTCLoss:     partitionSingle,
}

// Partition splits the members of a position group into discs sorted by
// occurrence, most common first. Any member with a data type that has no
// partitioner aborts the whole group with *UnknownDataTypeError.
func Partition(records []variant.Record, members []int, maxNames int) ([]*Disc, error) {
	if maxNames <= 0 {
		maxNames = MaxNamesPerClass
	}

	var order []variant.DataType
	byDT := make(map[variant.DataType][]int)
	for _, i := range members {
		dt := records[i].DT
		if _, ok := partitioners[dt]; !ok {
			return nil, &UnknownDataTypeError{DT: dt, Record: i}
		}
		if _, ok := byDT[dt]; !ok {
			order = append(order, dt)
		}
		byDT[dt] = append(byDT[dt], i)
	}

	var discs []*Disc
	for _, dt := range order {
		discs = append(discs, partitioners[dt](records, byDT[dt], maxNames)...)
	}
	for _, d := range discs {
		d.aggregate(records)
	}
	sort.SliceStable(discs, func(i, j int) bool { return discs[i].Occurrence > discs[j].Occurrence })
	return discs, nil
}

// layer is one parent bucket (class, or class and side) with its named
// children in first-seen order.
type layer struct {
	dt     variant.DataType
	class  string
	side   variant.Side
	names  []string
	byName map[string][]int
	all    []int
}

type layerKey struct {
	class string
	side  variant.Side
}

func nest(records []variant.Record, members []int, withSide bool, child func(*variant.Record) string) []*layer {
	var layers []*layer
	index := make(map[layerKey]*layer)
	for _, i := range members {
		r := &records[i]
		k := layerKey{class: r.Class}
		if withSide {
			k.side = r.Side
		}
		l, ok := index[k]
		if !ok {
			l = &layer{dt: r.DT, class: k.class, side: k.side, byName: make(map[string][]int)}
			index[k] = l
			layers = append(layers, l)
		}
		name := child(r)
		if _, ok := l.byName[name]; !ok {
			l.names = append(l.names, name)
		}
		l.byName[name] = append(l.byName[name], i)
		l.all = append(l.all, i)
	}
	return layers
}

func (l *layer) discs(maxNames int, compactLabel string) []*Disc {
	if len(l.names) > maxNames {
		return []*Disc{{
			DT: l.dt, Class: l.class, Side: l.side,
			Label: compactLabel, Members: l.all, Compacted: true,
		}}
	}
	out := make([]*Disc, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, &Disc{
			DT: l.dt, Class: l.class, Side: l.side, Name: name,
			Label: name, Members: l.byName[name],
		})
	}
	return out
}

// partitionByName buckets point mutations by class, then name.
func partitionByName(records []variant.Record, members []int, maxNames int) []*Disc {
	var out []*Disc
	for _, l := range nest(records, members, false, func(r *variant.Record) string { return r.Name }) {
		out = append(out, l.discs(maxNames, variant.ClassLabel(l.class))...)
	}
	return out
}

// partitionByPartner buckets breakpoints by class, side in view, then partner.
func partitionByPartner(records []variant.Record, members []int, maxNames int) []*Disc {
	var out []*Disc
	for _, l := range nest(records, members, true, func(r *variant.Record) string { return r.Partner }) {
		out = append(out, l.discs(maxNames, variant.ClassLabel(l.class)+" "+l.side.String())...)
	}
	return out
}

// partitionSingle puts all members of one type into a single disc.
func partitionSingle(records []variant.Record, members []int, _ int) []*Disc {
	first := &records[members[0]]
	label := variant.ClassLabel(first.Class)
	if first.Class == "" {
		label = first.DT.String()
	}
	return []*Disc{{DT: first.DT, Class: first.Class, Label: label, Members: members}}
}

// aggregate sums occurrence and rim counts. Occurrence is the sum of member
// occurrences when any member has one, members without a positive one
// counting once; otherwise it is the member count.
func (d *Disc) aggregate(records []variant.Record) {
	defined := false
	for _, i := range d.Members {
		if records[i].Occurrence != 0 {
			defined = true
			break
		}
	}

	occ := 0
	for _, i := range d.Members {
		r := &records[i]
		switch {
		case !defined:
		case r.Occurrence > 0:
			occ += r.Occurrence
		default:
			occ++
		}
		if r.Rim1 {
			d.Rim1Count++
		}
		if r.Rim2 {
			d.Rim2Count++
		}
	}
	if !defined {
		occ = len(d.Members)
	}
	d.Occurrence = max(occ, 1)
}
