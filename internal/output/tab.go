// Package output provides layout output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-skewer/internal/skewer"
	"github.com/inodb/vibe-skewer/internal/variant"
)

// TabWriter writes placed layouts in tab-delimited format: one row per disc
// in skewer mode and one row per record in numeric mode.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Track",
			"Group",
			"Chromosome",
			"Position",
			"Protein_position",
			"X0",
			"X",
			"Expanded",
			"Kind",
			"Label",
			"Data_type",
			"Class",
			"Occurrence",
			"Radius",
			"Y",
			"Value",
			"Show_label",
			"IDs",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes all rows of one track layout. records must be the slice the
// layout was rendered from.
func (tw *TabWriter) Write(track string, l *skewer.Layout, records []variant.Record) error {
	for _, g := range l.Groups {
		var err error
		if l.Mode == (skewer.NumericMode{}).Name() {
			err = tw.writePoints(track, &g, l, records)
		} else {
			err = tw.writeDiscs(track, &g, records)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writeDiscs(track string, g *skewer.GroupPlacement, records []variant.Record) error {
	for _, d := range g.Discs {
		label := d.Label
		if d.Compacted {
			label += " (compacted)"
		}
		values := append(groupColumns(track, g),
			yesNo(g.Expanded),
			"disc",
			dash(label),
			d.DT.String(),
			dash(d.Class),
			strconv.Itoa(d.Occurrence),
			formatFloat(d.Radius),
			formatFloat(d.Y),
			"-",
			yesNo(d.ShowLabel),
			memberIDs(d.Members, records),
		)
		if err := tw.writeRow(values); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writePoints(track string, g *skewer.GroupPlacement, l *skewer.Layout, records []variant.Record) error {
	for _, mi := range g.Members {
		a := l.Annotations[mi]
		r := &records[mi]
		value := "NA"
		if !a.Missing {
			value = formatFloat(a.Value)
		}
		showLabel := "-"
		switch {
		case a.LabelAbove:
			showLabel = "above"
		case a.LabelBelow:
			showLabel = "below"
		}
		values := groupColumns(track, g)
		values[6] = formatFloat(a.X)
		values = append(values,
			"-",
			"point",
			dash(r.Name),
			r.DT.String(),
			dash(r.Class),
			strconv.Itoa(r.Occurrence),
			"-",
			formatFloat(a.Y),
			value,
			showLabel,
			dash(r.ID),
		)
		if err := tw.writeRow(values); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writeRow(values []string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// groupColumns returns the seven leading columns shared by every row.
func groupColumns(track string, g *skewer.GroupPlacement) []string {
	aaPos := "-"
	if g.AAPos > 0 {
		aaPos = strconv.FormatInt(g.AAPos, 10)
	}
	return []string{
		dash(track),
		g.Key,
		g.Chr,
		strconv.FormatInt(g.Pos, 10),
		aaPos,
		formatFloat(g.X0),
		formatFloat(g.X),
	}
}

func memberIDs(members []int, records []variant.Record) string {
	ids := make([]string, 0, len(members))
	for _, mi := range members {
		if mi >= 0 && mi < len(records) && records[mi].ID != "" {
			ids = append(ids, records[mi].ID)
		}
	}
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "-"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
