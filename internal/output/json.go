package output

import (
	"encoding/json"
	"io"

	"github.com/inodb/vibe-skewer/internal/skewer"
	"github.com/inodb/vibe-skewer/internal/variant"
)

// JSONWriter writes one JSON document per track (newline-delimited).
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a JSON writer. With indent set, documents are
// pretty-printed.
func NewJSONWriter(w io.Writer, indent bool) *JSONWriter {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return &JSONWriter{enc: enc}
}

type trackDoc struct {
	Track string `json:"track"`
	*skewer.Layout
	Records []recordDoc `json:"records"`
}

type recordDoc struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	skewer.RecordAnnotation
}

// Write encodes a track layout together with the per-record annotations of
// accepted records.
func (jw *JSONWriter) Write(track string, l *skewer.Layout, records []variant.Record) error {
	doc := trackDoc{Track: track, Layout: l, Records: []recordDoc{}}
	for i, a := range l.Annotations {
		if !a.Accepted || i >= len(records) {
			continue
		}
		doc.Records = append(doc.Records, recordDoc{
			ID:               records[i].ID,
			Name:             records[i].Name,
			RecordAnnotation: a,
		})
	}
	return jw.enc.Encode(doc)
}
