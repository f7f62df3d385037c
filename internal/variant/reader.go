package variant

import "fmt"

// Reader is implemented by record sources such as the MAF and VCF parsers.
type Reader interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*Record, error)

	// Close closes the reader and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// ReadAll drains r into a slice.
func ReadAll(r Reader) ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if err != nil {
			return records, fmt.Errorf("read record near line %d: %w", r.LineNumber(), err)
		}
		if rec == nil {
			return records, nil
		}
		records = append(records, *rec)
	}
}
