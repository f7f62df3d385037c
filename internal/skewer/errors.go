package skewer

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-skewer/internal/variant"
)

var (
	// ErrUnknownMode is returned when a render is requested with a mode the
	// layout does not implement.
	ErrUnknownMode = errors.New("unknown layout mode")
	// ErrNoLayout is returned by operations that need a previous render.
	ErrNoLayout = errors.New("no previous layout")
)

// UnknownDataTypeError reports a record whose data type has no partitioner.
type UnknownDataTypeError struct {
	DT     variant.DataType
	Record int
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("record %d: unknown data type %d", e.Record, int(e.DT))
}
