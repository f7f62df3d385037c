package variant

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is the integer tag assigned to each record by the data layer.
type DataType int

// Data type tags.
const (
	DTSNVIndel       DataType = 1
	DTFusionRNA      DataType = 2
	DTGeneExpression DataType = 3
	DTCNV            DataType = 4
	DTSV             DataType = 5
	DTITD            DataType = 6
	DTDel            DataType = 7
	DTNLoss          DataType = 8
	DTCLoss          DataType = 9
	DTLOH            DataType = 10
)

var dtNames = map[DataType]string{
	DTSNVIndel:       "snvindel",
	DTFusionRNA:      "fusion",
	DTGeneExpression: "geneexpression",
	DTCNV:            "cnv",
	DTSV:             "sv",
	DTITD:            "itd",
	DTDel:            "deletion",
	DTNLoss:          "nloss",
	DTCLoss:          "closs",
	DTLOH:            "loh",
}

// String returns the short lowercase name of the data type.
func (d DataType) String() string {
	if n, ok := dtNames[d]; ok {
		return n
	}
	return "dt" + strconv.Itoa(int(d))
}

// ParseDataType accepts either the numeric tag or the short name.
func ParseDataType(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return DataType(n), nil
	}
	for dt, name := range dtNames {
		if strings.EqualFold(name, s) {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", s)
}

// IsBreakpoint returns true for data types with a partner breakpoint.
func (d DataType) IsBreakpoint() bool {
	return d == DTSV || d == DTFusionRNA
}
