package variant

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// recordNamespace scopes name-based record identities.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/inodb/vibe-skewer/record"))

// StableID derives a deterministic identity for a record from its content and
// its row number in the source. Identical input always yields the same ID.
func StableID(r *Record, row int) string {
	var b strings.Builder
	b.WriteString(r.NormalizeChr())
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(r.Pos, 10))
	b.WriteByte(':')
	b.WriteString(r.Ref)
	b.WriteByte('>')
	b.WriteString(r.Alt)
	b.WriteByte(':')
	b.WriteString(r.Name)
	b.WriteByte('#')
	b.WriteString(strconv.Itoa(row))
	return uuid.NewSHA1(recordNamespace, []byte(b.String())).String()
}

// AssignIDs fills in missing record IDs using StableID.
func AssignIDs(records []Record) {
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = StableID(&records[i], i)
		}
	}
}
