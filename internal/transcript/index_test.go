package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-skewer/internal/variant"
)

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex(nil)
	assert.Empty(t, idx.Overlaps("1", 100))
	assert.Equal(t, "", idx.GeneAt("1", 100))
}

func TestIndexOverlaps(t *testing.T) {
	idx := NewIndex([]*Transcript{
		{ID: "A", Chrom: "chr1", Start: 100, End: 300},
		{ID: "B", Chrom: "1", Start: 150, End: 250},
		{ID: "C", Chrom: "1", Start: 200, End: 400},
		{ID: "D", Chrom: "2", Start: 100, End: 400},
	})

	ids := func(ts []*Transcript) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"A", "B"}, ids(idx.Overlaps("1", 175)))
	assert.ElementsMatch(t, []string{"A", "B", "C"}, ids(idx.Overlaps("chr1", 200)))
	assert.ElementsMatch(t, []string{"C"}, ids(idx.Overlaps("1", 400)))
	assert.Empty(t, idx.Overlaps("1", 99))
	assert.Empty(t, idx.Overlaps("1", 401))
	assert.Empty(t, idx.Overlaps("X", 200))
}

func TestIndexGeneAt(t *testing.T) {
	idx := NewIndex([]*Transcript{
		{ID: "T1", GeneName: "LNC", Chrom: "1", Start: 100, End: 500},
		{ID: "T2", GeneName: "CODING", Chrom: "1", Start: 200, End: 300, CDSStart: 210, CDSEnd: 290},
		{ID: "T3", GeneName: "CANON", Chrom: "1", Start: 250, End: 260, CDSStart: 251, CDSEnd: 259, IsCanonical: true},
		{ID: "T4", GeneName: "ALPHA", Chrom: "1", Start: 400, End: 450},
	})

	assert.Equal(t, "LNC", idx.GeneAt("1", 150))
	assert.Equal(t, "CODING", idx.GeneAt("1", 220))
	assert.Equal(t, "CANON", idx.GeneAt("1", 255))
	assert.Equal(t, "ALPHA", idx.GeneAt("1", 420))

	records := []variant.Record{
		{Chr: "1", Pos: 220},
		{Chr: "1", Pos: 220, Gene: "KEEP"},
		{Chr: "1", Pos: 9999},
		{Chr: "1"},
	}
	assert.Equal(t, 1, idx.AssignGenes(records))
	assert.Equal(t, "CODING", records[0].Gene)
	assert.Equal(t, "KEEP", records[1].Gene)
	assert.Equal(t, "", records[2].Gene)
}
