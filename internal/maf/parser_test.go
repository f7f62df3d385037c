package maf

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-skewer/internal/variant"
)

var _ variant.Reader = (*Parser)(nil)

const sampleMAF = `#version 2.4
Hugo_Symbol	Chromosome	Start_Position	Reference_Allele	Tumor_Seq_Allele2	Variant_Classification	HGVSp_Short	Tumor_Sample_Barcode	Mutation_Status	t_alt_count	t_ref_count	am_score
KRAS	12	25398285	C	A	Missense_Mutation	p.G12C	S1	Somatic	10	30	0.98
KRAS	12	25398285	C	A	Missense_Mutation	p.G12C	S2	Germline	.	.	0.98
TP53	17	7577120	-	T	Frame_Shift_Ins	p.R273fs	S1	Somatic	5	5	NA

TRUB1	10	116734973	G	A	Nonsense_Mutation	p.W295*	S3		0	0	0.1
`

func TestParser_Records(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(sampleMAF))
	require.NoError(t, err)
	p.SetNumericColumns("am_score", "missing_col")

	cols := p.Columns()
	assert.Equal(t, 1, cols.Chromosome)
	assert.Equal(t, 2, cols.StartPosition)
	assert.Equal(t, -1, cols.Occurrence)

	r, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "12", r.Chr)
	assert.Equal(t, int64(25398285), r.Pos)
	assert.Equal(t, "KRAS", r.Gene)
	assert.Equal(t, variant.DTSNVIndel, r.DT)
	assert.Equal(t, variant.ClassMissense, r.Class)
	assert.Equal(t, "G12C", r.Name)
	assert.Equal(t, int64(12), r.AAPos)
	assert.InDelta(t, 0.25, r.Attrs[AttrVAF], 1e-9)
	assert.InDelta(t, 0.25, r.Keyed[AttrVAF]["S1"], 1e-9)
	assert.Equal(t, 0.98, r.Attrs["am_score"])
	assert.False(t, r.Rim1)
	assert.NotEmpty(t, r.ID)
	firstID := r.ID

	r, err = p.Next()
	require.NoError(t, err)
	assert.True(t, r.Rim1)
	_, hasVAF := r.Attrs[AttrVAF]
	assert.False(t, hasVAF)
	assert.NotEqual(t, firstID, r.ID, "same variant on another row")

	r, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, "", r.Ref)
	assert.Equal(t, variant.ClassFrameshift, r.Class)
	_, hasScore := r.Attrs["am_score"]
	assert.False(t, hasScore)

	r, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, "W295*", r.Name)
	assert.Equal(t, 7, p.LineNumber())

	r, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestParser_StableIDs(t *testing.T) {
	read := func() []variant.Record {
		p, err := NewParserFromReader(strings.NewReader(sampleMAF))
		require.NoError(t, err)
		records, err := variant.ReadAll(p)
		require.NoError(t, err)
		return records
	}
	a, b := read(), read()
	require.Len(t, a, 4)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func TestParser_Occurrence(t *testing.T) {
	in := "Chromosome\tStart_Position\tReference_Allele\tTumor_Seq_Allele2\toccurrence\n" +
		"1\t100\tA\tT\t7\n" +
		"1\t101\tA\tT\tmany\n"
	p, err := NewParserFromReader(strings.NewReader(in))
	require.NoError(t, err)

	r, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, 7, r.Occurrence)
	assert.Equal(t, variant.ClassUnknown, r.Class)

	_, err = p.Next()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
}

func TestParser_MissingColumn(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("Chromosome\tStart_Position\tReference_Allele\n"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "Tumor_Seq_Allele2")

	_, err = NewParserFromReader(strings.NewReader("# only comments\n"))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "no header line found", pe.Message)
}

func TestParser_InvalidPosition(t *testing.T) {
	in := "Chromosome\tStart_Position\tReference_Allele\tTumor_Seq_Allele2\n1\tabc\tA\tT\n"
	p, err := NewParserFromReader(strings.NewReader(in))
	require.NoError(t, err)
	_, err = p.Next()
	assert.EqualError(t, err, "maf parse error at line 2: invalid position: abc")
}

func TestParser_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.maf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleMAF))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()

	records, err := variant.ReadAll(p)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestParseProteinChange(t *testing.T) {
	tests := []struct {
		in   string
		name string
		aa   int64
	}{
		{"p.G12C", "G12C", 12},
		{"p.W295*", "W295*", 295},
		{"p.X125_splice", "X125_splice", 125},
		{"p.E746_A750del", "E746_A750del", 746},
		{"", "", 0},
		{".", "", 0},
		{"p.?", "?", 0},
	}
	for _, tt := range tests {
		name, aa := ParseProteinChange(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.aa, aa, tt.in)
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "required column not found",
	}
	assert.Equal(t, "maf parse error at line 42: required column not found", err.Error())
}
