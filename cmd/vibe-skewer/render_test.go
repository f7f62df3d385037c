package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/vibe-skewer/internal/duckdb"
	"github.com/inodb/vibe-skewer/internal/variant"
)

const testMAF = `Hugo_Symbol	Chromosome	Start_Position	Reference_Allele	Tumor_Seq_Allele2	Variant_Classification	HGVSp_Short	Tumor_Sample_Barcode	t_alt_count	t_ref_count
KRAS	12	25245350	C	A	Missense_Mutation	p.G12C	S1	10	30
KRAS	12	25245350	C	T	Missense_Mutation	p.G12D	S2	20	20
BRAF	7	140753336	A	T	Missense_Mutation	p.V600E	S3	5	15
`

const testGTF = "12\tHAVANA\ttranscript\t100\t400\t.\t+\t.\tgene_name \"G\"; transcript_id \"T1\"; transcript_type \"protein_coding\"; tag \"Ensembl_canonical\";\n" +
	"12\tHAVANA\texon\t100\t400\t.\t+\t.\tgene_name \"G\"; transcript_id \"T1\"; exon_number 1;\n" +
	"12\tHAVANA\tCDS\t101\t399\t.\t+\t0\tgene_name \"G\"; transcript_id \"T1\"; exon_number 1;\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := loadSettings(newTestViper(t))
	require.NoError(t, err)
	s.Workers = 2
	return s
}

func TestRunRenderTab(t *testing.T) {
	input := writeFile(t, "input.maf", testMAF)
	s := testSettings(t)

	var out bytes.Buffer
	require.NoError(t, runRender(s, []string{input}, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "#Track"))

	first := strings.Split(lines[1], "\t")
	assert.Equal(t, "KRAS", first[0])
	assert.Equal(t, "12.25245350", first[1])
	assert.Equal(t, "disc", first[8])
	assert.Equal(t, "G12C", first[9])

	assert.True(t, strings.HasPrefix(lines[2], "KRAS\t"))
	assert.Contains(t, lines[2], "G12D")
	assert.True(t, strings.HasPrefix(lines[3], "BRAF\t"))
}

func TestRunRenderGenesFilter(t *testing.T) {
	input := writeFile(t, "input.maf", testMAF)
	s := testSettings(t)
	s.Genes = []string{"BRAF", "NOTEXIST"}

	var out bytes.Buffer
	require.NoError(t, runRender(s, []string{input}, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "BRAF\t"))
}

func TestRunRenderRegionJSON(t *testing.T) {
	input := writeFile(t, "input.maf", testMAF)
	s := testSettings(t)
	s.Region = "chr12:25,245,300-25,245,400"
	s.Format = "json"

	var out bytes.Buffer
	require.NoError(t, runRender(s, []string{input}, &out, zap.NewNop()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "chr12:25245300-25245400", doc["track"])
	assert.Equal(t, "skewer", doc["mode"])
	groups := doc["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].(map[string]any)["discs"], 2)
	assert.Len(t, doc["records"], 2)
}

func TestRunRenderNumeric(t *testing.T) {
	input := writeFile(t, "input.maf", testMAF)
	s := testSettings(t)
	s.Mode = "numeric"
	s.Value = "vaf"
	s.Domain = []float64{0, 1}
	s.Genes = []string{"KRAS"}

	var out bytes.Buffer
	require.NoError(t, runRender(s, []string{input}, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	values := map[string]bool{}
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		assert.Equal(t, "point", fields[8])
		values[fields[15]] = true
	}
	assert.Equal(t, map[string]bool{"0.25": true, "0.50": true}, values)
}

func TestRunRenderProteinView(t *testing.T) {
	maf := "Hugo_Symbol\tChromosome\tStart_Position\tReference_Allele\tTumor_Seq_Allele2\tHGVSp_Short\n" +
		"G\t12\t104\tA\tT\tp.X2Y\n" +
		"G\t12\t105\tA\tC\tp.X2Z\n"
	input := writeFile(t, "input.maf", maf)
	gtf := writeFile(t, "genes.gtf", testGTF)

	s := testSettings(t)
	s.View = "protein"
	s.GTF = gtf
	s.Width = 99

	var out bytes.Buffer
	require.NoError(t, runRender(s, []string{input}, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	// Both positions fall in codon 2 and share one group.
	first := strings.Split(lines[1], "\t")
	second := strings.Split(lines[2], "\t")
	assert.Equal(t, first[1], second[1])
	assert.Equal(t, "2", first[4])
}

func TestRunRenderFromStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cohort.duckdb")
	store, err := duckdb.Open(dbPath)
	require.NoError(t, err)
	records, err := readRecords(writeFile(t, "input.maf", testMAF), "", nil)
	require.NoError(t, err)
	_, err = store.WriteRecords(records)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	s := testSettings(t)
	s.DB = dbPath

	var out bytes.Buffer
	require.NoError(t, runRender(s, nil, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "KRAS\t"))
	assert.True(t, strings.HasPrefix(lines[3], "BRAF\t"))
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("chr7:140,753,000-140,754,000")
	require.NoError(t, err)
	assert.Equal(t, region{chr: "chr7", start: 140753000, end: 140754000}, r)
	assert.Equal(t, "chr7:140753000-140754000", r.String())

	for _, bad := range []string{"7", ":1-2", "7:1", "7:a-2", "7:1-b", "7:5-1", "7:0-5"} {
		_, err := parseRegion(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitByGene(t *testing.T) {
	records := []variant.Record{
		{ID: "1", Gene: "TP53"},
		{ID: "2", Gene: "KRAS"},
		{ID: "3", Gene: "TP53"},
		{ID: "4"},
	}

	sets := splitByGene(records, nil)
	require.Len(t, sets, 3)
	assert.Equal(t, "TP53", sets[0].name)
	assert.Len(t, sets[0].records, 2)
	assert.Equal(t, "KRAS", sets[1].name)
	assert.Equal(t, "-", sets[2].name)

	sets = splitByGene(records, []string{"KRAS", "TP53", "EGFR"})
	require.Len(t, sets, 2)
	assert.Equal(t, "KRAS", sets[0].name)
	assert.Equal(t, "TP53", sets[1].name)
}

func TestGenomicProjector(t *testing.T) {
	records := []variant.Record{
		{Chr: "12", Pos: 1000},
		{Chr: "12", Pos: 1400},
		{Chr: "7", Pos: 5},
		{Chr: "12"},
	}
	p := genomicProjector(records, nil, 400)
	require.NotNil(t, p)
	assert.Equal(t, "12", p.Chr)
	assert.Equal(t, int64(980), p.Start)
	assert.Equal(t, int64(1420), p.End)

	assert.Nil(t, genomicProjector([]variant.Record{{Chr: "1"}}, nil, 400))
}

func TestDetectInputFormat(t *testing.T) {
	assert.Equal(t, "vcf", detectInputFormat("calls.vcf.gz"))
	assert.Equal(t, "maf", detectInputFormat("cohort.maf"))
	assert.Equal(t, "maf", detectInputFormat("/study/data_mutations.txt"))
	assert.Equal(t, "vcf", detectInputFormat(writeFile(t, "calls.txt", "##fileformat=VCFv4.2\n")))
	assert.Equal(t, "maf", detectInputFormat(writeFile(t, "other.txt", "Hugo_Symbol\tChromosome\n")))
}

func TestRunRenderCancerGenes(t *testing.T) {
	input := writeFile(t, "input.maf", testMAF)
	s := testSettings(t)
	s.CancerGenes = writeFile(t, "cancerGeneList.tsv", "Hugo Symbol\tGene Type\nBRAF\tONCOGENE\n")

	var out bytes.Buffer
	require.NoError(t, runRender(s, []string{input}, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "BRAF\t"))
}

func TestRunRenderAssignsGenesFromGTF(t *testing.T) {
	vcfText := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"12\t150\t.\tA\tT\t.\tPASS\t.\n" +
		"12\t900\t.\tA\tT\t.\tPASS\t.\n"
	input := writeFile(t, "calls.vcf", vcfText)

	s := testSettings(t)
	s.GTF = writeFile(t, "genes.gtf", testGTF)

	var out bytes.Buffer
	require.NoError(t, runRender(s, []string{input}, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "G\t"))
	assert.True(t, strings.HasPrefix(lines[2], "-\t"))
}
