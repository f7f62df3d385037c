// Package maf reads variant records from MAF (Mutation Annotation Format) files.
package maf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// Standard MAF column names
const (
	ColChromosome            = "Chromosome"
	ColStartPosition         = "Start_Position"
	ColReferenceAllele       = "Reference_Allele"
	ColTumorSeqAllele2       = "Tumor_Seq_Allele2"
	ColHugoSymbol            = "Hugo_Symbol"
	ColVariantClassification = "Variant_Classification"
	ColHGVSpShort            = "HGVSp_Short"
	ColTumorSampleBarcode    = "Tumor_Sample_Barcode"
	ColMutationStatus        = "Mutation_Status"
	ColValidationStatus      = "Validation_Status"
	ColTAltCount             = "t_alt_count"
	ColTRefCount             = "t_ref_count"
	ColOccurrence            = "occurrence"
)

// AttrVAF is the attribute name of the tumor variant allele fraction.
const AttrVAF = "vaf"

// ColumnIndices holds the indices of important MAF columns.
type ColumnIndices struct {
	Chromosome            int
	StartPosition         int
	ReferenceAllele       int
	TumorSeqAllele2       int
	HugoSymbol            int
	VariantClassification int
	HGVSpShort            int
	TumorSampleBarcode    int
	MutationStatus        int
	ValidationStatus      int
	TAltCount             int
	TRefCount             int
	Occurrence            int
}

// Parser reads variant records from a MAF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    ColumnIndices
	byName     map[string]int
	numeric    []string
	headerLine string
}

// NewParser creates a new MAF parser for the given file.
// Supports both plain MAF and gzipped MAF (.maf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("read maf header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek maf file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// SetNumericColumns names extra columns copied into record attributes.
// Columns missing from the header are ignored; unparsable cells are skipped.
func (p *Parser) SetNumericColumns(cols ...string) {
	p.numeric = cols
}

// parseHeader reads and parses the MAF header line to find column indices.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	columns := strings.Split(headerLine, "\t")

	p.byName = make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := p.byName[col]; !dup {
			p.byName[col] = i
		}
	}
	idx := func(name string) int {
		if i, ok := p.byName[name]; ok {
			return i
		}
		return -1
	}

	p.columns = ColumnIndices{
		Chromosome:            idx(ColChromosome),
		StartPosition:         idx(ColStartPosition),
		ReferenceAllele:       idx(ColReferenceAllele),
		TumorSeqAllele2:       idx(ColTumorSeqAllele2),
		HugoSymbol:            idx(ColHugoSymbol),
		VariantClassification: idx(ColVariantClassification),
		HGVSpShort:            idx(ColHGVSpShort),
		TumorSampleBarcode:    idx(ColTumorSampleBarcode),
		MutationStatus:        idx(ColMutationStatus),
		ValidationStatus:      idx(ColValidationStatus),
		TAltCount:             idx(ColTAltCount),
		TRefCount:             idx(ColTRefCount),
		Occurrence:            idx(ColOccurrence),
	}

	for _, req := range []struct {
		name string
		idx  int
	}{
		{ColChromosome, p.columns.Chromosome},
		{ColStartPosition, p.columns.StartPosition},
		{ColReferenceAllele, p.columns.ReferenceAllele},
		{ColTumorSeqAllele2, p.columns.TumorSeqAllele2},
	} {
		if req.idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", req.name),
			}
		}
	}

	return nil
}

// Next reads the next record from the MAF file.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*variant.Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single MAF data line into a Record.
func (p *Parser) parseLine(line string) (*variant.Record, error) {
	fields := strings.Split(line, "\t")

	minCols := max(p.columns.Chromosome, p.columns.StartPosition, p.columns.ReferenceAllele, p.columns.TumorSeqAllele2)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[p.columns.StartPosition], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[p.columns.StartPosition]),
		}
	}

	ref := fields[p.columns.ReferenceAllele]
	alt := fields[p.columns.TumorSeqAllele2]

	// MAF uses "-" for the empty allele of indels.
	if alt == "-" {
		alt = ""
	}
	if ref == "-" {
		ref = ""
	}

	field := func(i int) string {
		if i >= 0 && i < len(fields) {
			return fields[i]
		}
		return ""
	}

	r := &variant.Record{
		Chr:   fields[p.columns.Chromosome],
		Pos:   pos,
		Ref:   ref,
		Alt:   alt,
		DT:    variant.DTSNVIndel,
		Class: variant.ClassUnknown,
		Gene:  field(p.columns.HugoSymbol),
	}

	if vc := field(p.columns.VariantClassification); vc != "" {
		r.Class = variant.ClassFromMAF(vc)
		if r.Class == variant.ClassFusion {
			r.DT = variant.DTFusionRNA
		}
	}
	r.Name, r.AAPos = ParseProteinChange(field(p.columns.HGVSpShort))

	if s := field(p.columns.Occurrence); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("invalid occurrence: %s", s),
			}
		}
		r.Occurrence = n
	}

	r.Rim1 = strings.EqualFold(field(p.columns.MutationStatus), "Germline")
	r.Rim2 = strings.EqualFold(field(p.columns.ValidationStatus), "Valid")

	altCount, errA := strconv.ParseFloat(field(p.columns.TAltCount), 64)
	refCount, errR := strconv.ParseFloat(field(p.columns.TRefCount), 64)
	if errA == nil && errR == nil && altCount+refCount > 0 {
		vaf := altCount / (altCount + refCount)
		r.SetAttr(AttrVAF, vaf)
		if sample := field(p.columns.TumorSampleBarcode); sample != "" {
			r.SetKeyed(AttrVAF, sample, vaf)
		}
	}

	for _, col := range p.numeric {
		i, ok := p.byName[col]
		if !ok {
			continue
		}
		if v, err := strconv.ParseFloat(field(i), 64); err == nil {
			r.SetAttr(col, v)
		}
	}

	r.ID = variant.StableID(r, p.lineNumber)
	return r, nil
}

// ParseProteinChange splits an HGVSp short notation such as "p.G12C" into
// the display name ("G12C") and the codon index (12). The codon index is 0
// when the notation carries no position.
func ParseProteinChange(hgvsp string) (string, int64) {
	name := strings.TrimPrefix(strings.TrimSpace(hgvsp), "p.")
	if name == "" || name == "." {
		return "", 0
	}

	start := strings.IndexAny(name, "0123456789")
	if start < 0 {
		return name, 0
	}
	end := start
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	aa, err := strconv.ParseInt(name[start:end], 10, 64)
	if err != nil {
		return name, 0
	}
	return name, aa
}

// Header returns the MAF header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}
