package vcf

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

const maxLineSize = 16 << 20

// InfoDef is a ##INFO header declaration.
type InfoDef struct {
	Number string // "1", "A", "R", "." ...
	Type   string // Integer, Float, Flag, Character or String
}

// numeric reports whether values of this key can become record attributes.
// Undeclared keys are tried as numbers.
func (d InfoDef) numeric() bool {
	switch d.Type {
	case "String", "Flag", "Character":
		return false
	}
	return true
}

// Header holds what the parser learned from the meta lines and the #CHROM line.
type Header struct {
	Meta    []string           // ## lines, verbatim
	Samples []string           // sample columns after FORMAT
	Info    map[string]InfoDef // declared INFO keys
}

// Parser reads a VCF file and yields one variant.Record per alternate allele.
type Parser struct {
	scanner *bufio.Scanner
	closers []io.Closer
	line    int
	header  Header
	pending []variant.Record
}

// NewParser opens a plain or gzipped VCF file. "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	br := bufio.NewReader(f)
	closers := []io.Closer{f}
	var src io.Reader = br
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		src = gz
		closers = append([]io.Closer{gz}, closers...)
	}

	p, err := newParser(src, closers)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, err
	}
	return p, nil
}

// NewParserFromReader reads VCF text from r. The caller owns r.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return newParser(r, nil)
}

func newParser(r io.Reader, closers []io.Closer) (*Parser, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	p := &Parser{
		scanner: sc,
		closers: closers,
		header:  Header{Info: make(map[string]InfoDef)},
	}
	if err := p.readHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) scan() (string, bool, error) {
	if !p.scanner.Scan() {
		return "", false, p.scanner.Err()
	}
	p.line++
	return strings.TrimRight(p.scanner.Text(), "\r"), true, nil
}

func (p *Parser) readHeader() error {
	for {
		line, ok, err := p.scan()
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if !ok {
			return &ParseError{Line: p.line, Message: "no #CHROM header line found"}
		}

		switch {
		case strings.HasPrefix(line, "##"):
			p.header.Meta = append(p.header.Meta, line)
			if body, ok := strings.CutPrefix(line, "##INFO=<"); ok {
				id, def := parseInfoDef(strings.TrimSuffix(body, ">"))
				if id != "" {
					p.header.Info[id] = def
				}
			}
		case strings.HasPrefix(line, "#CHROM"):
			if fields := strings.Split(line, "\t"); len(fields) > 9 {
				p.header.Samples = fields[9:]
			}
			return nil
		default:
			return &ParseError{Line: p.line, Message: "expected #CHROM header line"}
		}
	}
}

// parseInfoDef reads ID, Number and Type from the body of an ##INFO line.
// Description may hold commas, so scanning stops at it.
func parseInfoDef(body string) (string, InfoDef) {
	var id string
	var def InfoDef
	for body != "" {
		var kv string
		if strings.HasPrefix(body, "Description=") {
			break
		}
		kv, body, _ = strings.Cut(body, ",")
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "ID":
			id = value
		case "Number":
			def.Number = value
		case "Type":
			def.Type = value
		}
	}
	return id, def
}

// Header returns the parsed header.
func (p *Parser) Header() *Header {
	return &p.header
}

// SampleNames returns the sample columns, nil when there are none.
func (p *Parser) SampleNames() []string {
	return p.header.Samples
}

// NextVariant reads the next data line without converting it.
// Returns nil, nil at end of input.
func (p *Parser) NextVariant() (*Variant, error) {
	for {
		line, ok, err := p.scan()
		if err != nil {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if !ok {
			return nil, nil
		}
		if line != "" {
			return p.parseLine(line)
		}
	}
}

// Next returns the next record, splitting multi-allelic lines.
// Returns nil, nil at end of input.
func (p *Parser) Next() (*variant.Record, error) {
	for len(p.pending) == 0 {
		v, err := p.NextVariant()
		if err != nil || v == nil {
			return nil, err
		}
		recs, err := Records(v, &p.header, p.line)
		if err != nil {
			return nil, &ParseError{Line: p.line, Message: err.Error()}
		}
		p.pending = recs
	}
	rec := p.pending[0]
	p.pending = p.pending[1:]
	return &rec, nil
}

func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.line,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}
	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{Line: p.line, Message: fmt.Sprintf("invalid position: %s", fields[1])}
	}

	v := &Variant{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alts:   strings.Split(fields[4], ","),
		Filter: fields[6],
		Info:   parseInfo(fields[7]),
	}
	if fields[5] != "." {
		v.Qual, _ = strconv.ParseFloat(fields[5], 64)
	}
	if len(fields) > 8 {
		v.Format = strings.Split(fields[8], ":")
		v.Samples = make([][]string, 0, len(fields)-9)
		for _, s := range fields[9:] {
			v.Samples = append(v.Samples, strings.Split(s, ":"))
		}
	}
	return v, nil
}

func parseInfo(info string) map[string]string {
	out := make(map[string]string)
	if info == "." {
		return out
	}
	for _, kv := range strings.Split(info, ";") {
		if key, value, _ := strings.Cut(kv, "="); key != "" {
			out[key] = value
		}
	}
	return out
}

// LineNumber returns the current line number.
func (p *Parser) LineNumber() int {
	return p.line
}

// Close releases the gzip stream and file, if the parser opened them.
func (p *Parser) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}

// ParseError reports a malformed VCF line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
