package transcript

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Filter restricts which GTF transcripts are kept. Empty fields match anything.
type Filter struct {
	Gene         string // gene_name
	TranscriptID string // transcript_id without version
}

func (f Filter) match(attrs map[string]string) bool {
	if f.Gene != "" && attrs["gene_name"] != f.Gene {
		return false
	}
	if f.TranscriptID != "" && stripVersion(attrs["transcript_id"]) != stripVersion(f.TranscriptID) {
		return false
	}
	return true
}

// LoadGTF reads transcripts from a GENCODE GTF file (plain or .gz).
func LoadGTF(path string, f Filter) ([]*Transcript, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GTF file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return ParseGTF(reader, f)
}

// ParseGTF parses GTF records and assembles transcripts with exon CDS spans.
// Transcripts are returned sorted by ID.
func ParseGTF(reader io.Reader, f Filter) ([]*Transcript, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	transcripts := make(map[string]*Transcript)
	exons := make(map[string][]Exon)
	cds := make(map[string][][2]int64)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			continue
		}
		attrs := parseAttributes(fields[8])
		if !f.match(attrs) {
			continue
		}
		id := stripVersion(attrs["transcript_id"])
		if id == "" {
			continue
		}
		start, err1 := strconv.ParseInt(fields[3], 10, 64)
		end, err2 := strconv.ParseInt(fields[4], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}

		switch fields[2] {
		case "transcript":
			strand := int8(1)
			if fields[6] == "-" {
				strand = -1
			}
			transcripts[id] = &Transcript{
				ID:          id,
				GeneID:      stripVersion(attrs["gene_id"]),
				GeneName:    attrs["gene_name"],
				Chrom:       fields[0],
				Start:       start,
				End:         end,
				Strand:      strand,
				Biotype:     attrs["transcript_type"],
				IsCanonical: strings.Contains(attrs["tag"], "Ensembl_canonical"),
			}
		case "exon":
			num, _ := strconv.Atoi(attrs["exon_number"])
			exons[id] = append(exons[id], Exon{Number: num, Start: start, End: end})
		case "CDS", "stop_codon":
			cds[id] = append(cds[id], [2]int64{start, end})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	out := make([]*Transcript, 0, len(transcripts))
	for id, t := range transcripts {
		ex := exons[id]
		if len(ex) == 0 {
			continue
		}
		sort.Slice(ex, func(i, j int) bool { return ex[i].Start < ex[j].Start })

		if regions := cds[id]; len(regions) > 0 {
			t.CDSStart, t.CDSEnd = regions[0][0], regions[0][1]
			for _, r := range regions[1:] {
				t.CDSStart = min(t.CDSStart, r[0])
				t.CDSEnd = max(t.CDSEnd, r[1])
			}
			for i := range ex {
				e := &ex[i]
				if e.End >= t.CDSStart && e.Start <= t.CDSEnd {
					e.CDSStart = max(e.Start, t.CDSStart)
					e.CDSEnd = min(e.End, t.CDSEnd)
				}
			}
		}
		t.Exons = ex
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SelectCanonical picks the canonical protein-coding transcript, falling back
// to the longest CDS. Returns nil if none is protein coding.
func SelectCanonical(ts []*Transcript) *Transcript {
	var best *Transcript
	for _, t := range ts {
		if !t.IsProteinCoding() {
			continue
		}
		if t.IsCanonical {
			return t
		}
		if best == nil || CDSLength(t) > CDSLength(best) {
			best = t
		}
	}
	return best
}

// parseAttributes parses the GTF attribute column: key "value"; key "value"; ...
// Repeated keys (e.g. tag) are joined with commas.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"")
		if prev, dup := attrs[key]; dup {
			value = prev + "," + value
		}
		attrs[key] = value
	}
	return attrs
}

// stripVersion removes the version suffix from an Ensembl ID.
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
