package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Overrides maps gene symbol to the transcript ID drawn for that gene.
type Overrides map[string]string

// LoadOverrides loads canonical transcript overrides from a Genome Nexus
// ensembl_biomart_canonical_transcripts_per_hgnc.txt file.
func LoadOverrides(path string) (Overrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open canonical overrides file: %w", err)
	}
	defer f.Close()

	return ParseOverrides(f)
}

// ParseOverrides reads the TSV content: hgnc_symbol in column 0 and
// genome_nexus_canonical_transcript in column 4, after one header line.
func ParseOverrides(reader io.Reader) (Overrides, error) {
	overrides := make(Overrides)
	scanner := bufio.NewScanner(reader)

	if !scanner.Scan() {
		return overrides, scanner.Err()
	}

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 5 {
			continue
		}
		gene, id := fields[0], fields[4]
		if gene == "" || id == "" || id == "nan" {
			continue
		}
		overrides[gene] = stripVersion(id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read canonical overrides: %w", err)
	}
	return overrides, nil
}

// Select picks the transcript to draw for gene: the override when it names a
// protein-coding transcript in ts, otherwise SelectCanonical.
func (o Overrides) Select(gene string, ts []*Transcript) *Transcript {
	if id, ok := o[gene]; ok {
		for _, t := range ts {
			if t.ID == id && t.IsProteinCoding() {
				return t
			}
		}
	}
	return SelectCanonical(ts)
}
