package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inodb/vibe-skewer/internal/maf"
	"github.com/inodb/vibe-skewer/internal/variant"
	"github.com/inodb/vibe-skewer/internal/vcf"
)

// readRecords loads all records of a MAF or VCF file. format may be empty to
// detect it from the file name or content.
func readRecords(path, format string, numericCols []string) ([]variant.Record, error) {
	if format == "" {
		format = detectInputFormat(path)
	}

	var r variant.Reader
	switch format {
	case "maf":
		p, err := maf.NewParser(path)
		if err != nil {
			return nil, err
		}
		p.SetNumericColumns(numericCols...)
		r = p
	case "vcf":
		p, err := vcf.NewParser(path)
		if err != nil {
			return nil, err
		}
		r = p
	default:
		return nil, fmt.Errorf("unknown input format %q (want maf or vcf)", format)
	}
	defer r.Close()

	records, err := variant.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// detectInputFormat detects the input file format based on extension or content.
func detectInputFormat(path string) string {
	lowerPath := strings.ToLower(path)

	// Handle gzipped files
	lowerPath = strings.TrimSuffix(lowerPath, ".gz")

	if strings.HasSuffix(lowerPath, ".vcf") {
		return "vcf"
	}
	if strings.HasSuffix(lowerPath, ".maf") {
		return "maf"
	}

	// Check for cBioPortal MAF filenames
	baseName := filepath.Base(lowerPath)
	if baseName == "data_mutations.txt" || baseName == "data_mutations_extended.txt" {
		return "maf"
	}

	if path == "-" {
		return "maf"
	}

	file, err := os.Open(path)
	if err != nil {
		return "maf"
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil || n == 0 {
		return "maf"
	}

	content := string(buf[:n])

	if strings.HasPrefix(content, "##fileformat=VCF") || strings.HasPrefix(content, "#CHROM") {
		return "vcf"
	}
	return "maf"
}
