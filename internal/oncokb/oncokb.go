// Package oncokb loads the OncoKB cancer gene list, used to restrict rendered
// tracks to cancer genes.
package oncokb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Gene holds OncoKB gene-level annotations.
type Gene struct {
	HugoSymbol string
	GeneType   string // "ONCOGENE", "TSG", or "ONCOGENE,TSG"
}

// CancerGeneList maps Hugo Symbol to Gene.
type CancerGeneList map[string]*Gene

// IsCancerGene returns true if the gene is in the cancer gene list.
func (c CancerGeneList) IsCancerGene(gene string) bool {
	_, ok := c[gene]
	return ok
}

// Keep returns the genes that are in the list, preserving order.
func (c CancerGeneList) Keep(genes []string) []string {
	var out []string
	for _, g := range genes {
		if c.IsCancerGene(g) {
			out = append(out, g)
		}
	}
	return out
}

// Load reads an OncoKB cancerGeneList.tsv file.
func Load(path string) (CancerGeneList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cancer gene list: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a cancer gene list. The header must have the columns
// "Hugo Symbol" and "Gene Type".
func Parse(r io.Reader) (CancerGeneList, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("cancer gene list: empty file")
	}
	header := strings.Split(scanner.Text(), "\t")

	hugoIdx := -1
	geneTypeIdx := -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Hugo Symbol":
			hugoIdx = i
		case "Gene Type":
			geneTypeIdx = i
		}
	}
	if hugoIdx < 0 {
		return nil, fmt.Errorf("cancer gene list: missing 'Hugo Symbol' column")
	}
	if geneTypeIdx < 0 {
		return nil, fmt.Errorf("cancer gene list: missing 'Gene Type' column")
	}

	cgl := make(CancerGeneList)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= max(hugoIdx, geneTypeIdx) {
			continue
		}
		hugo := strings.TrimSpace(fields[hugoIdx])
		if hugo == "" {
			continue
		}
		cgl[hugo] = &Gene{HugoSymbol: hugo, GeneType: strings.TrimSpace(fields[geneTypeIdx])}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cancer gene list: %w", err)
	}

	return cgl, nil
}
