package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-skewer/internal/duckdb"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import --db <store> [flags] <input-file...>",
		Short: "Import MAF or VCF records into a DuckDB store",
		Long: `Import records into a DuckDB store for repeated rendering. Files that were
already imported with the same size and modification time are skipped.
With --scores, a tab-delimited file with columns id, name, value and an
optional sample column is merged into the stored attributes. With
--alphamissense, AlphaMissense pathogenicity is joined onto stored records
by chrom, pos, ref and alt and stored as the am_score attribute.`,
		Example: `  vibe-skewer import --db cohort.duckdb data_mutations.txt
  vibe-skewer import --db cohort.duckdb --scores scores.tsv
  vibe-skewer import --db cohort.duckdb --alphamissense AlphaMissense_hg38.tsv.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			if s.DB == "" {
				return fmt.Errorf("--%s is required", FlagDB)
			}
			replace, _ := cmd.Flags().GetBool(FlagReplace)
			scores, _ := cmd.Flags().GetString(FlagScores)
			am, _ := cmd.Flags().GetString(FlagAlphaMissense)
			if len(args) == 0 && scores == "" && am == "" {
				return fmt.Errorf("input file argument, --%s or --%s required", FlagScores, FlagAlphaMissense)
			}

			logger, err := newLogger(s.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := duckdb.Open(s.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			if replace {
				if err := store.ClearRecords(); err != nil {
					return err
				}
			}
			for _, path := range args {
				if err := importFile(store, s, path, logger); err != nil {
					return err
				}
			}
			if scores != "" {
				if err := importScores(store, scores, logger); err != nil {
					return err
				}
			}
			if am != "" {
				n, err := store.LoadAlphaMissense(am)
				if err != nil {
					return err
				}
				logger.Info("scored records with AlphaMissense", zap.String("path", am), zap.Int64("records", n))
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.String(FlagDB, "", "DuckDB store to write")
	fs.String(FlagInputFormat, "", "Input format: maf, vcf (auto-detected if not specified)")
	fs.StringSlice(FlagNumericColumns, nil, "Extra numeric MAF columns to read")
	fs.Bool(FlagReplace, false, "Clear the store before importing")
	fs.String(FlagScores, "", "Tab-delimited scores file to merge")
	fs.String(FlagAlphaMissense, "", "AlphaMissense TSV to join onto stored records")

	return cmd
}

// importFile writes the records of one file unless it was already imported.
func importFile(store *duckdb.Store, s *Settings, path string, logger *zap.Logger) error {
	fp, err := duckdb.StatFile(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	done, err := store.Imported(fp)
	if err != nil {
		return err
	}
	if done {
		logger.Info("already imported, skipping", zap.String("path", path))
		return nil
	}

	records, err := readRecords(path, s.InputFormat, s.NumericColumns)
	if err != nil {
		return err
	}
	n, err := store.WriteRecords(records)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	if err := store.RecordImport(fp, n); err != nil {
		return err
	}
	logger.Info("imported records",
		zap.String("path", path),
		zap.Int("read", len(records)),
		zap.Int("written", n))
	return nil
}

func importScores(store *duckdb.Store, path string, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open scores file: %w", err)
	}
	defer f.Close()

	scores, err := parseScores(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := store.WriteScores(scores); err != nil {
		return err
	}
	logger.Info("imported scores", zap.String("path", path), zap.Int("scores", len(scores)))
	return nil
}

// parseScores reads a tab-delimited file with header columns id, name, value
// and optionally sample, in any order.
func parseScores(r io.Reader) ([]duckdb.Score, error) {
	scanner := bufio.NewScanner(r)
	col := map[string]int{"id": -1, "name": -1, "value": -1, "sample": -1}
	header := false
	line := 0
	var scores []duckdb.Score

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if !header {
			for i, f := range fields {
				if _, ok := col[strings.ToLower(f)]; ok {
					col[strings.ToLower(f)] = i
				}
			}
			for _, req := range []string{"id", "name", "value"} {
				if col[req] < 0 {
					return nil, fmt.Errorf("missing required column %q", req)
				}
			}
			header = true
			continue
		}

		get := func(name string) string {
			if i := col[name]; i >= 0 && i < len(fields) {
				return fields[i]
			}
			return ""
		}
		v, err := strconv.ParseFloat(get("value"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q", line, get("value"))
		}
		scores = append(scores, duckdb.Score{
			ID:     get("id"),
			Name:   get("name"),
			Sample: get("sample"),
			Value:  v,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return scores, nil
}
