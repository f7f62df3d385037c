package duckdb

import (
	"fmt"
	"strings"
)

// ScoreAlphaMissense is the score name AlphaMissense pathogenicity is stored under.
const ScoreAlphaMissense = "am_score"

// normChrom strips a leading "chr" inside SQL.
func normChrom(col string) string {
	return fmt.Sprintf("CASE WHEN lower(%[1]s) LIKE 'chr%%' THEN substr(%[1]s, 4) ELSE %[1]s END", col)
}

// LoadAlphaMissense joins an AlphaMissense TSV (plain or gzipped) against the
// stored records by chrom, pos, ref and alt, and stores the pathogenicity of
// every match as the am_score attribute. The file has 3 comment lines, then a
// header:
//
//	#CHROM  POS  REF  ALT  genome  uniprot_id  transcript_id  protein_variant  am_pathogenicity  am_class
//
// It returns the number of records scored.
func (s *Store) LoadAlphaMissense(tsvPath string) (int64, error) {
	// The file has one row per transcript; scores per variant are identical,
	// so MAX only collapses duplicates.
	query := fmt.Sprintf(`INSERT OR REPLACE INTO variant_scores
		SELECT r.id, '%s', '', MAX(CAST(a.column8 AS DOUBLE))
		FROM read_csv('%s', delim='\t', header=false, skip=4,
			columns={
				'column0': 'VARCHAR',
				'column1': 'BIGINT',
				'column2': 'VARCHAR',
				'column3': 'VARCHAR',
				'column4': 'VARCHAR',
				'column5': 'VARCHAR',
				'column6': 'VARCHAR',
				'column7': 'VARCHAR',
				'column8': 'VARCHAR',
				'column9': 'VARCHAR'
			}) a
		JOIN variant_records r
			ON %s = %s
			AND r.pos = a.column1 AND r.ref = a.column2 AND r.alt = a.column3
		GROUP BY r.id`,
		ScoreAlphaMissense, strings.ReplaceAll(tsvPath, "'", "''"),
		normChrom("r.chrom"), normChrom("a.column0"))

	res, err := s.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("loading AlphaMissense data: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
