package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// Score is a numeric value attached to a stored record. Sample is empty for
// plain attributes and names the sample for per-sample values.
type Score struct {
	ID     string
	Name   string
	Sample string
	Value  float64
}

// scoreKey is the composite key for deduplicating scores before writing.
type scoreKey struct {
	id, name, sample string
}

// WriteRecords batch-inserts records into DuckDB using the Appender API.
// Records whose ID is already stored, or repeated within the batch, are
// skipped. Attrs and Keyed values are written to variant_scores. It returns
// the number of records written. Records without an ID get a stable one
// assigned in place.
func (s *Store) WriteRecords(records []variant.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	seen, err := storedIDs(ctx, conn)
	if err != nil {
		return 0, err
	}
	var seq int64
	if err := conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM variant_records").Scan(&seq); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}

	recApp, err := newAppender(conn, "variant_records")
	if err != nil {
		return 0, err
	}
	defer recApp.Close()
	scoreApp, err := newAppender(conn, "variant_scores")
	if err != nil {
		return 0, err
	}
	defer scoreApp.Close()

	written := 0
	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = variant.StableID(r, i)
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		seq++
		if err := recApp.AppendRow(
			seq, r.ID, r.Chr, r.Pos, r.Ref, r.Alt,
			int32(r.DT), r.Class, r.Name, int32(r.Occurrence), r.AAPos,
			int8(r.Side), r.Partner, r.Gene, r.Rim1, r.Rim2,
		); err != nil {
			return written, fmt.Errorf("append record %s: %w", r.ID, err)
		}
		for _, sc := range recordScores(r) {
			if err := scoreApp.AppendRow(sc.ID, sc.Name, sc.Sample, sc.Value); err != nil {
				return written, fmt.Errorf("append score %s/%s: %w", sc.ID, sc.Name, err)
			}
		}
		written++
	}

	if err := recApp.Flush(); err != nil {
		return written, fmt.Errorf("flush records: %w", err)
	}
	if err := scoreApp.Flush(); err != nil {
		return written, fmt.Errorf("flush scores: %w", err)
	}
	return written, nil
}

// WriteScores inserts or replaces externally computed scores, e.g. a
// pathogenicity score per variant. Later duplicates in the batch win.
func (s *Store) WriteScores(scores []Score) error {
	if len(scores) == 0 {
		return nil
	}

	last := make(map[scoreKey]int, len(scores))
	for i, sc := range scores {
		last[scoreKey{sc.ID, sc.Name, sc.Sample}] = i
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO variant_scores VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare score insert: %w", err)
	}
	defer stmt.Close()

	for i, sc := range scores {
		if last[scoreKey{sc.ID, sc.Name, sc.Sample}] != i {
			continue
		}
		if _, err := stmt.Exec(sc.ID, sc.Name, sc.Sample, sc.Value); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert score %s/%s: %w", sc.ID, sc.Name, err)
		}
	}
	return tx.Commit()
}

// ClearRecords removes all stored records, scores and import metadata.
func (s *Store) ClearRecords() error {
	for _, table := range []string{"variant_scores", "variant_records", "imports"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM variant_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// QueryRecords returns the records on chr within [start, end], in import
// order. The chromosome matches with or without a "chr" prefix.
func (s *Store) QueryRecords(chr string, start, end int64) ([]variant.Record, error) {
	norm := variant.NormalizeChr(chr)
	records, err := s.queryRecords("r.chrom IN (?, ?) AND r.pos BETWEEN ? AND ?",
		norm, "chr"+norm, start, end)
	if err != nil {
		return nil, fmt.Errorf("query region %s:%d-%d: %w", chr, start, end, err)
	}
	return records, nil
}

// QueryGene returns all records of a gene, in import order.
func (s *Store) QueryGene(gene string) ([]variant.Record, error) {
	records, err := s.queryRecords("r.gene = ?", gene)
	if err != nil {
		return nil, fmt.Errorf("query gene %s: %w", gene, err)
	}
	return records, nil
}

// Genes returns the distinct gene symbols in first-import order.
func (s *Store) Genes() ([]string, error) {
	rows, err := s.db.Query(`SELECT gene FROM variant_records
		WHERE gene <> '' GROUP BY gene ORDER BY MIN(seq)`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	var genes []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		genes = append(genes, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genes: %w", err)
	}
	return genes, nil
}

func (s *Store) queryRecords(where string, args ...any) ([]variant.Record, error) {
	rows, err := s.db.Query(`SELECT
		r.id, r.chrom, r.pos, r.ref, r.alt, r.dt, r.class, r.name,
		r.occurrence, r.aa_pos, r.side, r.partner, r.gene, r.rim1, r.rim2
		FROM variant_records r
		WHERE `+where+`
		ORDER BY r.seq`, args...)
	if err != nil {
		return nil, err
	}
	records, err := scanRecords(rows)
	rows.Close()
	if err != nil || len(records) == 0 {
		return records, err
	}

	index := make(map[string]int, len(records))
	for i := range records {
		index[records[i].ID] = i
	}

	rows, err = s.db.Query(`SELECT s.id, s.name, s.sample, s.value
		FROM variant_scores s
		JOIN variant_records r ON r.id = s.id
		WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Sample, &sc.Value); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		i, ok := index[sc.ID]
		if !ok {
			continue
		}
		if sc.Sample == "" {
			records[i].SetAttr(sc.Name, sc.Value)
		} else {
			records[i].SetKeyed(sc.Name, sc.Sample, sc.Value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return records, nil
}

// scanRecords scans rows into Record slices.
func scanRecords(rows *sql.Rows) ([]variant.Record, error) {
	var records []variant.Record
	for rows.Next() {
		var r variant.Record
		var dt, occurrence int32
		var side int8
		if err := rows.Scan(
			&r.ID, &r.Chr, &r.Pos, &r.Ref, &r.Alt, &dt, &r.Class, &r.Name,
			&occurrence, &r.AAPos, &side, &r.Partner, &r.Gene, &r.Rim1, &r.Rim2,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.DT = variant.DataType(dt)
		r.Occurrence = int(occurrence)
		r.Side = variant.Side(side)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// recordScores flattens a record's Attrs and Keyed maps into score rows.
func recordScores(r *variant.Record) []Score {
	var out []Score
	for name, v := range r.Attrs {
		out = append(out, Score{ID: r.ID, Name: name, Value: v})
	}
	for field, m := range r.Keyed {
		for sample, v := range m {
			if sample == "" {
				continue
			}
			out = append(out, Score{ID: r.ID, Name: field, Sample: sample, Value: v})
		}
	}
	return out
}

func storedIDs(ctx context.Context, conn *sql.Conn) (map[string]bool, error) {
	rows, err := conn.QueryContext(ctx, "SELECT id FROM variant_records")
	if err != nil {
		return nil, fmt.Errorf("query stored ids: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

func newAppender(conn *sql.Conn, table string) (*goduckdb.Appender, error) {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return nil, fmt.Errorf("create %s appender: %w", table, err)
	}
	return appender, nil
}
