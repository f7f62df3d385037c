package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Imported reports whether the file was already imported with the same size
// and modification time.
func (s *Store) Imported(fp FileFingerprint) (bool, error) {
	var size int64
	var mod time.Time
	err := s.db.QueryRow("SELECT size, mod_time FROM imports WHERE path = ?", fp.Path).Scan(&size, &mod)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query import %s: %w", fp.Path, err)
	}
	return size == fp.Size && mod.Equal(fp.ModTime.UTC().Truncate(time.Microsecond)), nil
}

// RecordImport stores the fingerprint of an imported file.
func (s *Store) RecordImport(fp FileFingerprint, records int) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO imports VALUES (?, ?, ?, ?, ?)",
		fp.Path, fp.Size, fp.ModTime.UTC().Truncate(time.Microsecond), int64(records), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record import %s: %w", fp.Path, err)
	}
	return nil
}
