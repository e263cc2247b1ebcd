package duckdb

import (
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

// SourceFingerprint is the fingerprint of one model input, tagged with its
// role ("dna", "genes" or "tus").
type SourceFingerprint struct {
	Role string
	FileFingerprint
}

// Fresh reports whether the stored model was built from exactly sources.
// A store holding no recorded sources is never fresh.
func (s *Store) Fresh(sources []SourceFingerprint) (bool, error) {
	rows, err := s.db.Query(`SELECT role, path, size, mod_time FROM load_sources`)
	if err != nil {
		return false, fmt.Errorf("query load sources: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]FileFingerprint)
	for rows.Next() {
		var role string
		var fp FileFingerprint
		if err := rows.Scan(&role, &fp.Path, &fp.Size, &fp.ModTime); err != nil {
			return false, fmt.Errorf("scan load source: %w", err)
		}
		stored[role] = fp
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate load sources: %w", err)
	}

	if len(stored) == 0 || len(stored) != len(sources) {
		return false, nil
	}
	for _, src := range sources {
		fp, ok := stored[src.Role]
		if !ok || fp.Path != src.Path || fp.Size != src.Size || !fp.ModTime.Equal(src.ModTime.UTC().Truncate(time.Microsecond)) {
			return false, nil
		}
	}
	return true, nil
}
