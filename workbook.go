package moneybook

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// A workbook is the on-disk form of a database: a zip archive with one
// <table>.jsonl entry per table plus a manifest. Tables are written
// independently; the container is not transactional across tables.

const manifestName = "manifest.json"

// workbookManifest describes the archive contents. It is informative: a
// workbook without one still loads.
type workbookManifest struct {
	Version string   `json:"version"`
	SavedAt string   `json:"savedAt"`
	Tables  []string `json:"tables"`
}

// WriteWorkbook writes the store as a workbook archive. Every schema table
// is written, empty ones included, then any extra table the store carries,
// so unknown tables survive a load/save cycle.
func WriteWorkbook(w io.Writer, s *Store) error {
	tables := slices.Clone(tableNames)
	for name := range s.tables {
		if !isKnownTable(name) {
			tables = append(tables, name)
		}
	}
	slices.Sort(tables[len(tableNames):])

	zw := zip.NewWriter(w)
	manifest := workbookManifest{
		Version: appVersion,
		SavedAt: time.Now().Format(DatetimeFormat),
		Tables:  tables,
	}
	mw, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("cannot create manifest entry: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	for _, table := range tables {
		buf, err := s.ExportTable(table)
		if err != nil {
			return err
		}
		tw, err := zw.Create(table + ".jsonl")
		if err != nil {
			return fmt.Errorf("cannot create entry for table %s: %w", table, err)
		}
		if _, err := tw.Write(buf); err != nil {
			return fmt.Errorf("cannot write table %s: %w", table, err)
		}
	}
	return zw.Close()
}

// SaveWorkbook writes the store to path. The archive is written to a
// temporary file first and renamed into place, so a crash mid-save never
// truncates the existing workbook.
func SaveWorkbook(path string, s *Store) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory for workbook %q: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temporary workbook: %w", err)
	}
	if err := WriteWorkbook(tmp, s); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot replace workbook %q: %w", path, err)
	}
	return nil
}

// ReadWorkbook reads a workbook archive into per-table buffers keyed by
// table name. The manifest, when present, must be well formed but its table
// list is not enforced against the entries.
func ReadWorkbook(r io.ReaderAt, size int64) (map[string][]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook archive: %w", err)
	}
	buffers := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("cannot open workbook entry %q: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("cannot read workbook entry %q: %w", f.Name, err)
		}
		if f.Name == manifestName {
			var manifest workbookManifest
			if err := json.Unmarshal(content, &manifest); err != nil {
				return nil, fmt.Errorf("malformed manifest: %w", err)
			}
			continue
		}
		if !strings.HasSuffix(f.Name, ".jsonl") {
			continue
		}
		buffers[strings.TrimSuffix(f.Name, ".jsonl")] = content
	}
	return buffers, nil
}

// LoadWorkbook reads the workbook at path into per-table buffers.
func LoadWorkbook(path string) (map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook %q: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat workbook %q: %w", path, err)
	}
	return ReadWorkbook(f, info.Size())
}

// LoadTables fills the store from per-table buffers: decode everything, run
// pending migrations, then sweep relationships. Any decode or migration
// error fails the load; relationship violations in historical data are
// logged and kept. Tables a migration touched are dirty afterwards, freshly
// decoded ones are not.
func (s *Store) LoadTables(buffers map[string][]byte) error {
	for table, buf := range buffers {
		records, err := DecodeTable(bytes.NewReader(buf), table)
		if err != nil {
			return err
		}
		s.setTable(table, records)
	}
	if err := s.Migrate(); err != nil {
		return err
	}
	for _, violation := range s.ValidateRelationships() {
		s.log.Warn("relationship violation", "err", violation)
	}
	return nil
}

// LoadStore loads the workbook at path into a fresh store, migrated and
// swept.
func LoadStore(path string) (*Store, error) {
	buffers, err := LoadWorkbook(path)
	if err != nil {
		return nil, err
	}
	s := NewStore()
	if err := s.LoadTables(buffers); err != nil {
		return nil, err
	}
	return s, nil
}
