package moneybook

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// EncodeTable writes a table's records to w in JSONL format, one canonical
// JSON object per line. Fields follow the schema registry order; fields not
// declared for the table come last, alphabetically. Numbers are written
// unquoted, absent optional values as null. Encoding the same records twice
// yields byte-identical output.
func EncodeTable(w io.Writer, table string, records []Record) error {
	for _, rec := range records {
		line, err := encodeRecord(table, rec)
		if err != nil {
			return fmt.Errorf("table %s, record %q: %w", table, rec.ID(), err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write table %s: %w", table, err)
		}
	}
	return nil
}

// encodeRecord marshals a single record with its fields in canonical order.
func encodeRecord(table string, rec Record) ([]byte, error) {
	var w jsonObjectWriter
	for _, field := range fieldOrder(table, rec) {
		if rec[field] == nil {
			w.Null(field)
			continue
		}
		w.Append(field, rec[field])
	}
	return w.MarshalJSON()
}

// fieldOrder returns the record's present fields: declared ones first in
// schema order, undeclared ones after, sorted.
func fieldOrder(table string, rec Record) []string {
	order := make([]string, 0, len(rec))
	declared := make(map[string]bool, len(rec))
	for _, field := range tableFields[table] {
		if rec.Has(field) {
			order = append(order, field)
			declared[field] = true
		}
	}
	var extras []string
	for field := range rec {
		if !declared[field] {
			extras = append(extras, field)
		}
	}
	slices.Sort(extras)
	return append(order, extras...)
}

// DecodeTable reads a table from JSONL data. Every non-empty line must be a
// flat JSON object; numbers are decoded exactly into decimals, never through
// float64. Any malformed line fails the whole decode.
func DecodeTable(r io.Reader, table string) ([]Record, error) {
	records := make([]Record, 0)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("table %s, line %d: %w", table, line, err)
		}
		rec, err := normalizeRecord(obj)
		if err != nil {
			return nil, fmt.Errorf("table %s, line %d: %w", table, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("table %s: error reading input: %w", table, err)
	}
	return records, nil
}

// ExportTable encodes one table into its canonical buffer.
func (s *Store) ExportTable(table string) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTable(&buf, table, s.tables[table]); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportTables encodes every table of the schema into its canonical buffer,
// an immutable snapshot of the whole store.
func (s *Store) ExportTables() (map[string][]byte, error) {
	buffers := make(map[string][]byte, len(tableNames))
	for _, table := range tableNames {
		buf, err := s.ExportTable(table)
		if err != nil {
			return nil, err
		}
		buffers[table] = buf
	}
	return buffers, nil
}
