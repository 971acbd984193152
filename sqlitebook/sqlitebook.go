// Package sqlitebook bridges a moneybook store to SQLite files, so a
// database can be inspected or post-processed with ordinary SQL tooling.
//
// Export writes one SQL table per schema table with columns in schema order;
// tables outside the schema are not exported. Decimals are stored as TEXT to
// stay exact, booleans as INTEGER 0/1, absent values as NULL. A sidecar table
// records each field's kind so Import can rebuild typed records. No SQL
// constraints are declared; the store remains the authority on relationships.
package sqlitebook

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/etnz/moneybook"
)

// kindsTable is the sidecar that maps every exported field to its kind.
const kindsTable = "moneybook_fields"

const (
	kindText    = "text"
	kindDecimal = "decimal"
	kindBool    = "bool"
)

// Export snapshots the store into the SQLite file at path. Existing tables
// with the same names are replaced. Row order follows the store.
func Export(ctx context.Context, path string, st *moneybook.Store) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", kindsTable)); err != nil {
		return fmt.Errorf("failed to reset kinds table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE %q (tbl TEXT NOT NULL, field TEXT NOT NULL, kind TEXT NOT NULL, PRIMARY KEY (tbl, field))",
		kindsTable)); err != nil {
		return fmt.Errorf("failed to create kinds table: %w", err)
	}

	for _, table := range moneybook.TableNames() {
		records := st.Table(table)
		columns, kinds, err := tableColumns(table, records)
		if err != nil {
			return err
		}
		if err := exportTable(ctx, tx, table, columns, kinds, records); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// exportTable creates one SQL table and inserts all its records.
func exportTable(ctx context.Context, tx *sql.Tx, table string, columns []string, kinds map[string]string, records []moneybook.Record) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		return fmt.Errorf("failed to reset table %s: %w", table, err)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		affinity := "TEXT"
		if kinds[col] == kindBool {
			affinity = "INTEGER"
		}
		defs[i] = fmt.Sprintf("%q %s", col, affinity)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	for field, kind := range kinds {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %q (tbl, field, kind) VALUES (?, ?, ?)", kindsTable),
			table, field, kind,
		); err != nil {
			return fmt.Errorf("failed to record kind of %s.%s: %w", table, field, err)
		}
	}

	if len(records) == 0 {
		return nil
	}
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = fmt.Sprintf("%q", col)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %q (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for table %s: %w", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			args[i] = bindValue(rec[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into table %s: %w", table, err)
		}
	}
	return nil
}

// tableColumns returns the column list for a table (declared fields in
// schema order, extras after, sorted) and the kind of every field that holds
// at least one value. Mixed kinds within one field are an error.
func tableColumns(table string, records []moneybook.Record) ([]string, map[string]string, error) {
	columns := moneybook.FieldsOf(table)
	declared := make(map[string]bool, len(columns))
	for _, col := range columns {
		declared[col] = true
	}
	var extras []string
	seen := make(map[string]bool)
	kinds := make(map[string]string)
	for _, rec := range records {
		for field, value := range rec {
			if !declared[field] && !seen[field] {
				seen[field] = true
				extras = append(extras, field)
			}
			if value == nil {
				continue
			}
			kind, err := kindOf(value)
			if err != nil {
				return nil, nil, fmt.Errorf("table %s, field %s: %w", table, field, err)
			}
			if prev, ok := kinds[field]; ok && prev != kind {
				return nil, nil, fmt.Errorf("table %s, field %s: mixed kinds %s and %s", table, field, prev, kind)
			}
			kinds[field] = kind
		}
	}
	sort.Strings(extras)
	return append(columns, extras...), kinds, nil
}

func kindOf(value any) (string, error) {
	switch value.(type) {
	case string:
		return kindText, nil
	case bool:
		return kindBool, nil
	case decimal.Decimal:
		return kindDecimal, nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

// bindValue converts a record value into its SQL form.
func bindValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case decimal.Decimal:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Import reads a previously exported SQLite file back into canonical JSONL
// buffers keyed by table name, ready for (*moneybook.Store).LoadTables.
func Import(ctx context.Context, path string) (map[string][]byte, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	kinds, err := readKinds(ctx, db)
	if err != nil {
		return nil, err
	}

	buffers := make(map[string][]byte)
	for _, table := range moneybook.TableNames() {
		exists, err := tableExists(ctx, db, table)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		records, err := importTable(ctx, db, table, kinds[table])
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := moneybook.EncodeTable(&buf, table, records); err != nil {
			return nil, err
		}
		buffers[table] = buf.Bytes()
	}
	return buffers, nil
}

// importTable reads one SQL table back into records, converting each column
// according to its recorded kind.
func importTable(ctx context.Context, db *sql.DB, table string, kinds map[string]string) ([]moneybook.Record, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of table %s: %w", table, err)
	}

	var records []moneybook.Record
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", table, err)
		}
		rec := make(moneybook.Record, len(columns))
		for i, col := range columns {
			v, err := recordValue(values[i], kinds[col])
			if err != nil {
				return nil, fmt.Errorf("table %s, field %s: %w", table, col, err)
			}
			rec[col] = v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	return records, nil
}

// recordValue converts an SQL value back into its record form.
func recordValue(value any, kind string) (any, error) {
	if value == nil {
		return nil, nil
	}
	text := ""
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case int64:
		if kind == kindBool {
			return v != 0, nil
		}
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return nil, fmt.Errorf("unsupported SQL value type %T", value)
	}
	switch kind {
	case kindDecimal:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", text, err)
		}
		return d, nil
	case kindBool:
		return text != "0" && text != "false", nil
	default:
		return text, nil
	}
}

// readKinds loads the sidecar kind catalog, keyed by table then field.
func readKinds(ctx context.Context, db *sql.DB) (map[string]map[string]string, error) {
	exists, err := tableExists(ctx, db, kindsTable)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("not a moneybook export: missing %s table", kindsTable)
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT tbl, field, kind FROM %q", kindsTable))
	if err != nil {
		return nil, fmt.Errorf("failed to read kinds: %w", err)
	}
	defer rows.Close()

	kinds := make(map[string]map[string]string)
	for rows.Next() {
		var table, field, kind string
		if err := rows.Scan(&table, &field, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan kinds: %w", err)
		}
		if kinds[table] == nil {
			kinds[table] = make(map[string]string)
		}
		kinds[table][field] = kind
	}
	return kinds, rows.Err()
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return true, nil
}
