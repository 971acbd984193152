package moneybook

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
)

// Store is an in-memory, schema-aware relational store. It keeps one ordered
// record slice per table, enforces the declared relationships on every write,
// and tracks which tables changed since the last persistence point.
//
// A Store is not safe for concurrent use. It is designed as a single-writer,
// synchronous data layer; callers that share an instance across goroutines
// must serialize access themselves.
type Store struct {
	tables map[string][]Record
	dirty  map[string]bool
	log    *slog.Logger
}

// NewStore returns an empty store holding every table of the fixed schema.
// It logs through slog.Default; use SetLogger to redirect.
func NewStore() *Store {
	s := &Store{
		tables: make(map[string][]Record, len(tableNames)),
		dirty:  make(map[string]bool),
		log:    slog.Default(),
	}
	for _, name := range tableNames {
		s.tables[name] = make([]Record, 0)
	}
	return s
}

// SetLogger redirects the store's logging. A nil logger restores the default.
func (s *Store) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.log = l
}

// Table returns a copy of the table's records in their current order. The
// result is empty for an unknown table.
func (s *Store) Table(name string) []Record {
	records := s.tables[name]
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

// Records returns an iterator over the table's records, in order, filtered by
// the given predicates. All predicates must accept a record for it to be
// yielded; with no predicate every record is. Yielded records are clones.
func (s *Store) Records(table string, filters ...func(Record) bool) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, rec := range s.tables[table] {
			accepted := true
			for _, filter := range filters {
				if !filter(rec) {
					accepted = false
					break
				}
			}
			if !accepted {
				continue
			}
			if !yield(rec.Clone()) {
				return
			}
		}
	}
}

// Count returns the number of records in a table.
func (s *Store) Count(table string) int { return len(s.tables[table]) }

// Get returns a copy of the record with the given id, or ErrNotFound.
func (s *Store) Get(table, id string) (Record, error) {
	if _, rec := s.find(table, id); rec != nil {
		return rec.Clone(), nil
	}
	return nil, notFoundf("%s %q", table, id)
}

// find returns the index and live record for an id, or -1 and nil. Callers
// inside the package may mutate the result but must mark the table dirty.
func (s *Store) find(table, id string) (int, Record) {
	for i, rec := range s.tables[table] {
		if rec.ID() == id {
			return i, rec
		}
	}
	return -1, nil
}

// exists reports whether a record with the given id is present in the table.
func (s *Store) exists(table, id string) bool {
	_, rec := s.find(table, id)
	return rec != nil
}

// insert validates a record against the table's schema and relationships,
// then appends it. The record must already carry its id. Unknown tables are
// unconstrained: the record is appended as-is.
func (s *Store) insert(table string, rec Record) (Record, error) {
	rec, err := normalizeRecord(rec)
	if err != nil {
		return nil, validationf("%s: %v", table, err)
	}
	if rec.ID() == "" {
		return nil, validationf("%s: missing id", table)
	}
	if s.exists(table, rec.ID()) {
		return nil, validationf("%s: duplicate id %q", table, rec.ID())
	}
	if err := s.checkFields(table, rec); err != nil {
		return nil, err
	}
	if err := s.checkReferences(table, rec, true); err != nil {
		return nil, err
	}
	s.tables[table] = append(s.tables[table], rec)
	s.markDirty(table)
	s.log.Debug("record inserted", "table", table, "id", rec.ID())
	return rec.Clone(), nil
}

// update merges fields into an existing record. Fields set to nil become
// null; absent fields are left untouched. The merged record must still pass
// every schema and relationship check, and the id itself cannot change.
func (s *Store) update(table, id string, fields Record) (Record, error) {
	i, current := s.find(table, id)
	if current == nil {
		return nil, notFoundf("%s %q", table, id)
	}
	fields, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("%s: %v", table, err)
	}
	if newID, ok := fields["id"].(string); ok && newID != id {
		return nil, validationf("%s: cannot change id %q to %q", table, id, newID)
	}
	if err := s.checkFields(table, fields); err != nil {
		return nil, err
	}
	merged := current.Clone()
	maps.Copy(merged, fields)
	if err := s.checkReferences(table, merged, true); err != nil {
		return nil, err
	}
	s.tables[table][i] = merged
	s.markDirty(table)
	s.log.Debug("record updated", "table", table, "id", id)
	return merged.Clone(), nil
}

// delete removes a record, refusing while any other record still references
// it through a declared relationship.
func (s *Store) delete(table, id string) error {
	i, rec := s.find(table, id)
	if rec == nil {
		return notFoundf("%s %q", table, id)
	}
	if refs := s.ReferencesTo(table, id); len(refs) > 0 {
		r := refs[0]
		return constraintf("%s %q is referenced by %s %q (%s)%s",
			table, id, r.Table, r.ID, r.Field, moreRefs(len(refs)))
	}
	s.tables[table] = slices.Delete(s.tables[table], i, i+1)
	s.markDirty(table)
	s.log.Debug("record deleted", "table", table, "id", id)
	return nil
}

func moreRefs(n int) string {
	if n > 1 {
		return fmt.Sprintf(" and %d more", n-1)
	}
	return ""
}

// checkFields rejects a record carrying fields not declared for the table.
// Unknown tables accept everything.
func (s *Store) checkFields(table string, rec Record) error {
	if !isKnownTable(table) {
		return nil
	}
	for field := range rec {
		if !hasField(table, field) {
			return validationf("%s: unknown field %q", table, field)
		}
	}
	return nil
}

// checkReferences verifies the declared relationships of a record. A present
// non-empty reference must resolve to an existing record. When required is
// true, non-optional references must also be present and non-empty.
func (s *Store) checkReferences(table string, rec Record, required bool) error {
	for field, rel := range tableRelationships[table] {
		value, ok := rec[field].(string)
		if !ok || value == "" {
			if required && !rel.Optional {
				return validationf("%s: missing required reference %q to %s", table, field, rel.Table)
			}
			continue
		}
		if !s.exists(rel.Table, value) {
			return validationf("%s: field %q references unknown %s %q", table, field, rel.Table, value)
		}
	}
	return nil
}

// Reference describes one record referencing another through a declared
// relationship.
type Reference struct {
	Table string // referencing table
	ID    string // referencing record id
	Field string // referencing field
}

// ReferencesTo returns every record that references the given id through a
// declared relationship, optional ones included. A non-empty result blocks
// deletion of the referenced record.
func (s *Store) ReferencesTo(table, id string) []Reference {
	var refs []Reference
	for _, from := range tableNames {
		for field, rel := range tableRelationships[from] {
			if rel.Table != table {
				continue
			}
			for _, rec := range s.tables[from] {
				if v, ok := rec[field].(string); ok && v == id {
					refs = append(refs, Reference{Table: from, ID: rec.ID(), Field: field})
				}
			}
		}
	}
	return refs
}

// ValidateRelationships sweeps every table and returns one error per broken
// non-optional relationship: a missing, empty, or dangling reference. It
// never mutates the store. Optional references are reported only when
// present and dangling.
func (s *Store) ValidateRelationships() []error {
	var violations []error
	for _, table := range tableNames {
		rels := tableRelationships[table]
		if len(rels) == 0 {
			continue
		}
		fields := slices.Sorted(maps.Keys(rels))
		for _, rec := range s.tables[table] {
			for _, field := range fields {
				rel := rels[field]
				value, ok := rec[field].(string)
				if !ok || value == "" {
					if !rel.Optional {
						violations = append(violations,
							fmt.Errorf("%s %q: missing required reference %q to %s", table, rec.ID(), field, rel.Table))
					}
					continue
				}
				if !s.exists(rel.Table, value) {
					violations = append(violations,
						fmt.Errorf("%s %q: field %q references unknown %s %q", table, rec.ID(), field, rel.Table, value))
				}
			}
		}
	}
	return violations
}

// markDirty records that a table diverged from its last persisted state.
func (s *Store) markDirty(table string) { s.dirty[table] = true }

// DirtyTables returns the sorted names of the tables modified since the last
// ClearDirty.
func (s *Store) DirtyTables() []string {
	return slices.Sorted(maps.Keys(s.dirty))
}

// ClearDirty resets the dirty set, typically after a successful save.
func (s *Store) ClearDirty() { clear(s.dirty) }

// setTable replaces a table's records wholesale. It is the loading path's
// entry point and performs no validation: decoded historical data is checked
// afterwards by ValidateRelationships.
func (s *Store) setTable(name string, records []Record) {
	s.tables[name] = records
}
