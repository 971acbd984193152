package moneybook

import "sort"

// The category hierarchy has three fixed levels: transaction types at the
// top, transaction groups bound to exactly one type, and subcategories bound
// to exactly one group. Binding is by required reference, so the hierarchy is
// acyclic by construction. None of the levels may be deleted while referenced
// from below or by a transaction.

// AddCategory validates and inserts a transaction type, the top category
// level. Defaults: next TYPE id, next order slot, active.
func (s *Store) AddCategory(fields Record) (Record, error) {
	rec, err := s.prepareNamed("transaction_types", fields)
	if err != nil {
		return nil, err
	}
	if !rec.Has("description") {
		rec["description"] = ""
	}
	return s.insert("transaction_types", rec)
}

// UpdateCategory merges fields into a transaction type.
func (s *Store) UpdateCategory(id string, fields Record) (Record, error) {
	return s.updateNamed("transaction_types", id, fields)
}

// DeleteCategory removes a transaction type. It is refused with
// ErrConstraint while a transaction group or a transaction still references
// it.
func (s *Store) DeleteCategory(id string) error {
	return s.delete("transaction_types", id)
}

// AddTransactionGroup validates and inserts a transaction group bound to one
// transaction type. Defaults: next GRP id, next order slot, active.
func (s *Store) AddTransactionGroup(fields Record) (Record, error) {
	rec, err := s.prepareNamed("transaction_groups", fields)
	if err != nil {
		return nil, err
	}
	return s.insert("transaction_groups", rec)
}

// UpdateTransactionGroup merges fields into a transaction group.
func (s *Store) UpdateTransactionGroup(id string, fields Record) (Record, error) {
	return s.updateNamed("transaction_groups", id, fields)
}

// DeleteTransactionGroup removes a transaction group. It is refused with
// ErrConstraint while a subcategory still references it.
func (s *Store) DeleteTransactionGroup(id string) error {
	return s.delete("transaction_groups", id)
}

// AddSubcategory validates and inserts a subcategory bound to one transaction
// group. Defaults: next SUB id, next order slot, active.
func (s *Store) AddSubcategory(fields Record) (Record, error) {
	rec, err := s.prepareNamed("subcategories", fields)
	if err != nil {
		return nil, err
	}
	return s.insert("subcategories", rec)
}

// UpdateSubcategory merges fields into a subcategory.
func (s *Store) UpdateSubcategory(id string, fields Record) (Record, error) {
	return s.updateNamed("subcategories", id, fields)
}

// DeleteSubcategory removes a subcategory. It is refused with ErrConstraint
// while a transaction or a product still references it.
func (s *Store) DeleteSubcategory(id string) error {
	return s.delete("subcategories", id)
}

// Categories returns the transaction types sorted by order, ties broken by
// id.
func (s *Store) Categories() []Record {
	return s.tableInOrder("transaction_types")
}

// TransactionGroups returns the groups of one transaction type, sorted by
// order.
func (s *Store) TransactionGroups(typeID string) []Record {
	groups := s.tableInOrder("transaction_groups")
	out := groups[:0]
	for _, g := range groups {
		if g.Str("transactionTypeId") == typeID {
			out = append(out, g)
		}
	}
	return out
}

// Subcategories returns the subcategories of one transaction group, sorted
// by order.
func (s *Store) Subcategories(groupID string) []Record {
	subs := s.tableInOrder("subcategories")
	out := subs[:0]
	for _, sub := range subs {
		if sub.Str("transactionGroupId") == groupID {
			out = append(out, sub)
		}
	}
	return out
}

// prepareNamed normalizes and defaults the fields shared by the named,
// ordered tables: a non-empty name, a sequential id, an order slot, and the
// isActive flag.
func (s *Store) prepareNamed(table string, fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("%s: %v", table, err)
	}
	if rec.Str("name") == "" {
		return nil, validationf("%s: missing name", table)
	}
	if rec.ID() == "" {
		rec["id"] = s.nextIDFor(table)
	}
	if !rec.Has("order") {
		rec["order"] = s.nextOrder(table)
	}
	if !rec.Has("isActive") {
		rec["isActive"] = true
	}
	return rec, nil
}

// updateNamed merges fields into a record of a named table, refusing to blank
// the name.
func (s *Store) updateNamed(table, id string, fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("%s: %v", table, err)
	}
	if name, ok := rec["name"].(string); ok && name == "" {
		return nil, validationf("%s: missing name", table)
	}
	return s.update(table, id, rec)
}

// tableInOrder returns a table's records sorted by order, ties broken by id.
func (s *Store) tableInOrder(table string) []Record {
	records := s.Table(table)
	sort.SliceStable(records, func(i, j int) bool {
		oi, oj := records[i].Decimal("order"), records[j].Decimal("order")
		if !oi.Equal(oj) {
			return oi.LessThan(oj)
		}
		return records[i].ID() < records[j].ID()
	})
	return records
}
