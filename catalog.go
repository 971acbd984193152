package moneybook

import (
	"time"

	"github.com/shopspring/decimal"
)

// The catalog tables hold the small reference entities a tracker accumulates
// around its transactions: products bought repeatedly, payees and payers,
// tags, and todos. They share the named-table defaults and the usual delete
// protection.

// AddProduct validates and inserts a product. The optional subcategory and
// currency references must resolve when present. defaultAmount defaults to
// zero.
func (s *Store) AddProduct(fields Record) (Record, error) {
	rec, err := s.prepareNamed("products", fields)
	if err != nil {
		return nil, err
	}
	if !rec.Has("defaultAmount") {
		rec["defaultAmount"] = decimal.Zero
	}
	if rec.Decimal("defaultAmount").IsNegative() {
		return nil, validationf("products: defaultAmount must not be negative, got %s", rec.Decimal("defaultAmount"))
	}
	return s.insert("products", rec)
}

// UpdateProduct merges fields into a product.
func (s *Store) UpdateProduct(id string, fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("products: %v", err)
	}
	if rec.Has("defaultAmount") && rec.Decimal("defaultAmount").IsNegative() {
		return nil, validationf("products: defaultAmount must not be negative, got %s", rec.Decimal("defaultAmount"))
	}
	if name, ok := rec["name"].(string); ok && name == "" {
		return nil, validationf("products: missing name")
	}
	return s.update("products", id, rec)
}

// DeleteProduct removes a product. It is refused with ErrConstraint while a
// transaction still references it.
func (s *Store) DeleteProduct(id string) error {
	return s.delete("products", id)
}

// AddPayee validates and inserts a payee.
func (s *Store) AddPayee(fields Record) (Record, error) {
	return s.addParty("payees", fields)
}

// UpdatePayee merges fields into a payee.
func (s *Store) UpdatePayee(id string, fields Record) (Record, error) {
	return s.updateNamed("payees", id, fields)
}

// DeletePayee removes a payee. It is refused with ErrConstraint while a
// transaction still references it.
func (s *Store) DeletePayee(id string) error {
	return s.delete("payees", id)
}

// AddPayer validates and inserts a payer.
func (s *Store) AddPayer(fields Record) (Record, error) {
	return s.addParty("payers", fields)
}

// UpdatePayer merges fields into a payer.
func (s *Store) UpdatePayer(id string, fields Record) (Record, error) {
	return s.updateNamed("payers", id, fields)
}

// DeletePayer removes a payer. It is refused with ErrConstraint while a
// transaction still references it.
func (s *Store) DeletePayer(id string) error {
	return s.delete("payers", id)
}

// addParty inserts into payees or payers, which share the same shape.
func (s *Store) addParty(table string, fields Record) (Record, error) {
	rec, err := s.prepareNamed(table, fields)
	if err != nil {
		return nil, err
	}
	if !rec.Has("description") {
		rec["description"] = ""
	}
	return s.insert(table, rec)
}

// AddTag validates and inserts a tag. The color defaults to a neutral gray.
func (s *Store) AddTag(fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("tags: %v", err)
	}
	if rec.Str("name") == "" {
		return nil, validationf("tags: missing name")
	}
	if rec.Str("color") == "" {
		rec["color"] = "#808080"
	}
	if rec.ID() == "" {
		rec["id"] = s.nextIDFor("tags")
	}
	if !rec.Has("order") {
		rec["order"] = s.nextOrder("tags")
	}
	return s.insert("tags", rec)
}

// UpdateTag merges fields into a tag.
func (s *Store) UpdateTag(id string, fields Record) (Record, error) {
	return s.updateNamed("tags", id, fields)
}

// DeleteTag removes a tag.
func (s *Store) DeleteTag(id string) error {
	return s.delete("tags", id)
}

// AddTodo validates and inserts a todo. The optional due date is
// canonicalized; completed defaults to false and createdAt to now.
func (s *Store) AddTodo(fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("todos: %v", err)
	}
	if rec.Str("description") == "" {
		return nil, validationf("todos: missing description")
	}
	if due := rec.Str("dueDate"); due != "" {
		d, err := ParseDate(due)
		if err != nil {
			return nil, validationf("todos: %v", err)
		}
		rec["dueDate"] = d.String()
	} else if !rec.Has("dueDate") {
		rec["dueDate"] = ""
	}
	if !rec.Has("completed") {
		rec["completed"] = false
	}
	if rec.Str("createdAt") == "" {
		rec["createdAt"] = time.Now().Format(DatetimeFormat)
	}
	if rec.ID() == "" {
		rec["id"] = s.nextIDFor("todos")
	}
	return s.insert("todos", rec)
}

// UpdateTodo merges fields into a todo.
func (s *Store) UpdateTodo(id string, fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("todos: %v", err)
	}
	if desc, ok := rec["description"].(string); ok && desc == "" {
		return nil, validationf("todos: missing description")
	}
	if due, ok := rec["dueDate"].(string); ok && due != "" {
		d, err := ParseDate(due)
		if err != nil {
			return nil, validationf("todos: %v", err)
		}
		rec["dueDate"] = d.String()
	}
	return s.update("todos", id, rec)
}

// CompleteTodo marks a todo as done.
func (s *Store) CompleteTodo(id string) (Record, error) {
	return s.update("todos", id, Record{"completed": true})
}

// DeleteTodo removes a todo.
func (s *Store) DeleteTodo(id string) error {
	return s.delete("todos", id)
}
