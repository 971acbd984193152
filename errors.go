package moneybook

import (
	"errors"
	"fmt"
)

// Error kinds raised by store operations. Callers match them with errors.Is.
var (
	// ErrValidation reports input that fails a schema or business rule before
	// any write happens.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a lookup for an id that does not exist in its table.
	ErrNotFound = errors.New("record not found")
	// ErrConstraint reports a write refused because it would break referential
	// integrity, typically a delete of a record still referenced elsewhere.
	ErrConstraint = errors.New("constraint violation")
	// ErrMigration reports a migration step failure. It is logged and recorded
	// but never aborts loading a database.
	ErrMigration = errors.New("migration failed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func constraintf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConstraint, fmt.Sprintf(format, args...))
}

func migrationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMigration, fmt.Sprintf(format, args...))
}
