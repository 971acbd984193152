package moneybook

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"
)

// Record is a single row of a table. Values are restricted to string, bool,
// decimal.Decimal and nil; normalizeValue coerces everything else at the
// boundary. Records returned by the store are always clones, so holding on to
// one never observes later mutations.
type Record map[string]any

// Clone returns an independent shallow copy of the record. The restricted
// value set makes a shallow copy a deep one.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// ID returns the record's id field, or "" when absent.
func (r Record) ID() string { return r.Str("id") }

// Str returns the string value stored under key, or "" when the field is
// absent, nil, or not a string.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Bool returns the bool value stored under key, or false when the field is
// absent, nil, or not a bool.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Decimal returns the decimal value stored under key, or zero when the field
// is absent, nil, or not a decimal.
func (r Record) Decimal(key string) decimal.Decimal {
	d, _ := r[key].(decimal.Decimal)
	return d
}

// Has reports whether the field is present, even holding nil.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// IsNull reports whether the field is present and holds nil.
func (r Record) IsNull(key string) bool {
	v, ok := r[key]
	return ok && v == nil
}

// normalizeValue coerces an arbitrary decoded value into the record value
// set. Numbers of any flavor become decimal.Decimal.
func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, decimal.Decimal:
		return t, nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case Date:
		return t.String(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// normalizeRecord returns a copy of the record with every value coerced into
// the record value set.
func normalizeRecord(rec Record) (Record, error) {
	out := make(Record, len(rec))
	for k, v := range rec {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}
