package moneybook

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// The migration engine evolves a loaded database to the current schema. Steps
// are ordered, named and versioned; each one reports whether it actually
// mutated anything. Running the full sequence twice leaves every table
// byte-for-byte identical: the version gate skips applied steps, and every
// step is itself written to be a no-op on already-migrated data.
//
// A failing step is logged and recorded but never aborts loading; the schema
// version stops before the failed step so it is retried on the next load.

type migration struct {
	version int
	name    string
	apply   func(*Store) (bool, error)
}

var migrationSequence = []migration{
	{1, "add-account-flags", migrateAccountFlags},
	{2, "add-account-ordering", migrateAccountOrdering},
	{3, "add-initial-balance", migrateInitialBalance},
	{4, "add-reconciliation-fields", migrateReconciliationFields},
	{5, "reorder-transaction-types", migrateCategoryOrder},
	{6, "add-currency-decimal-places", migrateCurrencyDecimalPlaces},
	{7, "seed-currency-settings", migrateSeedCurrencySettings},
	{8, "seed-api-settings", migrateSeedAPISettings},
	{9, "normalize-preference-settings", migratePreferencePayloads},
}

// Migrate runs every migration step newer than the database's schema version,
// in order. Steps that mutate data or fail are recorded in the migrations
// table; untouched steps leave no trace. The returned error joins all step
// failures and is informational: the store stays loadable.
func (s *Store) Migrate() error {
	current := s.SchemaVersion()
	var errs []error
	failed := false
	for _, m := range migrationSequence {
		if m.version <= current {
			continue
		}
		mutated, err := m.apply(s)
		if err != nil {
			err = migrationf("step %d %s: %v", m.version, m.name, err)
			s.log.Warn("migration step failed", "version", m.version, "name", m.name, "error", err)
			s.recordMigration(m, false)
			errs = append(errs, err)
			failed = true
			continue
		}
		if mutated {
			s.log.Info("migration applied", "version", m.version, "name", m.name)
			s.recordMigration(m, true)
		}
		if !failed {
			s.setSchemaVersion(m.version)
		}
	}
	return errors.Join(errs...)
}

// LatestSchemaVersion returns the version a fully migrated database carries.
func LatestSchemaVersion() int {
	return migrationSequence[len(migrationSequence)-1].version
}

// recordMigration appends to the append-only migration log.
func (s *Store) recordMigration(m migration, success bool) {
	rec := Record{
		"id":        s.nextIDFor("migrations"),
		"name":      m.name,
		"version":   decimal.NewFromInt(int64(m.version)),
		"appliedAt": time.Now().Format(DatetimeFormat),
		"success":   success,
	}
	s.tables["migrations"] = append(s.tables["migrations"], rec)
	s.markDirty("migrations")
}

// migrateAccountFlags seeds the includeInOverview and isActive flags on
// accounts predating them.
func migrateAccountFlags(s *Store) (bool, error) {
	mutated := false
	for _, account := range s.tables["accounts"] {
		if !account.Has("includeInOverview") {
			account["includeInOverview"] = true
			mutated = true
		}
		if !account.Has("isActive") {
			account["isActive"] = true
			mutated = true
		}
	}
	if mutated {
		s.markDirty("accounts")
	}
	return mutated, nil
}

// migrateAccountOrdering assigns an order slot to accounts missing one,
// walking them by name after the highest existing slot.
func migrateAccountOrdering(s *Store) (bool, error) {
	var missing []Record
	for _, account := range s.tables["accounts"] {
		if !account.Has("order") {
			missing = append(missing, account)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].Str("name") < missing[j].Str("name")
	})
	next := s.nextOrder("accounts")
	one := decimal.NewFromInt(1)
	for _, account := range missing {
		account["order"] = next
		next = next.Add(one)
	}
	s.markDirty("accounts")
	return true, nil
}

// migrateInitialBalance derives initialBalance for accounts predating the
// field. The stored balance is taken as truth and the replayed transaction
// effects are backed out of it, so balance == initialBalance + effects holds
// immediately after the step.
func migrateInitialBalance(s *Store) (bool, error) {
	effects := make(map[string]decimal.Decimal)
	for _, tx := range s.tables["transactions"] {
		amount := tx.Decimal("amount")
		debit, credit := tx.Str("debitAccountId"), tx.Str("creditAccountId")
		effects[debit] = effects[debit].Add(amount)
		effects[credit] = effects[credit].Sub(amount)
	}
	mutated := false
	for _, account := range s.tables["accounts"] {
		if account.Has("initialBalance") {
			continue
		}
		account["initialBalance"] = account.Decimal("balance").Sub(effects[account.ID()])
		mutated = true
	}
	if mutated {
		s.markDirty("accounts")
	}
	return mutated, nil
}

// migrateReconciliationFields seeds explicit null reconciliation fields on
// transactions predating reconciliation.
func migrateReconciliationFields(s *Store) (bool, error) {
	mutated := false
	for _, tx := range s.tables["transactions"] {
		if !tx.Has("reconciliationReference") {
			tx["reconciliationReference"] = nil
			mutated = true
		}
		if !tx.Has("reconciledAt") {
			tx["reconciledAt"] = nil
			mutated = true
		}
	}
	if mutated {
		s.markDirty("transactions")
	}
	return mutated, nil
}

// categoryRank places the four canonical transaction types first, in their
// fixed order, and everything else after.
func categoryRank(id string) int {
	switch id {
	case "TYPE_001":
		return 0
	case "TYPE_002":
		return 1
	case "TYPE_003":
		return 2
	case "TYPE_004":
		return 3
	default:
		return 4
	}
}

// migrateCategoryOrder forces the canonical transaction type order and
// renumbers the order field into a dense 1..n sequence.
func migrateCategoryOrder(s *Store) (bool, error) {
	types := s.tables["transaction_types"]
	sort.SliceStable(types, func(i, j int) bool {
		ri, rj := categoryRank(types[i].ID()), categoryRank(types[j].ID())
		if ri != rj {
			return ri < rj
		}
		oi, oj := types[i].Decimal("order"), types[j].Decimal("order")
		if !oi.Equal(oj) {
			return oi.LessThan(oj)
		}
		return types[i].ID() < types[j].ID()
	})
	mutated := false
	for i, rec := range types {
		want := decimal.NewFromInt(int64(i + 1))
		if !rec.Has("order") || !rec.Decimal("order").Equal(want) {
			rec["order"] = want
			mutated = true
		}
	}
	if mutated {
		s.markDirty("transaction_types")
	}
	return mutated, nil
}

// migrateCurrencyDecimalPlaces fills decimalPlaces from the ISO currency
// metadata for currencies predating the field, 2 for unknown codes.
func migrateCurrencyDecimalPlaces(s *Store) (bool, error) {
	mutated := false
	for _, currency := range s.tables["currencies"] {
		if currency.Has("decimalPlaces") && !currency.IsNull("decimalPlaces") {
			continue
		}
		places := 2
		if iso := money.GetCurrency(currency.Str("code")); iso != nil {
			places = iso.Fraction
		}
		currency["decimalPlaces"] = decimal.NewFromInt(int64(places))
		mutated = true
	}
	if mutated {
		s.markDirty("currencies")
	}
	return mutated, nil
}

// migrateSeedCurrencySettings creates the display settings row of every
// currency that has none.
func migrateSeedCurrencySettings(s *Store) (bool, error) {
	mutated := false
	for _, currency := range s.Table("currencies") {
		if _, ok := s.CurrencySettings(currency.ID()); ok {
			continue
		}
		if _, err := s.SetCurrencySettings(currency.ID(), Record{}); err != nil {
			return mutated, err
		}
		mutated = true
	}
	return mutated, nil
}

// migrateSeedAPISettings creates the default exchange-rate provider row when
// missing.
func migrateSeedAPISettings(s *Store) (bool, error) {
	if _, ok := s.APISettings(defaultRateProvider); ok {
		return false, nil
	}
	_, err := s.SetAPISettings(defaultRateProvider, Record{
		"baseUrl":    defaultRateBaseURL,
		"apiKey":     "",
		"enabled":    true,
		"dailyLimit": decimal.NewFromInt(100),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// migratePreferencePayloads rewrites legacy preference payloads into the
// typed canonical form: snake_case keys are translated, unknown keys dropped,
// missing or invalid values replaced by defaults. Unknown categories are left
// untouched.
func migratePreferencePayloads(s *Store) (bool, error) {
	mutated := false
	for _, pref := range s.tables["user_preferences"] {
		canonical, changed := canonicalPayload(pref.Str("category"), pref.Str("settings"))
		if changed {
			pref["settings"] = canonical
			mutated = true
		}
	}
	if mutated {
		s.markDirty("user_preferences")
	}
	return mutated, nil
}

// canonicalPayload returns the canonical payload text for a category and
// whether it differs from the input.
func canonicalPayload(category, payload string) (string, bool) {
	switch category {
	case PreferenceCurrencyFormat:
		f := DefaultCurrencyFormat()
		var raw map[string]any
		if err := json.Unmarshal([]byte(payload), &raw); err == nil {
			if v, ok := stringKey(raw, "decimalSeparator", "decimal_separator"); ok {
				f.DecimalSeparator = v
			}
			if v, ok := stringKey(raw, "thousandSeparator", "thousand_separator"); ok {
				f.ThousandSeparator = v
			}
			if v, ok := stringKey(raw, "symbolPosition", "symbol_position"); ok {
				f.SymbolPosition = v
			}
			if v, ok := intKey(raw, "decimalPlaces", "decimal_places"); ok {
				f.DecimalPlaces = v
			}
		}
		if validateSettings(category, f) != nil {
			f = DefaultCurrencyFormat()
		}
		out, _ := json.Marshal(f)
		return string(out), string(out) != payload
	case PreferenceDateFormat:
		f := DefaultDateFormat()
		var raw map[string]any
		if err := json.Unmarshal([]byte(payload), &raw); err == nil {
			if v, ok := stringKey(raw, "dateFormat", "date_format"); ok {
				f.DateFormat = v
			}
			if v, ok := intKey(raw, "firstWeekday", "first_weekday"); ok {
				f.FirstWeekday = v
			}
		}
		if validateSettings(category, f) != nil {
			f = DefaultDateFormat()
		}
		out, _ := json.Marshal(f)
		return string(out), string(out) != payload
	default:
		return payload, false
	}
}

func stringKey(raw map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok {
			return v, true
		}
	}
	return "", false
}

func intKey(raw map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return int(v), true
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n), true
			}
		}
	}
	return 0, false
}
