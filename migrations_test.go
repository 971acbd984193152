package moneybook

import (
	"bytes"
	"slices"
	"testing"
)

// legacyStore builds a store shaped like a database from before every
// migration: accounts without flags, ordering or initial balances,
// transactions without reconciliation fields, currencies without decimal
// places, and a snake_case preference payload.
func legacyStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.setTable("currencies", []Record{
		{"id": "CUR_001", "code": "USD", "name": "US Dollar", "symbol": "$", "isBase": true},
	})
	s.setTable("accounts", []Record{
		{"id": "ACC1", "name": "Checking", "accountTypeId": AccountTypeChecking, "currencyId": "CUR_001", "balance": dec("800")},
		{"id": "ACC2", "name": "Savings", "accountTypeId": AccountTypeSavings, "currencyId": "CUR_001", "balance": dec("200")},
	})
	s.setTable("transactions", []Record{
		{"id": "TXN1", "date": "2025-01-15", "description": "transfer", "debitAccountId": "ACC2", "creditAccountId": "ACC1", "amount": dec("200")},
	})
	s.setTable("transaction_types", []Record{
		{"id": "TYPE_002", "name": "Income", "description": "", "order": dec("7"), "isActive": true},
		{"id": "TYPE_001", "name": "Expenses", "description": "", "order": dec("9"), "isActive": true},
	})
	s.setTable("user_preferences", []Record{
		{"id": "PREF_001", "userId": DefaultUser, "category": PreferenceCurrencyFormat,
			"settings": `{"decimal_separator":",","symbol_position":"after","decimal_places":2}`},
	})
	return s
}

func TestMigrateLegacyStore(t *testing.T) {
	s := legacyStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if got, want := s.SchemaVersion(), LatestSchemaVersion(); got != want {
		t.Fatalf("SchemaVersion() = %d, want %d", got, want)
	}

	// Account flags and ordering.
	checking, _ := s.Get("accounts", "ACC1")
	savings, _ := s.Get("accounts", "ACC2")
	if !checking.Bool("isActive") || !checking.Bool("includeInOverview") {
		t.Errorf("account flags not seeded: %v", checking)
	}
	if !checking.Decimal("order").Equal(dec("1")) || !savings.Decimal("order").Equal(dec("2")) {
		t.Errorf("account order = %s/%s, want 1/2 by name", checking.Decimal("order"), savings.Decimal("order"))
	}

	// Initial balances back out the replayed transaction effects.
	if got := checking.Decimal("initialBalance"); !got.Equal(dec("1000")) {
		t.Errorf("checking initialBalance = %s, want 1000", got)
	}
	if got := savings.Decimal("initialBalance"); !got.Equal(dec("0")) {
		t.Errorf("savings initialBalance = %s, want 0", got)
	}
	if drifts := s.CheckBalances(); len(drifts) != 0 {
		t.Errorf("CheckBalances() after migration = %v, want none", drifts)
	}

	// Reconciliation fields are explicit nulls.
	tx, _ := s.Get("transactions", "TXN1")
	if !tx.IsNull("reconciliationReference") || !tx.IsNull("reconciledAt") {
		t.Errorf("reconciliation fields not seeded: %v", tx)
	}

	// Canonical category order is dense, TYPE_001 first.
	types := s.Categories()
	if types[0].ID() != "TYPE_001" || !types[0].Decimal("order").Equal(dec("1")) {
		t.Errorf("first category = %s order %s, want TYPE_001 order 1", types[0].ID(), types[0].Decimal("order"))
	}
	if types[1].ID() != "TYPE_002" || !types[1].Decimal("order").Equal(dec("2")) {
		t.Errorf("second category = %s order %s, want TYPE_002 order 2", types[1].ID(), types[1].Decimal("order"))
	}

	// Currency decimal places, settings row and the rate provider.
	usd, _ := s.Get("currencies", "CUR_001")
	if got := usd.Decimal("decimalPlaces"); !got.Equal(dec("2")) {
		t.Errorf("decimalPlaces = %s, want 2", got)
	}
	if _, ok := s.CurrencySettings("CUR_001"); !ok {
		t.Errorf("currency settings row not seeded")
	}
	if _, ok := s.APISettings(defaultRateProvider); !ok {
		t.Errorf("api settings row not seeded")
	}

	// The snake_case payload became the typed canonical form.
	format, err := s.CurrencyFormat(DefaultUser)
	if err != nil {
		t.Fatalf("CurrencyFormat() after migration error = %v", err)
	}
	want := CurrencyFormatSettings{DecimalSeparator: ",", SymbolPosition: "after", DecimalPlaces: 2}
	if format != want {
		t.Errorf("CurrencyFormat() = %+v, want %+v", format, want)
	}

	// Every mutating step left a migration log row.
	if got := s.Count("migrations"); got != len(migrationSequence) {
		t.Errorf("Count(migrations) = %d, want %d", got, len(migrationSequence))
	}
	for _, rec := range s.Table("migrations") {
		if !rec.Bool("success") {
			t.Errorf("migration %s recorded as failed", rec.Str("name"))
		}
	}
}

// TestMigrateIdempotent runs the sequence twice and compares the canonical
// encodings: the second run must not change a byte.
func TestMigrateIdempotent(t *testing.T) {
	s := legacyStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	first, err := s.ExportTables()
	if err != nil {
		t.Fatalf("ExportTables() error = %v", err)
	}

	if err := s.Migrate(); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	second, err := s.ExportTables()
	if err != nil {
		t.Fatalf("ExportTables() error = %v", err)
	}

	for _, table := range TableNames() {
		if !bytes.Equal(first[table], second[table]) {
			t.Errorf("table %s changed on second migration:\nfirst:\n%s\nsecond:\n%s", table, first[table], second[table])
		}
	}
}

func TestMigrateFreshStoreLeavesNoTrace(t *testing.T) {
	s, _, _ := newTestStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// A store built through the typed operations already has every field the
	// data steps would add; only the two seeding steps mutate.
	var names []string
	for _, rec := range s.Table("migrations") {
		names = append(names, rec.Str("name"))
	}
	want := []string{"seed-currency-settings", "seed-api-settings"}
	if !slices.Equal(names, want) {
		t.Errorf("migration log = %v, want %v", names, want)
	}
	if got, want := s.SchemaVersion(), LatestSchemaVersion(); got != want {
		t.Errorf("SchemaVersion() = %d, want %d", got, want)
	}
}

func TestMigrateVersionGate(t *testing.T) {
	s := legacyStore(t)
	s.ensureDatabaseInfo("en-US")
	s.setSchemaVersion(LatestSchemaVersion())

	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// Everything is gated off: the legacy shape stays untouched.
	if got := s.Count("migrations"); got != 0 {
		t.Errorf("Count(migrations) = %d, want 0 behind the version gate", got)
	}
	account, _ := s.Get("accounts", "ACC1")
	if account.Has("initialBalance") {
		t.Errorf("gated migration still ran")
	}
}

func TestMigrateHaltsVersionOnFailure(t *testing.T) {
	s := legacyStore(t)

	// A currency row without an id is corrupt historical data: seeding its
	// settings row cannot resolve the reference and the step fails.
	s.setTable("currencies", []Record{
		{"code": "USD", "name": "US Dollar", "symbol": "$", "isBase": true},
	})

	err := s.Migrate()
	if err == nil {
		t.Fatalf("Migrate() with a corrupt currency reported no error")
	}

	// The failure happened in step 7; the version stops just before it so the
	// step is retried on the next load.
	if got := s.SchemaVersion(); got != 6 {
		t.Errorf("SchemaVersion() = %d, want 6, halted before the failed step", got)
	}

	var failures int
	for _, rec := range s.Table("migrations") {
		if !rec.Bool("success") {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("migration log has %d failures, want 1", failures)
	}
}
