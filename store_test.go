package moneybook

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestInsertRejectsUnknownField(t *testing.T) {
	s := NewStore()
	_, err := s.AddCurrency(Record{"code": "USD", "name": "US Dollar", "color": "red"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("AddCurrency() error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), `"color"`) {
		t.Errorf("error %q does not name the offending field", err)
	}
}

func TestInsertRejectsDanglingReference(t *testing.T) {
	s, checking, _ := newTestStore(t)
	_, err := s.AddTransaction(Record{
		"debitAccountId":  checking,
		"creditAccountId": "ACC_missing",
		"amount":          dec("10"),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("AddTransaction() error = %v, want ErrValidation", err)
	}
}

func TestInsertRejectsMissingRequiredReference(t *testing.T) {
	s := NewStore()
	_, err := s.AddAccount(Record{"name": "Wallet", "accountTypeId": AccountTypeCash})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("AddAccount() without currency error = %v, want ErrValidation", err)
	}
}

func TestOptionalReferenceAcceptsAbsentAndEmpty(t *testing.T) {
	s, checking, savings := newTestStore(t)

	// categoryId is optional: absent, empty, and resolvable are all fine.
	if _, err := s.AddTransaction(Record{
		"debitAccountId":  savings,
		"creditAccountId": checking,
		"amount":          dec("1"),
		"categoryId":      "",
	}); err != nil {
		t.Fatalf("AddTransaction() with empty optional reference error = %v", err)
	}

	// A present optional reference must still resolve.
	_, err := s.AddTransaction(Record{
		"debitAccountId":  savings,
		"creditAccountId": checking,
		"amount":          dec("1"),
		"categoryId":      "TYPE_404",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("AddTransaction() with dangling optional reference error = %v, want ErrValidation", err)
	}
}

func TestDeleteBlockedByReference(t *testing.T) {
	s, checking, savings := newTestStore(t)
	tx := addTestTransaction(t, s, savings, checking, "25", "2025-03-01")

	err := s.DeleteAccount(checking)
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("DeleteAccount() error = %v, want ErrConstraint", err)
	}
	if !strings.Contains(err.Error(), tx.ID()) {
		t.Errorf("error %q does not name the referencing transaction", err)
	}

	// Removing the transaction unblocks the account, the currency stays
	// blocked by the remaining account.
	if err := s.DeleteTransaction(tx.ID()); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if err := s.DeleteAccount(checking); err != nil {
		t.Errorf("DeleteAccount() after removing reference error = %v", err)
	}
	if err := s.DeleteCurrency("CUR_001"); !errors.Is(err, ErrConstraint) {
		t.Errorf("DeleteCurrency() error = %v, want ErrConstraint", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, checking, _ := newTestStore(t)

	rec, err := s.Get("accounts", checking)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	rec["name"] = "Tampered"

	again, err := s.Get("accounts", checking)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := again.Str("name"); got != "Checking" {
		t.Errorf("stored name = %q, mutation of a returned record leaked into the store", got)
	}
}

func TestTableReturnsCopies(t *testing.T) {
	s, _, _ := newTestStore(t)
	for _, rec := range s.Table("accounts") {
		rec["name"] = "Tampered"
	}
	for rec := range s.Records("accounts") {
		if rec.Str("name") == "Tampered" {
			t.Fatalf("mutation of Table() result leaked into the store")
		}
	}
}

func TestRecordsFilters(t *testing.T) {
	s, checking, savings := newTestStore(t)
	addTestTransaction(t, s, savings, checking, "10", "2025-01-10")
	addTestTransaction(t, s, checking, savings, "20", "2025-02-10")
	addTestTransaction(t, s, savings, checking, "30", "2025-03-10")

	// All filters must accept: account AND date range.
	var got []string
	for tx := range s.Records("transactions",
		ByAccount(savings),
		ByDateRange(MustParseDate("2025-02-01"), MustParseDate("2025-12-31")),
	) {
		got = append(got, tx.Decimal("amount").String())
	}
	want := []string{"20", "30"}
	if !slices.Equal(got, want) {
		t.Errorf("filtered amounts = %v, want %v", got, want)
	}
}

func TestRecordsUnknownTableIsEmpty(t *testing.T) {
	s := NewStore()
	for range s.Records("no_such_table") {
		t.Fatalf("Records() on unknown table yielded a record")
	}
	if got := s.Count("no_such_table"); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestUpdateCannotChangeID(t *testing.T) {
	s, checking, _ := newTestStore(t)
	_, err := s.UpdateAccount(checking, Record{"id": "ACC_other"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("UpdateAccount() changing id error = %v, want ErrValidation", err)
	}
}

func TestUpdateNilClearsField(t *testing.T) {
	s, checking, savings := newTestStore(t)
	payee, err := s.AddPayee(Record{"name": "Grocer"})
	if err != nil {
		t.Fatalf("AddPayee() error = %v", err)
	}
	tx, err := s.AddTransaction(Record{
		"debitAccountId":  savings,
		"creditAccountId": checking,
		"amount":          dec("5"),
		"payeeId":         payee.ID(),
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	updated, err := s.UpdateTransaction(tx.ID(), Record{"payeeId": nil})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if !updated.IsNull("payeeId") {
		t.Errorf("payeeId = %v, want null", updated["payeeId"])
	}
	if err := s.DeletePayee(payee.ID()); err != nil {
		t.Errorf("DeletePayee() after clearing the reference error = %v", err)
	}
}

func TestValidateRelationships(t *testing.T) {
	s, checking, savings := newTestStore(t)
	addTestTransaction(t, s, savings, checking, "10", "2025-01-10")
	if violations := s.ValidateRelationships(); len(violations) != 0 {
		t.Fatalf("ValidateRelationships() on consistent store = %v", violations)
	}

	// Corrupt historical data enters through the loading path unchecked.
	s.setTable("transactions", []Record{
		{"id": "TXN1", "date": "2025-01-01", "amount": dec("1"), "debitAccountId": checking, "creditAccountId": "ACC_gone"},
		{"id": "TXN2", "date": "2025-01-02", "amount": dec("1"), "debitAccountId": "", "creditAccountId": savings},
	})
	violations := s.ValidateRelationships()
	if len(violations) != 2 {
		t.Fatalf("ValidateRelationships() = %d violations, want 2: %v", len(violations), violations)
	}
	for _, v := range violations {
		t.Log(v)
	}
}

func TestDirtyTracking(t *testing.T) {
	s := NewStore()
	if got := s.DirtyTables(); len(got) != 0 {
		t.Fatalf("new store DirtyTables() = %v, want none", got)
	}

	if _, err := s.AddCurrency(Record{"code": "USD", "name": "US Dollar"}); err != nil {
		t.Fatalf("AddCurrency() error = %v", err)
	}
	if got, want := s.DirtyTables(), []string{"currencies"}; !slices.Equal(got, want) {
		t.Errorf("DirtyTables() = %v, want %v", got, want)
	}

	s.ClearDirty()
	if got := s.DirtyTables(); len(got) != 0 {
		t.Errorf("DirtyTables() after ClearDirty = %v, want none", got)
	}

	// Loading a table wholesale is not a modification.
	s.setTable("payees", []Record{{"id": "PAYEE_001", "name": "Grocer"}})
	if got := s.DirtyTables(); len(got) != 0 {
		t.Errorf("DirtyTables() after setTable = %v, want none", got)
	}
}

func TestTransactionEffectMarksAccountsDirty(t *testing.T) {
	s, checking, savings := newTestStore(t)
	s.ClearDirty()

	addTestTransaction(t, s, savings, checking, "10", "2025-01-10")
	got := s.DirtyTables()
	want := []string{"accounts", "transactions"}
	if !slices.Equal(got, want) {
		t.Errorf("DirtyTables() = %v, want %v", got, want)
	}
}
