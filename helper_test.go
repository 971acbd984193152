package moneybook

import (
	"testing"

	"github.com/shopspring/decimal"
)

// dec builds a decimal from a literal. For fixtures only.
func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// newTestStore returns a store with a base currency and two accounts:
// checking opened at 1000 and savings at 0.
func newTestStore(t *testing.T) (s *Store, checking, savings string) {
	t.Helper()
	s = NewStore()
	usd, err := s.AddCurrency(Record{"code": "USD", "name": "US Dollar", "isBase": true})
	if err != nil {
		t.Fatalf("AddCurrency() error = %v", err)
	}
	a, err := s.AddAccount(Record{
		"name":          "Checking",
		"accountTypeId": AccountTypeChecking,
		"currencyId":    usd.ID(),
		"balance":       dec("1000"),
	})
	if err != nil {
		t.Fatalf("AddAccount(Checking) error = %v", err)
	}
	b, err := s.AddAccount(Record{
		"name":          "Savings",
		"accountTypeId": AccountTypeSavings,
		"currencyId":    usd.ID(),
	})
	if err != nil {
		t.Fatalf("AddAccount(Savings) error = %v", err)
	}
	return s, a.ID(), b.ID()
}

// addTestTransaction inserts a transfer between two accounts and fails the
// test on error.
func addTestTransaction(t *testing.T, s *Store, debit, credit, amount, date string) Record {
	t.Helper()
	tx, err := s.AddTransaction(Record{
		"debitAccountId":  debit,
		"creditAccountId": credit,
		"amount":          dec(amount),
		"date":            date,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	return tx
}

// balanceOf returns the stored balance of an account and fails the test when
// the account does not exist.
func balanceOf(t *testing.T, s *Store, id string) decimal.Decimal {
	t.Helper()
	account, err := s.Get("accounts", id)
	if err != nil {
		t.Fatalf("Get(accounts, %q) error = %v", id, err)
	}
	return account.Decimal("balance")
}
