package moneybook

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Transactions are the only records with a derived effect on other tables:
// every mutation immediately moves the balance of the two accounts involved.
// A transaction adds its amount to the debit account and subtracts it from
// the credit account, so the amount itself is always positive and direction
// is carried by the account pair.

// AddTransaction validates and inserts a new transaction, then applies its
// effect to the debit and credit account balances. The id is allocated as a
// time-based TXN id unless the record carries one, and the date defaults to
// today. The transactions table is kept in chronological order; same-day
// entries keep their insertion order.
func (s *Store) AddTransaction(fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("transactions: %v", err)
	}
	if rec.ID() == "" {
		rec["id"] = s.NextTimeID("transactions", "TXN")
	}
	if rec.Str("date") == "" {
		rec["date"] = Today().String()
	}
	if !rec.Has("description") {
		rec["description"] = ""
	}
	if !rec.Has("reconciliationReference") {
		rec["reconciliationReference"] = nil
	}
	if !rec.Has("reconciledAt") {
		rec["reconciledAt"] = nil
	}
	if err := s.validateTransaction(rec); err != nil {
		return nil, err
	}
	inserted, err := s.insert("transactions", rec)
	if err != nil {
		return nil, err
	}
	s.applyTransactionEffect(rec, false)
	s.sortTransactions()
	return inserted, nil
}

// UpdateTransaction merges fields into a transaction and moves account
// balances accordingly. The stored transaction's effect is reversed on its
// old debit and credit accounts before the new effect is applied, so changing
// amount, direction, or either account never double-counts. All validation
// happens first; a rejected update leaves every balance untouched.
func (s *Store) UpdateTransaction(id string, fields Record) (Record, error) {
	i, current := s.find("transactions", id)
	if current == nil {
		return nil, notFoundf("transactions %q", id)
	}
	fields, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("transactions: %v", err)
	}
	if newID, ok := fields["id"].(string); ok && newID != id {
		return nil, validationf("transactions: cannot change id %q to %q", id, newID)
	}
	if err := s.checkFields("transactions", fields); err != nil {
		return nil, err
	}
	merged := current.Clone()
	maps.Copy(merged, fields)
	if err := s.validateTransaction(merged); err != nil {
		return nil, err
	}

	// Reverse first, then apply: the old accounts give the amount back before
	// the new accounts receive it.
	s.applyTransactionEffect(current, true)
	s.tables["transactions"][i] = merged
	s.applyTransactionEffect(merged, false)
	s.sortTransactions()
	s.markDirty("transactions")
	s.log.Debug("record updated", "table", "transactions", "id", id)
	return merged.Clone(), nil
}

// DeleteTransaction removes a transaction after reversing its effect on the
// accounts involved, restoring their balances to the state before the
// transaction existed.
func (s *Store) DeleteTransaction(id string) error {
	i, current := s.find("transactions", id)
	if current == nil {
		return notFoundf("transactions %q", id)
	}
	s.applyTransactionEffect(current, true)
	s.tables["transactions"] = slices.Delete(s.tables["transactions"], i, i+1)
	s.markDirty("transactions")
	s.log.Debug("record deleted", "table", "transactions", "id", id)
	return nil
}

// Reconcile marks a transaction as verified against an external statement.
// It stores the statement reference and the reconciliation timestamp. Account
// balances are never affected. Reconciling an already reconciled transaction
// replaces the reference.
func (s *Store) Reconcile(id, reference string) (Record, error) {
	if reference == "" {
		return nil, validationf("transactions: missing reconciliation reference")
	}
	return s.update("transactions", id, Record{
		"reconciliationReference": reference,
		"reconciledAt":            time.Now().Format(DatetimeFormat),
	})
}

// Unreconcile clears a transaction's reconciliation state.
func (s *Store) Unreconcile(id string) (Record, error) {
	return s.update("transactions", id, Record{
		"reconciliationReference": nil,
		"reconciledAt":            nil,
	})
}

// IsReconciled reports whether the record carries a reconciliation reference.
func IsReconciled(tx Record) bool {
	v, ok := tx["reconciliationReference"].(string)
	return ok && v != ""
}

// AccountBalances derives every account balance from scratch: initialBalance
// plus the signed effect of each transaction, in table order. It is the
// reference computation the incrementally maintained balance field must
// agree with.
func (s *Store) AccountBalances() map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(s.tables["accounts"]))
	for _, account := range s.tables["accounts"] {
		balances[account.ID()] = account.Decimal("initialBalance")
	}
	for _, tx := range s.tables["transactions"] {
		amount := tx.Decimal("amount")
		debit, credit := tx.Str("debitAccountId"), tx.Str("creditAccountId")
		if b, ok := balances[debit]; ok {
			balances[debit] = b.Add(amount)
		}
		if b, ok := balances[credit]; ok {
			balances[credit] = b.Sub(amount)
		}
	}
	return balances
}

// BalanceDrift describes an account whose stored balance diverged from the
// replay-derived one. A healthy store never produces any.
type BalanceDrift struct {
	AccountID string
	Stored    decimal.Decimal
	Derived   decimal.Decimal
}

// CheckBalances compares the stored balance of every account against the
// replay-derived one and returns the divergences.
func (s *Store) CheckBalances() []BalanceDrift {
	derived := s.AccountBalances()
	var drifts []BalanceDrift
	for _, account := range s.tables["accounts"] {
		stored := account.Decimal("balance")
		if want := derived[account.ID()]; !stored.Equal(want) {
			drifts = append(drifts, BalanceDrift{AccountID: account.ID(), Stored: stored, Derived: want})
		}
	}
	return drifts
}

// ByAccount filters transactions debiting or crediting the given account.
func ByAccount(id string) func(Record) bool {
	return func(tx Record) bool {
		return tx.Str("debitAccountId") == id || tx.Str("creditAccountId") == id
	}
}

// ByDateRange filters transactions within [from, to], both inclusive. A zero
// bound leaves that side open.
func ByDateRange(from, to Date) func(Record) bool {
	return func(tx Record) bool {
		d, err := ParseDate(tx.Str("date"))
		if err != nil {
			return false
		}
		if !from.IsZero() && d.Before(from) {
			return false
		}
		if !to.IsZero() && d.After(to) {
			return false
		}
		return true
	}
}

// validateTransaction checks the business rules of a complete transaction
// record: a parseable date (canonicalized in place), a strictly positive
// amount, two distinct existing accounts, and resolvable optional references.
func (s *Store) validateTransaction(rec Record) error {
	date, err := ParseDate(rec.Str("date"))
	if err != nil {
		return validationf("transactions: %v", err)
	}
	rec["date"] = date.String()
	if !rec.Has("amount") {
		return validationf("transactions: missing amount")
	}
	if !rec.Decimal("amount").IsPositive() {
		return validationf("transactions: amount must be positive, got %s", rec.Decimal("amount"))
	}
	if rec.Str("debitAccountId") != "" && rec.Str("debitAccountId") == rec.Str("creditAccountId") {
		return validationf("transactions: debit and credit account are both %q", rec.Str("debitAccountId"))
	}
	return s.checkReferences("transactions", rec, true)
}

// applyTransactionEffect moves the two account balances by the transaction
// amount: debit gains, credit loses. With reverse set the movement is undone.
// Accounts missing from the table are skipped; they can only occur in
// historical data that failed relationship validation.
func (s *Store) applyTransactionEffect(tx Record, reverse bool) {
	amount := tx.Decimal("amount")
	if reverse {
		amount = amount.Neg()
	}
	if _, debit := s.find("accounts", tx.Str("debitAccountId")); debit != nil {
		debit["balance"] = debit.Decimal("balance").Add(amount)
		s.markDirty("accounts")
	} else {
		s.log.Warn("transaction effect skipped, unknown debit account", "transaction", tx.ID(), "account", tx.Str("debitAccountId"))
	}
	if _, credit := s.find("accounts", tx.Str("creditAccountId")); credit != nil {
		credit["balance"] = credit.Decimal("balance").Sub(amount)
		s.markDirty("accounts")
	} else {
		s.log.Warn("transaction effect skipped, unknown credit account", "transaction", tx.ID(), "account", tx.Str("creditAccountId"))
	}
}

// sortTransactions keeps the transactions table in chronological order. The
// sort is stable: same-day transactions keep their relative order, so two
// encodes of the same store are byte-identical.
func (s *Store) sortTransactions() {
	txs := s.tables["transactions"]
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Str("date") < txs[j].Str("date")
	})
}
