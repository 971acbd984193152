// Package renderer turns store data into markdown reports for the command
// line tool. The markdown is meant to be piped through a terminal renderer
// but stays readable as plain text.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/moneybook"
)

// markdown formats report output into a markdown string.
type markdown struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the report.
func (m *markdown) Printf(format string, args ...any) {
	fmt.Fprintf(m, format, args...)
}

// Accounts renders the account list with formatted balances.
func Accounts(s *moneybook.Store) string {
	m := &markdown{&strings.Builder{}}
	m.Printf("# Accounts\n\n")

	accounts := s.Accounts()
	if len(accounts) == 0 {
		m.Printf("No accounts yet. Add one with `add-account`.\n")
		return m.String()
	}

	m.Printf("| ID | Name | Type | Balance |\n")
	m.Printf("|:---|:---|:---|---:|\n")
	for _, acc := range accounts {
		name := acc.Str("name")
		if acc.Has("isActive") && !acc.Bool("isActive") {
			name += " (inactive)"
		}
		typeName := acc.Str("accountTypeId")
		if at, ok := moneybook.AccountTypeByID(typeName); ok {
			typeName = at.Name
		}
		m.Printf("| %s | %s | %s | %s |\n",
			acc.ID(), name, typeName,
			s.FormatAmount(acc.Decimal("balance"), acc.Str("currencyId")))
	}
	m.Printf("\n%d accounts.\n", len(accounts))
	return m.String()
}

// Balances renders the stored-versus-derived balance report: for every
// account the stored balance, the balance replayed from transactions, and
// the difference when they disagree.
func Balances(s *moneybook.Store) string {
	m := &markdown{&strings.Builder{}}
	m.Printf("# Balance Check\n\n")

	derived := s.AccountBalances()
	drifts := make(map[string]moneybook.BalanceDrift)
	for _, d := range s.CheckBalances() {
		drifts[d.AccountID] = d
	}

	accounts := s.Accounts()
	m.Printf("| Account | Stored | Derived | Difference |\n")
	m.Printf("|:---|---:|---:|---:|\n")
	for _, acc := range accounts {
		diff := ""
		if d, ok := drifts[acc.ID()]; ok {
			diff = d.Stored.Sub(d.Derived).String()
		}
		m.Printf("| %s | %s | %s | %s |\n",
			acc.Str("name"),
			s.FormatAmount(acc.Decimal("balance"), acc.Str("currencyId")),
			s.FormatAmount(derived[acc.ID()], acc.Str("currencyId")),
			diff)
	}
	m.Printf("\n")
	if len(drifts) == 0 {
		m.Printf("All %d account balances are consistent.\n", len(accounts))
	} else {
		m.Printf("%d of %d accounts drifted from their transaction history.\n", len(drifts), len(accounts))
	}
	return m.String()
}

// Transactions renders a transaction list, most useful with the filters of
// (*moneybook.Store).Records applied first.
func Transactions(s *moneybook.Store, txs []moneybook.Record) string {
	m := &markdown{&strings.Builder{}}
	m.Printf("# Transactions\n\n")

	if len(txs) == 0 {
		m.Printf("No transactions.\n")
		return m.String()
	}

	m.Printf("| Date | ID | Description | From | To | Amount | Ref |\n")
	m.Printf("|:---|:---|:---|:---|:---|---:|:---|\n")
	for _, tx := range txs {
		m.Printf("| %s | %s | %s | %s | %s | %s | %s |\n",
			tx.Str("date"),
			tx.ID(),
			tx.Str("description"),
			accountName(s, tx.Str("creditAccountId")),
			accountName(s, tx.Str("debitAccountId")),
			amountOf(s, tx),
			tx.Str("reconciliationReference"))
	}
	m.Printf("\n%d transactions.\n", len(txs))
	return m.String()
}

// Violations renders the result of a relationship sweep.
func Violations(violations []error) string {
	m := &markdown{&strings.Builder{}}
	m.Printf("# Consistency Check\n\n")
	if len(violations) == 0 {
		m.Printf("No relationship violations found.\n")
		return m.String()
	}
	for _, v := range violations {
		m.Printf("* %v\n", v)
	}
	m.Printf("\n%d violations found.\n", len(violations))
	return m.String()
}

// accountName resolves an account id to its display name, keeping the raw
// id when the account is gone.
func accountName(s *moneybook.Store, id string) string {
	acc, err := s.Get("accounts", id)
	if err != nil {
		return id
	}
	return acc.Str("name")
}

// amountOf formats a transaction amount in its own currency, falling back
// to the debit account's currency.
func amountOf(s *moneybook.Store, tx moneybook.Record) string {
	currencyID := tx.Str("currencyId")
	if currencyID == "" {
		if acc, err := s.Get("accounts", tx.Str("debitAccountId")); err == nil {
			currencyID = acc.Str("currencyId")
		}
	}
	return s.FormatAmount(tx.Decimal("amount"), currencyID)
}
