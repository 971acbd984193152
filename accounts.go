package moneybook

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountGroup splits account types into the two sides of the balance sheet.
type AccountGroup string

const (
	// Asset groups accounts whose balance is money owned.
	Asset AccountGroup = "asset"
	// Liability groups accounts whose balance is money owed.
	Liability AccountGroup = "liability"
)

// AccountType is one of the seven fixed kinds an account can have. The set is
// hardwired: account types are an enumeration in code, not a table.
type AccountType struct {
	ID    string
	Name  string
	Group AccountGroup
}

// The fixed account types.
const (
	AccountTypeChecking   = "ATYPE_001"
	AccountTypeSavings    = "ATYPE_002"
	AccountTypeCash       = "ATYPE_003"
	AccountTypeInvestment = "ATYPE_004"
	AccountTypeCreditCard = "ATYPE_005"
	AccountTypeLoan       = "ATYPE_006"
	AccountTypeOther      = "ATYPE_007"
)

var accountTypes = []AccountType{
	{ID: AccountTypeChecking, Name: "Checking", Group: Asset},
	{ID: AccountTypeSavings, Name: "Savings", Group: Asset},
	{ID: AccountTypeCash, Name: "Cash", Group: Asset},
	{ID: AccountTypeInvestment, Name: "Investment", Group: Asset},
	{ID: AccountTypeCreditCard, Name: "Credit Card", Group: Liability},
	{ID: AccountTypeLoan, Name: "Loan", Group: Liability},
	{ID: AccountTypeOther, Name: "Other", Group: Asset},
}

// AccountTypes returns the fixed account types in display order.
func AccountTypes() []AccountType {
	out := make([]AccountType, len(accountTypes))
	copy(out, accountTypes)
	return out
}

// AccountTypeByID returns the account type with the given id.
func AccountTypeByID(id string) (AccountType, bool) {
	for _, at := range accountTypes {
		if at.ID == id {
			return at, true
		}
	}
	return AccountType{}, false
}

// AddAccount validates and inserts a new account. The id is allocated as a
// time-based ACC id unless the record carries one. Missing balance fields
// default to zero; the account always starts with
// balance == initialBalance, so a store with no transactions is trivially
// consistent. includeInOverview and isActive default to true, order to the
// next free slot.
func (s *Store) AddAccount(fields Record) (Record, error) {
	rec, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("accounts: %v", err)
	}
	if rec.Str("name") == "" {
		return nil, validationf("accounts: missing name")
	}
	if _, ok := AccountTypeByID(rec.Str("accountTypeId")); !ok {
		return nil, validationf("accounts: unknown account type %q", rec.Str("accountTypeId"))
	}
	if rec.ID() == "" {
		rec["id"] = s.NextTimeID("accounts", "ACC")
	}
	switch {
	case !rec.Has("balance") && !rec.Has("initialBalance"):
		rec["balance"] = decimal.Zero
		rec["initialBalance"] = decimal.Zero
	case !rec.Has("initialBalance"):
		rec["initialBalance"] = rec.Decimal("balance")
	case !rec.Has("balance"):
		rec["balance"] = rec.Decimal("initialBalance")
	}
	if !rec.Has("includeInOverview") {
		rec["includeInOverview"] = true
	}
	if !rec.Has("isActive") {
		rec["isActive"] = true
	}
	if !rec.Has("order") {
		rec["order"] = s.nextOrder("accounts")
	}
	return s.insert("accounts", rec)
}

// UpdateAccount merges fields into an account. Setting balance explicitly is
// an adjustment: initialBalance shifts by the same delta, so the invariant
// balance == initialBalance + sum of transaction effects keeps holding
// without touching any transaction. Passing initialBalance alongside balance
// overrides the shift.
func (s *Store) UpdateAccount(id string, fields Record) (Record, error) {
	_, current := s.find("accounts", id)
	if current == nil {
		return nil, notFoundf("accounts %q", id)
	}
	fields, err := normalizeRecord(fields)
	if err != nil {
		return nil, validationf("accounts: %v", err)
	}
	if typeID, ok := fields["accountTypeId"].(string); ok {
		if _, valid := AccountTypeByID(typeID); !valid {
			return nil, validationf("accounts: unknown account type %q", typeID)
		}
	}
	if name, ok := fields["name"].(string); ok && name == "" {
		return nil, validationf("accounts: missing name")
	}
	if fields.Has("balance") && !fields.Has("initialBalance") {
		delta := fields.Decimal("balance").Sub(current.Decimal("balance"))
		fields["initialBalance"] = current.Decimal("initialBalance").Add(delta)
	}
	return s.update("accounts", id, fields)
}

// DeleteAccount removes an account. It is refused with ErrConstraint while
// any transaction still debits or credits the account.
func (s *Store) DeleteAccount(id string) error {
	return s.delete("accounts", id)
}

// Accounts returns all accounts sorted by their order field, ties broken by
// name.
func (s *Store) Accounts() []Record {
	accounts := s.Table("accounts")
	sort.SliceStable(accounts, func(i, j int) bool {
		oi, oj := accounts[i].Decimal("order"), accounts[j].Decimal("order")
		if !oi.Equal(oj) {
			return oi.LessThan(oj)
		}
		return accounts[i].Str("name") < accounts[j].Str("name")
	})
	return accounts
}

// nextOrder returns max(order)+1 over a table, starting at 1.
func (s *Store) nextOrder(table string) decimal.Decimal {
	max := decimal.Zero
	for _, rec := range s.tables[table] {
		if o := rec.Decimal("order"); o.GreaterThan(max) {
			max = o
		}
	}
	return max.Add(decimal.NewFromInt(1))
}
