package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/moneybook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type addAccountCmd struct {
	name     string
	typeKey  string
	currency string
	balance  string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "add a new account" }
func (*addAccountCmd) Usage() string {
	return `mbk add-account -name <name> [-type <type>] [-currency <code>] [-balance <amount>]

  Adds an account. The type can be given by name (checking, savings, cash,
  investment, credit card, loan, other) or id; it defaults to checking. The
  currency defaults to the base currency.
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "account name")
	f.StringVar(&c.typeKey, "type", "checking", "account type name or id")
	f.StringVar(&c.currency, "currency", "", "currency code or id")
	f.StringVar(&c.balance, "balance", "", "starting balance")
}

func (c *addAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}

	fields := moneybook.Record{"name": c.name}

	typeID, err := resolveAccountType(c.typeKey)
	if err != nil {
		return errorf("%v", err)
	}
	fields["accountTypeId"] = typeID

	if c.currency != "" {
		cur, err := findCurrency(s, c.currency)
		if err != nil {
			return errorf("%v", err)
		}
		fields["currencyId"] = cur.ID()
	} else if base, ok := s.BaseCurrency(); ok {
		fields["currencyId"] = base.ID()
	}

	if c.balance != "" {
		amount, err := decimal.NewFromString(c.balance)
		if err != nil {
			return errorf("invalid balance %q: %v", c.balance, err)
		}
		fields["balance"] = amount
		fields["initialBalance"] = amount
	}

	acc, err := s.AddAccount(fields)
	if err != nil {
		return errorf("cannot add account: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Added account %s (%s)\n", acc.Str("name"), acc.ID())
	return subcommands.ExitSuccess
}

// resolveAccountType matches a type by id or case-insensitive name.
func resolveAccountType(key string) (string, error) {
	for _, at := range moneybook.AccountTypes() {
		if at.ID == key || strings.EqualFold(at.Name, key) {
			return at.ID, nil
		}
	}
	var names []string
	for _, at := range moneybook.AccountTypes() {
		names = append(names, strings.ToLower(at.Name))
	}
	return "", fmt.Errorf("unknown account type %q, want one of %s", key, strings.Join(names, ", "))
}
