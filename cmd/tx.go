package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/moneybook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type txCmd struct {
	debit       string
	credit      string
	amount      string
	date        string
	description string
	category    string
	subcategory string
	product     string
	payee       string
	payer       string
	currency    string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "add a transaction" }
func (*txCmd) Usage() string {
	return `mbk tx -debit <account> -credit <account> -amount <amount> [-date <date>] [-desc <text>] ...

  Adds a transaction moving amount from the credit account to the debit
  account. Accounts can be given by id or name. The date defaults to today.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.debit, "debit", "", "account receiving the amount (id or name)")
	f.StringVar(&c.credit, "credit", "", "account providing the amount (id or name)")
	f.StringVar(&c.amount, "amount", "", "positive amount to move")
	f.StringVar(&c.date, "date", "", "transaction date (YYYY-MM-DD, default today)")
	f.StringVar(&c.description, "desc", "", "description")
	f.StringVar(&c.category, "category", "", "category id")
	f.StringVar(&c.subcategory, "subcategory", "", "subcategory id")
	f.StringVar(&c.product, "product", "", "product id")
	f.StringVar(&c.payee, "payee", "", "payee id")
	f.StringVar(&c.payer, "payer", "", "payer id")
	f.StringVar(&c.currency, "currency", "", "currency code or id (default: the debit account's)")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}

	debit, err := findAccount(s, c.debit)
	if err != nil {
		return errorf("-debit: %v", err)
	}
	credit, err := findAccount(s, c.credit)
	if err != nil {
		return errorf("-credit: %v", err)
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		return errorf("invalid amount %q: %v", c.amount, err)
	}

	fields := moneybook.Record{
		"debitAccountId":  debit.ID(),
		"creditAccountId": credit.ID(),
		"amount":          amount,
		"description":     c.description,
	}
	if c.date != "" {
		fields["date"] = c.date
	}
	for field, value := range map[string]string{
		"categoryId":    c.category,
		"subcategoryId": c.subcategory,
		"productId":     c.product,
		"payeeId":       c.payee,
		"payerId":       c.payer,
	} {
		if value != "" {
			fields[field] = value
		}
	}
	if c.currency != "" {
		cur, err := findCurrency(s, c.currency)
		if err != nil {
			return errorf("%v", err)
		}
		fields["currencyId"] = cur.ID()
	}

	tx, err := s.AddTransaction(fields)
	if err != nil {
		return errorf("cannot add transaction: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Added transaction %s: %s %s -> %s\n",
		tx.ID(), tx.Decimal("amount"), credit.Str("name"), debit.Str("name"))
	return subcommands.ExitSuccess
}
