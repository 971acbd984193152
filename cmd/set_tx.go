package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/moneybook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type setTxCmd struct {
	id          string
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
}

func (*setTxCmd) Name() string     { return "set-tx" }
func (*setTxCmd) Synopsis() string { return "edit a transaction" }
func (*setTxCmd) Usage() string {
	return `mbk set-tx -id <transaction> [-amount <amount>] [-date <date>] [-desc <text>] ...

  Edits the given fields of an existing transaction. Only flags that are
  explicitly set are changed; account balances are adjusted to reflect the
  edit. Setting a flag to the empty string clears the field where the field
  is optional.
`
}

func (c *setTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction id")
	f.StringVar(&c.debit, "debit", "", "account receiving the amount (id or name)")
	f.StringVar(&c.credit, "credit", "", "account providing the amount (id or name)")
	f.StringVar(&c.amount, "amount", "", "positive amount to move")
	f.StringVar(&c.date, "date", "", "transaction date (YYYY-MM-DD)")
	f.StringVar(&c.description, "desc", "", "description")
	f.StringVar(&c.category, "category", "", "category id")
	f.StringVar(&c.subcategory, "subcategory", "", "subcategory id")
	f.StringVar(&c.product, "product", "", "product id")
	f.StringVar(&c.payee, "payee", "", "payee id")
	f.StringVar(&c.payer, "payer", "", "payer id")
}

func (c *setTxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return errorf("-id is required")
	}
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}

	fields := moneybook.Record{}
	var ferr error
	f.Visit(func(fl *flag.Flag) {
		if ferr != nil {
			return
		}
		switch fl.Name {
		case "debit", "credit":
			acc, err := findAccount(s, fl.Value.String())
			if err != nil {
				ferr = fmt.Errorf("-%s: %w", fl.Name, err)
				return
			}
			fields[fl.Name+"AccountId"] = acc.ID()
		case "amount":
			amount, err := decimal.NewFromString(fl.Value.String())
			if err != nil {
				ferr = fmt.Errorf("invalid amount %q: %w", fl.Value.String(), err)
				return
			}
			fields["amount"] = amount
		case "date":
			fields["date"] = fl.Value.String()
		case "desc":
			fields["description"] = fl.Value.String()
		case "category":
			fields["categoryId"] = optional(fl.Value.String())
		case "subcategory":
			fields["subcategoryId"] = optional(fl.Value.String())
		case "product":
			fields["productId"] = optional(fl.Value.String())
		case "payee":
			fields["payeeId"] = optional(fl.Value.String())
		case "payer":
			fields["payerId"] = optional(fl.Value.String())
		}
	})
	if ferr != nil {
		return errorf("%v", ferr)
	}
	if len(fields) == 0 {
		return errorf("nothing to change")
	}

	tx, err := s.UpdateTransaction(c.id, fields)
	if err != nil {
		return errorf("cannot update transaction: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Updated transaction %s\n", tx.ID())
	return subcommands.ExitSuccess
}

// optional maps an empty flag value to an explicit null, clearing the field.
func optional(value string) any {
	if value == "" {
		return nil
	}
	return value
}
