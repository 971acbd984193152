package cmd

import (
	"context"
	"flag"

	"github.com/etnz/moneybook"
	"github.com/etnz/moneybook/renderer"
	"github.com/google/subcommands"
)

type txsCmd struct {
	since   string
	until   string
	account string
}

func (*txsCmd) Name() string     { return "txs" }
func (*txsCmd) Synopsis() string { return "list transactions" }
func (*txsCmd) Usage() string {
	return `mbk txs [-since <date>] [-until <date>] [-account <account>]

  Lists transactions in chronological order, optionally restricted to a date
  range or to one account's movements.
`
}

func (c *txsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.since, "since", "", "first date to include (YYYY-MM-DD)")
	f.StringVar(&c.until, "until", "", "last date to include (YYYY-MM-DD)")
	f.StringVar(&c.account, "account", "", "only movements of this account (id or name)")
}

func (c *txsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}

	var filters []func(moneybook.Record) bool
	if c.since != "" || c.until != "" {
		from, to := moneybook.Date{}, moneybook.Date{}
		if c.since != "" {
			if from, err = moneybook.ParseDate(c.since); err != nil {
				return errorf("invalid -since date: %v", err)
			}
		}
		if c.until != "" {
			if to, err = moneybook.ParseDate(c.until); err != nil {
				return errorf("invalid -until date: %v", err)
			}
		}
		filters = append(filters, moneybook.ByDateRange(from, to))
	}
	if c.account != "" {
		acc, err := findAccount(s, c.account)
		if err != nil {
			return errorf("%v", err)
		}
		filters = append(filters, moneybook.ByAccount(acc.ID()))
	}

	var txs []moneybook.Record
	for tx := range s.Records("transactions", filters...) {
		txs = append(txs, tx)
	}
	printMarkdown(renderer.Transactions(s, txs))
	return subcommands.ExitSuccess
}
