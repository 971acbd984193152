package cmd

import (
	"context"
	"flag"

	"github.com/etnz/moneybook/renderer"
	"github.com/google/subcommands"
)

type balancesCmd struct{}

func (*balancesCmd) Name() string { return "balances" }
func (*balancesCmd) Synopsis() string {
	return "compare stored balances against the transaction history"
}
func (*balancesCmd) Usage() string {
	return `mbk balances

  Replays every transaction from each account's initial balance and reports
  any difference against the stored balance.
`
}

func (*balancesCmd) SetFlags(*flag.FlagSet) {}

func (c *balancesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	printMarkdown(renderer.Balances(s))
	if len(s.CheckBalances()) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
