package cmd

import (
	"context"
	"flag"

	"github.com/etnz/moneybook/renderer"
	"github.com/google/subcommands"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with their balances" }
func (*accountsCmd) Usage() string {
	return `mbk accounts

  Lists every account with its type and formatted balance.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (c *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	printMarkdown(renderer.Accounts(s))
	return subcommands.ExitSuccess
}
