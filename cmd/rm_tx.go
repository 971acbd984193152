package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type rmTxCmd struct {
	id string
}

func (*rmTxCmd) Name() string     { return "rm-tx" }
func (*rmTxCmd) Synopsis() string { return "delete a transaction" }
func (*rmTxCmd) Usage() string {
	return `mbk rm-tx -id <transaction>

  Deletes a transaction and reverses its effect on the account balances.
`
}

func (c *rmTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction id")
}

func (c *rmTxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return errorf("-id is required")
	}
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	if err := s.DeleteTransaction(c.id); err != nil {
		return errorf("cannot delete transaction: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Deleted transaction %s\n", c.id)
	return subcommands.ExitSuccess
}
