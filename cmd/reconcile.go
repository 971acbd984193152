package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type reconcileCmd struct {
	id        string
	reference string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "mark a transaction as matched to a statement" }
func (*reconcileCmd) Usage() string {
	return `mbk reconcile -id <transaction> -ref <reference>

  Records the bank statement reference on a transaction, together with the
  time of matching. Balances are not affected.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction id")
	f.StringVar(&c.reference, "ref", "", "statement reference")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return errorf("-id is required")
	}
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	tx, err := s.Reconcile(c.id, c.reference)
	if err != nil {
		return errorf("cannot reconcile: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Reconciled %s against %q\n", tx.ID(), c.reference)
	return subcommands.ExitSuccess
}

type unreconcileCmd struct {
	id string
}

func (*unreconcileCmd) Name() string     { return "unreconcile" }
func (*unreconcileCmd) Synopsis() string { return "clear a transaction's statement match" }
func (*unreconcileCmd) Usage() string {
	return `mbk unreconcile -id <transaction>

  Clears the statement reference and matching time of a transaction.
`
}

func (c *unreconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction id")
}

func (c *unreconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return errorf("-id is required")
	}
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	tx, err := s.Unreconcile(c.id)
	if err != nil {
		return errorf("cannot unreconcile: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Unreconciled %s\n", tx.ID())
	return subcommands.ExitSuccess
}
