package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "upgrade a workbook to the current schema" }
func (*migrateCmd) Usage() string {
	return `mbk migrate

  Loads the workbook, which runs any pending migration, and saves the result
  when something changed. Safe to run repeatedly.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}

	dirty := s.DirtyTables()
	if len(dirty) == 0 {
		fmt.Printf("Workbook is up to date (schema version %d)\n", s.SchemaVersion())
		return subcommands.ExitSuccess
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Migrated to schema version %d, rewrote tables: %s\n",
		s.SchemaVersion(), strings.Join(dirty, ", "))
	return subcommands.ExitSuccess
}
