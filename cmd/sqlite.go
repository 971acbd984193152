package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/moneybook"
	"github.com/etnz/moneybook/sqlitebook"
	"github.com/google/subcommands"
)

type exportSQLiteCmd struct {
	output string
}

func (*exportSQLiteCmd) Name() string     { return "export-sqlite" }
func (*exportSQLiteCmd) Synopsis() string { return "export the workbook to a SQLite file" }
func (*exportSQLiteCmd) Usage() string {
	return `mbk export-sqlite -o <file.db>

  Snapshots the workbook into a SQLite database, one SQL table per workbook
  table, for inspection with any SQL tooling.
`
}

func (c *exportSQLiteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "SQLite file to write")
}

func (c *exportSQLiteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		return errorf("-o is required")
	}
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	if err := sqlitebook.Export(ctx, c.output, s); err != nil {
		return errorf("cannot export: %v", err)
	}
	fmt.Printf("Exported workbook to %s\n", c.output)
	return subcommands.ExitSuccess
}

type importSQLiteCmd struct {
	input string
}

func (*importSQLiteCmd) Name() string     { return "import-sqlite" }
func (*importSQLiteCmd) Synopsis() string { return "import a SQLite export into a workbook" }
func (*importSQLiteCmd) Usage() string {
	return `mbk import-sqlite -i <file.db>

  Reads a previously exported SQLite database and writes it as the selected
  workbook, after validation and migrations.
`
}

func (c *importSQLiteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "SQLite file to read")
}

func (c *importSQLiteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		return errorf("-i is required")
	}
	buffers, err := sqlitebook.Import(ctx, c.input)
	if err != nil {
		return errorf("cannot import: %v", err)
	}
	s := moneybook.NewStore()
	if err := s.LoadTables(buffers); err != nil {
		return errorf("cannot load imported data: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Imported %s into %s\n", c.input, WorkbookPath())
	return subcommands.ExitSuccess
}
