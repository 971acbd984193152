package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/moneybook"
	"github.com/google/subcommands"
)

type initCmd struct {
	locale string
	force  bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a fresh workbook with default data" }
func (*initCmd) Usage() string {
	return `mbk init [-locale <locale>] [-force]

  Creates a new workbook seeded with the default categories, currencies,
  exchange rates and a starting cash account. Refuses to overwrite an
  existing workbook unless -force is given.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.locale, "locale", "", "locale for the default data ("+strings.Join(moneybook.SupportedLocales(), ", ")+")")
	f.BoolVar(&c.force, "force", false, "overwrite an existing workbook")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path := WorkbookPath()
	if !c.force {
		if _, err := os.Stat(path); err == nil {
			return errorf("workbook %q already exists, use -force to overwrite", path)
		}
	}

	s, err := moneybook.CreateStore(c.locale)
	if err != nil {
		return errorf("cannot create workbook: %v", err)
	}
	if err := moneybook.SaveWorkbook(path, s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}

	info, err := s.DatabaseInfo()
	if err != nil {
		return errorf("cannot read database info: %v", err)
	}
	fmt.Printf("Created workbook %s (locale %s, schema version %d)\n",
		path, info.Str("locale"), s.SchemaVersion())
	return subcommands.ExitSuccess
}
