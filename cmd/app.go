// Package cmd implements the CLI application to manage a moneybook workbook.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/moneybook"
	"github.com/google/subcommands"
)

// As a CLI application it has a very short lived lifecycle, so global flags
// are package variables.

// EnvWorkbookFile selects the workbook path when the -f flag is not given.
const EnvWorkbookFile = "MONEYBOOK_FILE"

var workbookFile = flag.String("f", "", "path to the workbook file (default $MONEYBOOK_FILE, then book.mbk)")

// commands lists every subcommand, grouped for the help output.
var commands = []struct {
	cmd   subcommands.Command
	group string
}{
	{&initCmd{}, "workbook"},
	{&migrateCmd{}, "workbook"},
	{&exportSQLiteCmd{}, "workbook"},
	{&importSQLiteCmd{}, "workbook"},

	{&accountsCmd{}, "accounts"},
	{&addAccountCmd{}, "accounts"},
	{&balancesCmd{}, "accounts"},

	{&txCmd{}, "transactions"},
	{&txsCmd{}, "transactions"},
	{&setTxCmd{}, "transactions"},
	{&rmTxCmd{}, "transactions"},
	{&reconcileCmd{}, "transactions"},
	{&unreconcileCmd{}, "transactions"},

	{&checkCmd{}, "tools"},
	{&updateRatesCmd{}, "tools"},
	{&topicCmd{}, "tools"},
	{&assistCmd{}, "tools"},
}

// Register registers every subcommand on the commander. A main package calls
// Register, then Execute on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, entry := range commands {
		c.Register(entry.cmd, entry.group)
	}
}

// CommandNames lists the registered subcommand names, for shell completion.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for _, entry := range commands {
		names = append(names, entry.cmd.Name())
	}
	return names
}

// WorkbookPath resolves the workbook file: the -f flag first, then the
// MONEYBOOK_FILE environment, then book.mbk in the working directory.
func WorkbookPath() string {
	if *workbookFile != "" {
		return *workbookFile
	}
	if path := os.Getenv(EnvWorkbookFile); path != "" {
		return path
	}
	return "book.mbk"
}

// OpenStore loads the selected workbook, migrated and swept.
func OpenStore() (*moneybook.Store, error) {
	path := WorkbookPath()
	s, err := moneybook.LoadStore(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("workbook %q does not exist, create one with: mbk init", path)
		}
		return nil, err
	}
	return s, nil
}

// SaveStore writes the store back to the selected workbook.
func SaveStore(s *moneybook.Store) error {
	return moneybook.SaveWorkbook(WorkbookPath(), s)
}

// errorf reports a command error on stderr and returns the failure status.
func errorf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// findAccount resolves an account by id, then by exact name, then by unique
// name prefix.
func findAccount(s *moneybook.Store, key string) (moneybook.Record, error) {
	if acc, err := s.Get("accounts", key); err == nil {
		return acc, nil
	}
	var matches []moneybook.Record
	for _, acc := range s.Accounts() {
		name := acc.Str("name")
		if name == key {
			return acc, nil
		}
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(key)) {
			matches = append(matches, acc)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("no account matches %q", key)
	default:
		names := make([]string, len(matches))
		for i, acc := range matches {
			names[i] = acc.Str("name")
		}
		return nil, fmt.Errorf("account %q is ambiguous between %s", key, strings.Join(names, ", "))
	}
}

// findCurrency resolves a currency by id or ISO code.
func findCurrency(s *moneybook.Store, key string) (moneybook.Record, error) {
	if cur, err := s.Get("currencies", key); err == nil {
		return cur, nil
	}
	if cur, ok := s.CurrencyByCode(strings.ToUpper(key)); ok {
		return cur, nil
	}
	return nil, fmt.Errorf("no currency matches %q", key)
}
