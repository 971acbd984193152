package cmd

import (
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/moneybook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tempWorkbook points the global -f flag at a fresh path for the duration of
// the test and returns it. No workbook exists there yet.
func tempWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.mbk")
	old := workbookFile
	workbookFile = &path
	t.Cleanup(func() { workbookFile = old })
	return path
}

// runCommand executes a subcommand with the given flag values.
func runCommand(t *testing.T, cmd subcommands.Command, flags map[string]string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	for name, value := range flags {
		if err := f.Set(name, value); err != nil {
			t.Fatalf("setting -%s=%s: %v", name, value, err)
		}
	}
	return cmd.Execute(context.Background(), f)
}

func TestWorkbookPath(t *testing.T) {
	old := workbookFile
	t.Cleanup(func() { workbookFile = old })

	flagPath := "/tmp/from-flag.mbk"
	workbookFile = &flagPath
	t.Setenv(EnvWorkbookFile, "/tmp/from-env.mbk")
	if got := WorkbookPath(); got != flagPath {
		t.Errorf("WorkbookPath() = %q, want the -f flag %q", got, flagPath)
	}

	empty := ""
	workbookFile = &empty
	if got := WorkbookPath(); got != "/tmp/from-env.mbk" {
		t.Errorf("WorkbookPath() = %q, want the environment path", got)
	}

	t.Setenv(EnvWorkbookFile, "")
	if got := WorkbookPath(); got != "book.mbk" {
		t.Errorf("WorkbookPath() = %q, want the default book.mbk", got)
	}
}

func TestCommandNames(t *testing.T) {
	names := CommandNames()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			t.Error("CommandNames() contains an empty name")
		}
		if seen[name] {
			t.Errorf("CommandNames() lists %q twice", name)
		}
		seen[name] = true
	}
	for _, want := range []string{"init", "tx", "accounts", "export-sqlite"} {
		if !seen[want] {
			t.Errorf("CommandNames() is missing %q", want)
		}
	}
}

func TestResolveAccountType(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "checking", want: moneybook.AccountTypeChecking},
		{key: "Credit Card", want: moneybook.AccountTypeCreditCard},
		{key: "SAVINGS", want: moneybook.AccountTypeSavings},
		{key: "ATYPE_006", want: moneybook.AccountTypeLoan},
		{key: "hedge fund", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := resolveAccountType(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resolveAccountType(%q) = %q, want error", tt.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveAccountType(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("resolveAccountType(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindAccount(t *testing.T) {
	s := moneybook.NewStore()
	cur, err := s.AddCurrency(moneybook.Record{"code": "USD", "name": "US Dollar", "isBase": true})
	if err != nil {
		t.Fatalf("AddCurrency() error = %v", err)
	}
	var ids []string
	for _, name := range []string{"Checking", "Cash", "Savings"} {
		acc, err := s.AddAccount(moneybook.Record{
			"name":          name,
			"accountTypeId": moneybook.AccountTypeChecking,
			"currencyId":    cur.ID(),
			"balance":       decimal.Zero,
		})
		if err != nil {
			t.Fatalf("AddAccount(%s) error = %v", name, err)
		}
		ids = append(ids, acc.ID())
	}

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr string
	}{
		{name: "by id", key: ids[1], want: "Cash"},
		{name: "exact name", key: "Cash", want: "Cash"},
		{name: "case-insensitive name", key: "cash", want: "Cash"},
		{name: "unique prefix", key: "s", want: "Savings"},
		{name: "ambiguous prefix", key: "c", wantErr: "ambiguous"},
		{name: "no match", key: "Brokerage", wantErr: "no account matches"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := findAccount(s, tt.key)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("findAccount(%q) error = %v, want %q", tt.key, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("findAccount(%q) error = %v", tt.key, err)
			}
			if got := acc.Str("name"); got != tt.want {
				t.Errorf("findAccount(%q) = %s, want %s", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindCurrency(t *testing.T) {
	s := moneybook.NewStore()
	cur, err := s.AddCurrency(moneybook.Record{"code": "USD", "name": "US Dollar", "isBase": true})
	if err != nil {
		t.Fatalf("AddCurrency() error = %v", err)
	}

	if got, err := findCurrency(s, "usd"); err != nil || got.ID() != cur.ID() {
		t.Errorf("findCurrency(usd) = %v, %v, want the USD currency", got, err)
	}
	if got, err := findCurrency(s, cur.ID()); err != nil || got.ID() != cur.ID() {
		t.Errorf("findCurrency(%s) = %v, %v, want the USD currency", cur.ID(), got, err)
	}
	if _, err := findCurrency(s, "XXX"); err == nil {
		t.Error("findCurrency(XXX) succeeded, want error")
	}
}
