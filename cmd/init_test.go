package cmd

import (
	"testing"

	"github.com/etnz/moneybook"
	"github.com/google/subcommands"
)

func TestInitCreatesWorkbook(t *testing.T) {
	path := tempWorkbook(t)

	if status := runCommand(t, &initCmd{}, nil); status != subcommands.ExitSuccess {
		t.Fatalf("init = %v, want success", status)
	}

	s, err := moneybook.LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore() error = %v", err)
	}
	if _, ok := s.BaseCurrency(); !ok {
		t.Error("initialized workbook has no base currency")
	}
	if got := s.Count("accounts"); got != 1 {
		t.Errorf("Count(accounts) = %d, want the starting cash account", got)
	}
	if got, want := s.SchemaVersion(), moneybook.LatestSchemaVersion(); got != want {
		t.Errorf("SchemaVersion() = %d, want %d", got, want)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	tempWorkbook(t)

	if status := runCommand(t, &initCmd{}, nil); status != subcommands.ExitSuccess {
		t.Fatalf("init = %v, want success", status)
	}
	if status := runCommand(t, &initCmd{}, nil); status != subcommands.ExitFailure {
		t.Fatalf("second init = %v, want failure without -force", status)
	}
	if status := runCommand(t, &initCmd{}, map[string]string{"force": "true"}); status != subcommands.ExitSuccess {
		t.Fatalf("init -force = %v, want success", status)
	}
}

func TestInitRejectsUnknownLocale(t *testing.T) {
	tempWorkbook(t)

	if status := runCommand(t, &initCmd{}, map[string]string{"locale": "xx-XX"}); status != subcommands.ExitFailure {
		t.Fatalf("init -locale xx-XX = %v, want failure", status)
	}
}
