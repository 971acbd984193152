package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type updateRatesCmd struct{}

func (*updateRatesCmd) Name() string     { return "update-rates" }
func (*updateRatesCmd) Synopsis() string { return "fetch the latest exchange rates" }
func (*updateRatesCmd) Usage() string {
	return `mbk update-rates

  Fetches the latest reference rates from the configured provider and
  records one exchange rate per currency against the base currency. The
  call is counted against the provider's daily limit.
`
}

func (*updateRatesCmd) SetFlags(*flag.FlagSet) {}

func (c *updateRatesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	n, err := s.UpdateDailyRates(nil)
	if err != nil {
		return errorf("cannot update rates: %v", err)
	}
	if err := SaveStore(s); err != nil {
		return errorf("cannot save workbook: %v", err)
	}
	fmt.Printf("Updated %d exchange rates\n", n)
	return subcommands.ExitSuccess
}
