package cmd

import (
	"context"
	"flag"

	"github.com/etnz/moneybook/renderer"
	"github.com/google/subcommands"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "sweep the workbook for broken relationships" }
func (*checkCmd) Usage() string {
	return `mbk check

  Checks every declared relationship in the workbook: required references
  that are missing and references that point to deleted records.
`
}

func (*checkCmd) SetFlags(*flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := OpenStore()
	if err != nil {
		return errorf("%v", err)
	}
	violations := s.ValidateRelationships()
	printMarkdown(renderer.Violations(violations))
	if len(violations) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
