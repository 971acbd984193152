package cmd

import (
	"context"
	"flag"

	"github.com/etnz/moneybook/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `mbk topic [<topic>...]

  Shows documentation for the given topics, or the topic list when none is
  given. The pseudo topic "*" shows everything.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}

	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return errorf("cannot read doc: %v", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
