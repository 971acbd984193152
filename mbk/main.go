package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/moneybook/cmd"
	"github.com/etnz/moneybook/logging"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Local configuration, silently absent. Flags and real env still win.
	godotenv.Load()
	logging.Setup()

	// When invoked by shell completion this prints candidates and exits.
	completion().Complete("mbk")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	subs := make(map[string]*complete.Command, len(cmd.CommandNames()))
	for _, name := range cmd.CommandNames() {
		subs[name] = &complete.Command{}
	}
	return &complete.Command{
		Sub: subs,
		Flags: map[string]complete.Predictor{
			"f": predict.Files("*.mbk"),
		},
	}
}
