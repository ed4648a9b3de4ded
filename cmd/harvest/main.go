package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var rawOutput = flag.Bool("raw", false, "print markdown without terminal styling")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&holdingsCmd{}, "")
	commander.Register(&summaryCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
