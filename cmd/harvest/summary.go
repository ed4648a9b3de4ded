package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type summaryCmd struct {
	sel string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "compare capital gains before and after harvesting" }
func (*summaryCmd) Usage() string {
	return `harvest summary [-select id1,id2]

  Displays the pre- and post-harvesting capital gains for the selected
  holdings and the tax liability the selection would save.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sel, "select", "", "Comma separated holding ids to harvest")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	sessionID, err := e.withSelection(ctx, splitIDs(c.sel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	summary, err := e.harvest.GetSummary(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(summaryMarkdown(summary.Data))
	return subcommands.ExitSuccess
}
