package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

type holdingsCmd struct {
	coin   string
	sortBy string
	desc   bool
	sel    string
	limit  int
	offset int
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the holdings grid" }
func (*holdingsCmd) Usage() string {
	return `harvest holdings [-coin <filter>] [-sort <column>] [-desc] [-select id1,id2] [-limit n] [-offset n]

  Displays the holdings with their short- and long-term gains. Selected
  holdings show the amount that would be sold.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.coin, "coin", "", "Filter by coin symbol or name")
	f.StringVar(&c.sortBy, "sort", "", "Sort column (coin, totalHolding, totalValue, stcg, ltcg)")
	f.BoolVar(&c.desc, "desc", false, "Sort descending")
	f.StringVar(&c.sel, "select", "", "Comma separated holding ids to mark selected")
	f.IntVar(&c.limit, "limit", entities.MaxPageSize, "Rows per page")
	f.IntVar(&c.offset, "offset", 0, "Rows to skip")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	q := entities.GridQuery{Filter: c.coin, Limit: c.limit, Offset: c.offset}
	if c.sortBy != "" {
		col, err := entities.ParseSortColumn(c.sortBy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		q.Sort = entities.SortState{Column: col, Desc: c.desc}
	}

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

	page, err := e.harvest.GetSessionHoldings(ctx, sessionID, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(holdingsMarkdown(page))
	return subcommands.ExitSuccess
}
