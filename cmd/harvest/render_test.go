package main

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/tax-harvester/internal/application/services"
	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/infrastructure/session"
	"github.com/bimakw/tax-harvester/internal/testutil"
)

func testEnv(t *testing.T) *env {
	t.Helper()

	ds := testutil.NewTestDataset()
	logger := zap.NewNop()
	return &env{
		harvest: services.NewHarvestService(ds, testutil.TestBaseline(), session.NewMemoryStore(), nil, logger),
		close:   func() {},
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs(" btc, ,eth,")
	if len(got) != 2 || got[0] != "btc" || got[1] != "eth" {
		t.Errorf("expected [btc eth], got %v", got)
	}
	if ids := splitIDs(""); len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()

	id, err := e.withSelection(ctx, []string{testutil.BitcoinID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := e.harvest.GetSummary(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	md := summaryMarkdown(summary.Data)

	for _, want := range []string{
		"## Pre Harvesting",
		"| | Short-term | Long-term |",
		"## After Harvesting",
		"| Losses | - $500.00 | - $1,100.00 |",
		"**Realised Capital Gains:** $200.00",
		"**Effective Capital Gains:** - $20.00",
		"You are going to save up to $220.00",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, md)
		}
	}
}

func TestSummaryMarkdown_NoSelection(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()

	id, err := e.withSelection(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := e.harvest.GetSummary(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if md := summaryMarkdown(summary.Data); strings.Contains(md, "save up to") {
		t.Errorf("expected no savings line\n%s", md)
	}
}

func TestHoldingsMarkdown(t *testing.T) {
	e := testEnv(t)
	ctx := context.Background()

	id, err := e.withSelection(ctx, []string{testutil.EthereumID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page, err := e.harvest.GetSessionHoldings(ctx, id, entities.GridQuery{
		Sort: entities.SortState{Column: entities.SortByCoin},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	md := holdingsMarkdown(page)

	if !strings.Contains(md, "| [x] | **ETH** Ethereum |") {
		t.Errorf("expected eth row selected\n%s", md)
	}
	if !strings.Contains(md, "2.0000 ETH |") {
		t.Errorf("expected eth amount to sell\n%s", md)
	}
	if !strings.Contains(md, "1 of 4 row(s) selected. Sorted by coin asc.") {
		t.Errorf("expected footer\n%s", md)
	}
	if strings.Index(md, "**BTC**") > strings.Index(md, "**ETH**") {
		t.Errorf("expected coin order\n%s", md)
	}
}
