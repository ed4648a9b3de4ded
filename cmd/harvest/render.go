package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/bimakw/tax-harvester/internal/application/services"
	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

func printMarkdown(md string) {
	if *rawOutput {
		fmt.Print(md)
		return
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(md)
		return
	}

	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func holdingsMarkdown(page *services.HoldingsPageResponse) string {
	var b strings.Builder

	b.WriteString("# Holdings\n\n")
	b.WriteString("| | Asset | Holdings | Total Current Value | Short-term | Long-Term | Amount to Sell |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")

	for _, row := range page.Data {
		mark := " "
		if row.Selected {
			mark = "x"
		}
		fmt.Fprintf(&b, "| [%s] | **%s** %s | %s %s<br>%s | %s | %s<br>%s %s | %s<br>%s %s | %s |\n",
			mark,
			row.Coin, row.CoinName,
			row.TotalHolding, row.Coin, row.Rate,
			row.TotalValueDisplay,
			row.STCG.GainDisplay, row.STCG.Balance, row.Coin,
			row.LTCG.GainDisplay, row.LTCG.Balance, row.Coin,
			row.AmountToSell,
		)
	}

	fmt.Fprintf(&b, "\n%d of %d row(s) selected.", page.Selection.Selected, page.Selection.Filtered)
	if page.Sort.Column != "" {
		fmt.Fprintf(&b, " Sorted by %s %s.", page.Sort.Column, page.Sort.Order)
	}
	b.WriteString("\n")

	return b.String()
}

func summaryMarkdown(s services.SummaryDTO) string {
	var b strings.Builder

	writeGainsTable(&b, "Pre Harvesting", "Realised Capital Gains", s.PreHarvesting)
	writeGainsTable(&b, "After Harvesting", "Effective Capital Gains", s.PostHarvesting)

	if s.ShowSavings {
		fmt.Fprintf(&b, "> %s\n", s.SavingsMessage)
	}

	return b.String()
}

func writeGainsTable(b *strings.Builder, title, totalLabel string, g services.CapitalGainsDTO) {
	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("|")
	for _, t := range entities.Terms {
		b.WriteString(" | " + t.Label())
	}
	b.WriteString(" |\n|---|---:|---:|\n")
	fmt.Fprintf(b, "| Profits | %s | %s |\n", g.STCG.ProfitsDisplay, g.LTCG.ProfitsDisplay)
	fmt.Fprintf(b, "| Losses | %s | %s |\n", g.STCG.LossesDisplay, g.LTCG.LossesDisplay)
	fmt.Fprintf(b, "| Net Capital Gains | %s | %s |\n", g.STCG.NetDisplay, g.LTCG.NetDisplay)
	fmt.Fprintf(b, "\n**%s:** %s\n\n", totalLabel, g.RealisedDisplay)
}
