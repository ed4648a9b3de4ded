package services

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const displayCurrency = money.USD

// formatUSD renders v as fixed 2-decimal USD, negatives as "- $50.00"
func formatUSD(v decimal.Decimal) string {
	cents := v.Abs().Round(2).Shift(2).IntPart()
	s := money.New(cents, displayCurrency).Display()
	if v.Round(2).IsNegative() {
		return "- " + s
	}
	return s
}

// formatLoss renders a loss amount as a negative figure, zero included: "- $0.00"
func formatLoss(v decimal.Decimal) string {
	cents := v.Abs().Round(2).Shift(2).IntPart()
	return "- " + money.New(cents, displayCurrency).Display()
}

// formatGain renders a signed gain the way the holdings grid shows it: "+$84.11", "-$335.83"
func formatGain(v decimal.Decimal) string {
	cents := v.Abs().Round(2).Shift(2).IntPart()
	s := money.New(cents, displayCurrency).Display()
	if v.Round(2).IsNegative() {
		return "-" + s
	}
	return "+" + s
}

// formatRate renders a unit price per coin: "$67,312.10/BTC"
func formatRate(price decimal.Decimal, coin string) string {
	return formatUSD(price) + "/" + coin
}
