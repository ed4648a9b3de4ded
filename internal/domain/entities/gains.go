package entities

import "github.com/shopspring/decimal"

// GainSummary is the profit/loss reduction of one term bucket
type GainSummary struct {
	Profits decimal.Decimal `json:"profits"`
	Losses  decimal.Decimal `json:"losses"`
	Net     decimal.Decimal `json:"net"`
}

// NewGainSummary builds a summary from non-negative profits and losses
func NewGainSummary(profits, losses decimal.Decimal) GainSummary {
	return GainSummary{
		Profits: profits,
		Losses:  losses,
		Net:     profits.Sub(losses),
	}
}

// Aggregate reduces the gains of the selected bucket over records.
// Positive gains count as profits, negative gains as losses, zero is ignored.
func Aggregate(records []HoldingRecord, term Term) GainSummary {
	profits := decimal.Zero
	losses := decimal.Zero

	for _, r := range records {
		gain := r.Bucket(term).Gain
		switch gain.Sign() {
		case 1:
			profits = profits.Add(gain)
		case -1:
			losses = losses.Add(gain.Abs())
		}
	}

	return NewGainSummary(profits, losses)
}

// CapitalGains pairs the short-term and long-term summaries
type CapitalGains struct {
	ShortTerm GainSummary `json:"stcg"`
	LongTerm  GainSummary `json:"ltcg"`
}

// AggregateCapitalGains reduces both buckets over records
func AggregateCapitalGains(records []HoldingRecord) CapitalGains {
	return CapitalGains{
		ShortTerm: Aggregate(records, ShortTerm),
		LongTerm:  Aggregate(records, LongTerm),
	}
}

// Term returns the summary for one bucket
func (c CapitalGains) Term(t Term) GainSummary {
	if t == LongTerm {
		return c.LongTerm
	}
	return c.ShortTerm
}

// Realised is the net gain across both buckets
func (c CapitalGains) Realised() decimal.Decimal {
	return c.ShortTerm.Net.Add(c.LongTerm.Net)
}

// HarvestOutcome compares the baseline position against the selected holdings
type HarvestOutcome struct {
	Pre          CapitalGains
	Post         CapitalGains
	PreRealised  decimal.Decimal
	PostRealised decimal.Decimal
	Savings      decimal.Decimal
	ShowSavings  bool
	Harvesting   bool
}

// ComputeHarvest derives the post-harvesting view from the selection.
// An empty selection falls back to the baseline and never reports savings.
func ComputeHarvest(baseline CapitalGains, selected []HoldingRecord) HarvestOutcome {
	out := HarvestOutcome{
		Pre:         baseline,
		Post:        baseline,
		PreRealised: baseline.Realised(),
	}
	out.PostRealised = out.PreRealised

	if len(selected) == 0 {
		out.Savings = decimal.Zero
		return out
	}

	out.Harvesting = true
	out.Post = AggregateCapitalGains(selected)
	out.PostRealised = out.Post.Realised()
	out.Savings = out.PreRealised.Sub(out.PostRealised)
	out.ShowSavings = out.Savings.IsPositive()

	return out
}
