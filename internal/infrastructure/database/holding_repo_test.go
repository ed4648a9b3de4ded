package database

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestHoldingRow_ToEntity(t *testing.T) {
	row := holdingRow{
		ID:              "btc",
		Position:        3,
		Coin:            "BTC",
		CoinName:        "Bitcoin",
		CurrentPrice:    decimal.RequireFromString("67312.10"),
		TotalHolding:    decimal.RequireFromString("0.01842"),
		AverageBuyPrice: decimal.RequireFromString("54210"),
		STCGBalance:     decimal.RequireFromString("0.00642"),
		STCGGain:        decimal.RequireFromString("84.11"),
		LTCGBalance:     decimal.RequireFromString("0.012"),
		LTCGGain:        decimal.RequireFromString("-157.22"),
	}

	h := row.toEntity()

	if h.ID != "btc" || h.CoinName != "Bitcoin" {
		t.Errorf("expected btc/Bitcoin, got %s/%s", h.ID, h.CoinName)
	}
	if !h.STCG.Gain.Equal(row.STCGGain) {
		t.Errorf("expected stcg gain %s, got %s", row.STCGGain, h.STCG.Gain)
	}
	if !h.LTCG.Balance.Equal(row.LTCGBalance) {
		t.Errorf("expected ltcg balance %s, got %s", row.LTCGBalance, h.LTCG.Balance)
	}
	if !h.LTCG.Gain.IsNegative() {
		t.Errorf("expected negative ltcg gain, got %s", h.LTCG.Gain)
	}
}
