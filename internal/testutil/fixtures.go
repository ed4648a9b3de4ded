package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

// Common test holding ids
const (
	BitcoinID  = "btc"
	EthereumID = "eth"
	SolanaID   = "sol"
	USDCID     = "usdc"
)

// D parses a decimal literal and panics on malformed input
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestHolding creates a test holding with default values
func CreateTestHolding(opts ...HoldingOption) entities.HoldingRecord {
	h := entities.HoldingRecord{
		ID:              BitcoinID,
		Coin:            "BTC",
		CoinName:        "Bitcoin",
		CurrentPrice:    D("60000"),
		TotalHolding:    D("0.5"),
		AverageBuyPrice: D("40000"),
		STCG:            entities.GainBucket{Balance: D("0.2"), Gain: D("100")},
		LTCG:            entities.GainBucket{Balance: D("0.3"), Gain: D("200")},
	}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

type HoldingOption func(*entities.HoldingRecord)

func WithID(id string) HoldingOption {
	return func(h *entities.HoldingRecord) {
		h.ID = id
	}
}

func WithCoin(coin, name string) HoldingOption {
	return func(h *entities.HoldingRecord) {
		h.Coin = coin
		h.CoinName = name
	}
}

func WithCurrentPrice(price string) HoldingOption {
	return func(h *entities.HoldingRecord) {
		h.CurrentPrice = D(price)
	}
}

func WithTotalHolding(amount string) HoldingOption {
	return func(h *entities.HoldingRecord) {
		h.TotalHolding = D(amount)
	}
}

func WithSTCG(balance, gain string) HoldingOption {
	return func(h *entities.HoldingRecord) {
		h.STCG = entities.GainBucket{Balance: D(balance), Gain: D(gain)}
	}
}

func WithLTCG(balance, gain string) HoldingOption {
	return func(h *entities.HoldingRecord) {
		h.LTCG = entities.GainBucket{Balance: D(balance), Gain: D(gain)}
	}
}

// TestHoldings returns a small dataset covering gains, losses and zero buckets
func TestHoldings() []entities.HoldingRecord {
	return []entities.HoldingRecord{
		CreateTestHolding(
			WithID(BitcoinID), WithCoin("BTC", "Bitcoin"),
			WithCurrentPrice("60000"), WithTotalHolding("0.5"),
			WithSTCG("0.2", "-50"), WithLTCG("0.3", "30"),
		),
		CreateTestHolding(
			WithID(EthereumID), WithCoin("ETH", "Ethereum"),
			WithCurrentPrice("3000"), WithTotalHolding("2"),
			WithSTCG("1", "120"), WithLTCG("1", "-80"),
		),
		CreateTestHolding(
			WithID(SolanaID), WithCoin("SOL", "Solana"),
			WithCurrentPrice("150"), WithTotalHolding("10"),
			WithSTCG("10", "-25.5"), WithLTCG("0", "0"),
		),
		CreateTestHolding(
			WithID(USDCID), WithCoin("USDC", "USDC"),
			WithCurrentPrice("1"), WithTotalHolding("500"),
			WithSTCG("0", "0"), WithLTCG("0", "0"),
		),
	}
}

// NewTestDataset builds a dataset from TestHoldings
func NewTestDataset() *entities.Dataset {
	ds, err := entities.NewDataset(TestHoldings())
	if err != nil {
		panic(err)
	}
	return ds
}

// TestBaseline is the default pre-harvesting position: 600/500 short term, 1200/1100 long term
func TestBaseline() entities.CapitalGains {
	return entities.CapitalGains{
		ShortTerm: entities.NewGainSummary(D("600"), D("500")),
		LongTerm:  entities.NewGainSummary(D("1200"), D("1100")),
	}
}
