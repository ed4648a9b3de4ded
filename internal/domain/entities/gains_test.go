package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func holding(id, stcgGain, ltcgGain string) HoldingRecord {
	return HoldingRecord{
		ID:           id,
		Coin:         id,
		CoinName:     id,
		CurrentPrice: d("1"),
		TotalHolding: d("1"),
		STCG:         GainBucket{Balance: d("1"), Gain: d(stcgGain)},
		LTCG:         GainBucket{Balance: d("1"), Gain: d(ltcgGain)},
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("expected %s %s, got %s", name, want, got)
	}
}

func baseline() CapitalGains {
	return CapitalGains{
		ShortTerm: NewGainSummary(d("600"), d("500")),
		LongTerm:  NewGainSummary(d("1200"), d("1100")),
	}
}

func sameGains(a, b CapitalGains) bool {
	for _, term := range Terms {
		x, y := a.Term(term), b.Term(term)
		if !x.Profits.Equal(y.Profits) || !x.Losses.Equal(y.Losses) || !x.Net.Equal(y.Net) {
			return false
		}
	}
	return true
}

func TestNewGainSummary(t *testing.T) {
	cases := []struct {
		profits, losses, net string
	}{
		{"600", "500", "100"},
		{"0", "50", "-50"},
		{"30", "0", "30"},
		{"0", "0", "0"},
		{"0.1", "0.3", "-0.2"},
	}

	for _, tc := range cases {
		s := NewGainSummary(d(tc.profits), d(tc.losses))
		assertDecimal(t, "net", s.Net, tc.net)
	}
}

func TestAggregate(t *testing.T) {
	t.Run("empty list is all zero", func(t *testing.T) {
		for _, term := range Terms {
			s := Aggregate(nil, term)
			assertDecimal(t, "profits", s.Profits, "0")
			assertDecimal(t, "losses", s.Losses, "0")
			assertDecimal(t, "net", s.Net, "0")
		}
	})

	t.Run("splits profits and losses per bucket", func(t *testing.T) {
		records := []HoldingRecord{
			holding("BTC", "-50", "30"),
			holding("ETH", "120.5", "-10"),
			holding("SOL", "0", "0"),
		}

		st := Aggregate(records, ShortTerm)
		assertDecimal(t, "stcg profits", st.Profits, "120.5")
		assertDecimal(t, "stcg losses", st.Losses, "50")
		assertDecimal(t, "stcg net", st.Net, "70.5")

		lt := Aggregate(records, LongTerm)
		assertDecimal(t, "ltcg profits", lt.Profits, "30")
		assertDecimal(t, "ltcg losses", lt.Losses, "10")
		assertDecimal(t, "ltcg net", lt.Net, "20")
	})

	t.Run("counts each listed record once", func(t *testing.T) {
		records := []HoldingRecord{holding("BTC", "10", "0")}
		s := Aggregate(records, ShortTerm)
		assertDecimal(t, "profits", s.Profits, "10")
	})

	t.Run("keeps decimal precision", func(t *testing.T) {
		records := []HoldingRecord{
			holding("A", "0.1", "0"),
			holding("B", "0.2", "0"),
		}
		s := Aggregate(records, ShortTerm)
		assertDecimal(t, "profits", s.Profits, "0.3")
	})
}

func TestCapitalGains_Realised(t *testing.T) {
	b := baseline()
	assertDecimal(t, "stcg net", b.ShortTerm.Net, "100")
	assertDecimal(t, "ltcg net", b.LongTerm.Net, "100")
	assertDecimal(t, "realised", b.Realised(), "200")

	if !b.Term(LongTerm).Net.Equal(b.LongTerm.Net) {
		t.Error("expected Term(LongTerm) to return the long-term summary")
	}
}

func TestComputeHarvest(t *testing.T) {
	t.Run("empty selection falls back to baseline", func(t *testing.T) {
		out := ComputeHarvest(baseline(), nil)

		if out.Harvesting {
			t.Error("expected Harvesting false")
		}
		if out.ShowSavings {
			t.Error("expected no savings message")
		}
		if !sameGains(out.Post, out.Pre) {
			t.Errorf("expected post view to equal baseline, got %+v", out.Post)
		}
		assertDecimal(t, "post realised", out.PostRealised, "200")
		assertDecimal(t, "savings", out.Savings, "0")
	})

	t.Run("harvest reduces realised gains", func(t *testing.T) {
		out := ComputeHarvest(baseline(), []HoldingRecord{holding("BTC", "-50", "30")})

		assertDecimal(t, "stcg profits", out.Post.ShortTerm.Profits, "0")
		assertDecimal(t, "stcg losses", out.Post.ShortTerm.Losses, "50")
		assertDecimal(t, "stcg net", out.Post.ShortTerm.Net, "-50")
		assertDecimal(t, "ltcg profits", out.Post.LongTerm.Profits, "30")
		assertDecimal(t, "ltcg losses", out.Post.LongTerm.Losses, "0")
		assertDecimal(t, "ltcg net", out.Post.LongTerm.Net, "30")
		assertDecimal(t, "post realised", out.PostRealised, "-20")
		assertDecimal(t, "savings", out.Savings, "220")

		if !out.ShowSavings {
			t.Error("expected savings message to be shown")
		}
	})

	t.Run("suppresses savings when not positive", func(t *testing.T) {
		out := ComputeHarvest(baseline(), []HoldingRecord{holding("BTC", "150", "50")})

		assertDecimal(t, "savings", out.Savings, "0")
		if out.ShowSavings {
			t.Error("expected savings message to be suppressed for zero saving")
		}

		out = ComputeHarvest(baseline(), []HoldingRecord{holding("BTC", "500", "0")})
		if out.ShowSavings {
			t.Error("expected savings message to be suppressed for negative saving")
		}
	})
}
