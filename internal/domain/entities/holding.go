package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Term selects one of the two capital-gains buckets of a holding
type Term int

const (
	ShortTerm Term = iota
	LongTerm
)

// Terms lists every bucket in display order
var Terms = []Term{ShortTerm, LongTerm}

// String returns the wire name of the term
func (t Term) String() string {
	switch t {
	case ShortTerm:
		return "stcg"
	case LongTerm:
		return "ltcg"
	default:
		return fmt.Sprintf("Term(%d)", int(t))
	}
}

// Label returns the column heading used for the term
func (t Term) Label() string {
	if t == LongTerm {
		return "Long-term"
	}
	return "Short-term"
}

// ParseTerm parses a wire name into a Term
func ParseTerm(s string) (Term, error) {
	switch s {
	case "stcg", "short", "short-term":
		return ShortTerm, nil
	case "ltcg", "long", "long-term":
		return LongTerm, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTerm, s)
}

// GainBucket holds the quantity and signed gain attributed to one term
type GainBucket struct {
	Balance decimal.Decimal `json:"balance"`
	Gain    decimal.Decimal `json:"gain"`
}

// HoldingRecord is an immutable crypto holding loaded at startup
type HoldingRecord struct {
	ID              string          `json:"id"`
	Coin            string          `json:"coin"`
	CoinName        string          `json:"coinName"`
	Logo            string          `json:"logo,omitempty"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	TotalHolding    decimal.Decimal `json:"totalHolding"`
	AverageBuyPrice decimal.Decimal `json:"averageBuyPrice"`
	STCG            GainBucket      `json:"stcg"`
	LTCG            GainBucket      `json:"ltcg"`
}

// Bucket returns the gain bucket for the given term
func (h HoldingRecord) Bucket(t Term) GainBucket {
	if t == LongTerm {
		return h.LTCG
	}
	return h.STCG
}

// TotalValue returns the current market value of the holding
func (h HoldingRecord) TotalValue() decimal.Decimal {
	return h.TotalHolding.Mul(h.CurrentPrice)
}

// Dataset is the ordered, id-indexed set of holdings for the process lifetime
type Dataset struct {
	records []HoldingRecord
	index   map[string]int
}

// NewDataset validates and indexes the given records
func NewDataset(records []HoldingRecord) (*Dataset, error) {
	ds := &Dataset{
		records: make([]HoldingRecord, len(records)),
		index:   make(map[string]int, len(records)),
	}
	copy(ds.records, records)

	for i, r := range ds.records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record %d", ErrEmptyHoldingID, i)
		}
		if _, ok := ds.index[r.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHolding, r.ID)
		}
		ds.index[r.ID] = i
	}

	return ds, nil
}

// Lookup finds a holding by id
func (d *Dataset) Lookup(id string) (HoldingRecord, bool) {
	if d == nil {
		return HoldingRecord{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return HoldingRecord{}, false
	}
	return d.records[i], true
}

// All returns a copy of every record in load order
func (d *Dataset) All() []HoldingRecord {
	if d == nil {
		return nil
	}
	out := make([]HoldingRecord, len(d.records))
	copy(out, d.records)
	return out
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}
