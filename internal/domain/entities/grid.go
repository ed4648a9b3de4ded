package entities

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortColumn names a sortable grid column
type SortColumn string

const (
	SortByCoin         SortColumn = "coin"
	SortByTotalHolding SortColumn = "totalHolding"
	SortByTotalValue   SortColumn = "totalValue"
	SortBySTCG         SortColumn = "stcg"
	SortByLTCG         SortColumn = "ltcg"
)

// ParseSortColumn accepts the camelCase column ids and their snake_case forms
func ParseSortColumn(s string) (SortColumn, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "coin", "asset":
		return SortByCoin, nil
	case "totalholding", "holdings":
		return SortByTotalHolding, nil
	case "totalvalue":
		return SortByTotalValue, nil
	case "stcg", "shortterm":
		return SortBySTCG, nil
	case "ltcg", "longterm":
		return SortByLTCG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortColumn, s)
}

// SortState is the active sort of a grid. A zero value means load order.
type SortState struct {
	Column SortColumn `json:"column,omitempty"`
	Desc   bool       `json:"desc"`
}

// Toggle activates col: ascending first, then flipping direction on every
// repeated activation of the same column.
func (s SortState) Toggle(col SortColumn) SortState {
	if s.Column == col {
		return SortState{Column: col, Desc: !s.Desc}
	}
	return SortState{Column: col}
}

func (s SortState) IsZero() bool {
	return s.Column == ""
}

// Order returns "asc" or "desc"
func (s SortState) Order() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// GridQuery describes one page of the holdings grid
type GridQuery struct {
	Filter string
	Sort   SortState
	Limit  int
	Offset int
}

// Normalize clamps the page window into its valid range
func (q GridQuery) Normalize() GridQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// GridPage is a filtered, sorted window over the dataset
type GridPage struct {
	Rows   []HoldingRecord
	Total  int
	Limit  int
	Offset int
	// Filtered holds every row that passed the filter, in sorted order
	Filtered []HoldingRecord
}

// QueryGrid filters, sorts and paginates records without modifying them
func QueryGrid(records []HoldingRecord, q GridQuery) GridPage {
	q = q.Normalize()

	filtered := FilterHoldings(records, q.Filter)
	SortHoldings(filtered, q.Sort)

	start := q.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + q.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return GridPage{
		Rows:     filtered[start:end],
		Total:    len(filtered),
		Limit:    q.Limit,
		Offset:   q.Offset,
		Filtered: filtered,
	}
}

// FilterHoldings keeps records whose coin or coin name contains filter,
// case-insensitively. The result is always a fresh slice.
func FilterHoldings(records []HoldingRecord, filter string) []HoldingRecord {
	filter = strings.ToLower(strings.TrimSpace(filter))
	out := make([]HoldingRecord, 0, len(records))
	for _, r := range records {
		if filter == "" ||
			strings.Contains(strings.ToLower(r.Coin), filter) ||
			strings.Contains(strings.ToLower(r.CoinName), filter) {
			out = append(out, r)
		}
	}
	return out
}

// SortHoldings sorts records in place; ties keep their relative order
func SortHoldings(records []HoldingRecord, state SortState) {
	if state.IsZero() {
		return
	}

	compare := func(a, b HoldingRecord) int {
		switch state.Column {
		case SortByCoin:
			return strings.Compare(strings.ToLower(a.Coin), strings.ToLower(b.Coin))
		case SortByTotalHolding:
			return a.TotalHolding.Cmp(b.TotalHolding)
		case SortByTotalValue:
			return a.TotalValue().Cmp(b.TotalValue())
		case SortBySTCG:
			return a.STCG.Gain.Cmp(b.STCG.Gain)
		case SortByLTCG:
			return a.LTCG.Gain.Cmp(b.LTCG.Gain)
		}
		return 0
	}

	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j])
		if state.Desc {
			return c > 0
		}
		return c < 0
	})
}

// AmountToSell is the quantity harvested when a row is selected
func AmountToSell(r HoldingRecord, selected bool) (decimal.Decimal, bool) {
	if !selected || !r.TotalHolding.IsPositive() {
		return decimal.Zero, false
	}
	return r.TotalHolding, true
}
