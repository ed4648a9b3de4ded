package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/domain/repositories"
	"github.com/bimakw/tax-harvester/internal/infrastructure/cache"
)

// LoadDataset reads every holding from repo and indexes it
func LoadDataset(ctx context.Context, repo repositories.HoldingRepository) (*entities.Dataset, error) {
	records, err := repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	ds, err := entities.NewDataset(records)
	if err != nil {
		return nil, fmt.Errorf("invalid holdings dataset: %w", err)
	}

	return ds, nil
}

// HoldingsService provides the holdings grid over the immutable dataset
type HoldingsService struct {
	dataset  *entities.Dataset
	cache    *cache.RedisCache
	logger   *zap.Logger
	pageSize int
}

// NewHoldingsService creates a new holdings service
func NewHoldingsService(
	dataset *entities.Dataset,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *HoldingsService {
	return &HoldingsService{
		dataset:  dataset,
		cache:    cache,
		logger:   logger,
		pageSize: entities.DefaultPageSize,
	}
}

// WithPageSize sets the page size used when a query has no limit
func (s *HoldingsService) WithPageSize(n int) *HoldingsService {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// GainBucketDTO is the API representation of a gain bucket
type GainBucketDTO struct {
	Balance     string `json:"balance"`
	Gain        string `json:"gain"`
	GainDisplay string `json:"gain_display"`
}

// HoldingDTO is the API representation of a holding
type HoldingDTO struct {
	ID                string        `json:"id"`
	Coin              string        `json:"coin"`
	CoinName          string        `json:"coin_name"`
	Logo              string        `json:"logo,omitempty"`
	CurrentPrice      string        `json:"current_price"`
	TotalHolding      string        `json:"total_holding"`
	AverageBuyPrice   string        `json:"average_buy_price"`
	TotalValue        string        `json:"total_value"`
	TotalValueDisplay string        `json:"total_value_display"`
	Rate              string        `json:"rate"`
	STCG              GainBucketDTO `json:"stcg"`
	LTCG              GainBucketDTO `json:"ltcg"`
}

// HoldingRowDTO is a grid row: a holding plus its selection state
type HoldingRowDTO struct {
	HoldingDTO
	Selected     bool   `json:"selected"`
	AmountToSell string `json:"amount_to_sell"`
}

// PaginationResponse contains pagination metadata
type PaginationResponse struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// SortDTO is the API representation of a grid sort
type SortDTO struct {
	Column string `json:"column,omitempty"`
	Order  string `json:"order,omitempty"`
}

// SelectionCountDTO reports "N of M row(s) selected"
type SelectionCountDTO struct {
	Selected int `json:"selected"`
	Filtered int `json:"filtered"`
}

// HoldingsPageResponse is the API response for a grid page
type HoldingsPageResponse struct {
	Data       []HoldingRowDTO    `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
	Sort       SortDTO            `json:"sort"`
	Selection  SelectionCountDTO  `json:"selection"`
}

// HoldingResponse is the API response for single holding queries
type HoldingResponse struct {
	Data HoldingDTO `json:"data"`
}

// ListHoldings returns one page of the grid with no selection applied
func (s *HoldingsService) ListHoldings(ctx context.Context, q entities.GridQuery) (*HoldingsPageResponse, error) {
	if q.Limit <= 0 {
		q.Limit = s.pageSize
	}
	q = q.Normalize()
	q.Filter = strings.TrimSpace(q.Filter)

	// Generate cache key
	cacheKey := fmt.Sprintf("holdings:list:%s:%s:%s:%d:%d",
		strings.ToLower(q.Filter), q.Sort.Column, q.Sort.Order(), q.Limit, q.Offset)

	// Try cache first
	var cached HoldingsPageResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	response := buildPage(s.dataset.All(), q, nil)

	// Cache the response; the dataset never changes while the process runs
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// GetHolding retrieves a single holding, nil when it does not exist
func (s *HoldingsService) GetHolding(ctx context.Context, id string) (*HoldingResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record, ok := s.dataset.Lookup(id)
	if !ok {
		return nil, nil
	}

	return &HoldingResponse{Data: holdingToDTO(record)}, nil
}

// InvalidateCache drops cached grid pages written against an earlier dataset
func (s *HoldingsService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePattern(ctx, "holdings:*"); err != nil {
		return fmt.Errorf("failed to invalidate holdings cache: %w", err)
	}
	return nil
}

// Dataset returns the dataset the service serves
func (s *HoldingsService) Dataset() *entities.Dataset {
	return s.dataset
}

// buildPage runs the grid query and marks rows found in selected
func buildPage(records []entities.HoldingRecord, q entities.GridQuery, selected map[string]bool) *HoldingsPageResponse {
	page := entities.QueryGrid(records, q)

	rows := make([]HoldingRowDTO, len(page.Rows))
	for i, r := range page.Rows {
		isSelected := selected[r.ID]
		amount := "-"
		if v, ok := entities.AmountToSell(r, isSelected); ok {
			amount = v.StringFixed(4) + " " + r.Coin
		}
		rows[i] = HoldingRowDTO{
			HoldingDTO:   holdingToDTO(r),
			Selected:     isSelected,
			AmountToSell: amount,
		}
	}

	selectedInFilter := 0
	for _, r := range page.Filtered {
		if selected[r.ID] {
			selectedInFilter++
		}
	}

	sortDTO := SortDTO{}
	if !q.Sort.IsZero() {
		sortDTO = SortDTO{Column: string(q.Sort.Column), Order: q.Sort.Order()}
	}

	return &HoldingsPageResponse{
		Data: rows,
		Pagination: PaginationResponse{
			Total:  int64(page.Total),
			Limit:  page.Limit,
			Offset: page.Offset,
		},
		Sort: sortDTO,
		Selection: SelectionCountDTO{
			Selected: selectedInFilter,
			Filtered: page.Total,
		},
	}
}

// holdingToDTO converts a holding entity to a DTO
func holdingToDTO(h entities.HoldingRecord) HoldingDTO {
	return HoldingDTO{
		ID:                h.ID,
		Coin:              h.Coin,
		CoinName:          h.CoinName,
		Logo:              h.Logo,
		CurrentPrice:      h.CurrentPrice.String(),
		TotalHolding:      h.TotalHolding.String(),
		AverageBuyPrice:   h.AverageBuyPrice.String(),
		TotalValue:        h.TotalValue().String(),
		TotalValueDisplay: formatUSD(h.TotalValue()),
		Rate:              formatRate(h.CurrentPrice, h.Coin),
		STCG:              bucketToDTO(h.STCG),
		LTCG:              bucketToDTO(h.LTCG),
	}
}

func bucketToDTO(b entities.GainBucket) GainBucketDTO {
	return GainBucketDTO{
		Balance:     b.Balance.String(),
		Gain:        b.Gain.String(),
		GainDisplay: formatGain(b.Gain),
	}
}
