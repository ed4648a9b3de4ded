package repositories

import (
	"context"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

// HoldingRepository defines the data source of the holdings dataset
type HoldingRepository interface {
	// GetAll returns every holding in load order
	GetAll(ctx context.Context) ([]entities.HoldingRecord, error)

	// Count returns the number of holdings available
	Count(ctx context.Context) (int64, error)
}
