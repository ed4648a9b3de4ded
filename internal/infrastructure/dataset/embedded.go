package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/domain/repositories"
)

//go:embed holdings.json
var embeddedHoldings []byte

// Ensure EmbeddedRepo implements HoldingRepository
var _ repositories.HoldingRepository = (*EmbeddedRepo)(nil)

// EmbeddedRepo serves the holdings dataset compiled into the binary
type EmbeddedRepo struct {
	data []byte
}

// NewEmbeddedRepo creates a repository over the bundled holdings.json
func NewEmbeddedRepo() *EmbeddedRepo {
	return &EmbeddedRepo{data: embeddedHoldings}
}

// NewJSONRepo creates a repository over an arbitrary JSON array of holdings
func NewJSONRepo(data []byte) *EmbeddedRepo {
	return &EmbeddedRepo{data: data}
}

// GetAll decodes every holding in file order
func (r *EmbeddedRepo) GetAll(ctx context.Context) ([]entities.HoldingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(r.data))
	dec.DisallowUnknownFields()

	var records []entities.HoldingRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode holdings: %w", err)
	}

	return records, nil
}

// Count returns the number of holdings in the dataset
func (r *EmbeddedRepo) Count(ctx context.Context) (int64, error) {
	records, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}
