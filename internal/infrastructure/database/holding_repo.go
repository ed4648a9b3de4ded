package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/domain/repositories"
)

// Ensure HoldingRepo implements HoldingRepository
var _ repositories.HoldingRepository = (*HoldingRepo)(nil)

// HoldingsSchema creates the holdings reference table
const HoldingsSchema = `
CREATE TABLE IF NOT EXISTS holdings (
	id                TEXT PRIMARY KEY,
	position          INTEGER NOT NULL,
	coin              TEXT NOT NULL,
	coin_name         TEXT NOT NULL,
	logo              TEXT NOT NULL DEFAULT '',
	current_price     NUMERIC NOT NULL,
	total_holding     NUMERIC NOT NULL,
	average_buy_price NUMERIC NOT NULL,
	stcg_balance      NUMERIC NOT NULL DEFAULT 0,
	stcg_gain         NUMERIC NOT NULL DEFAULT 0,
	ltcg_balance      NUMERIC NOT NULL DEFAULT 0,
	ltcg_gain         NUMERIC NOT NULL DEFAULT 0
)`

// HoldingRepo implements HoldingRepository using PostgreSQL
type HoldingRepo struct {
	db *sqlx.DB
}

// NewHoldingRepo creates a new holding repository
func NewHoldingRepo(db *sqlx.DB) *HoldingRepo {
	return &HoldingRepo{db: db}
}

// holdingRow is the flat table shape of a holding
type holdingRow struct {
	ID              string          `db:"id"`
	Position        int             `db:"position"`
	Coin            string          `db:"coin"`
	CoinName        string          `db:"coin_name"`
	Logo            string          `db:"logo"`
	CurrentPrice    decimal.Decimal `db:"current_price"`
	TotalHolding    decimal.Decimal `db:"total_holding"`
	AverageBuyPrice decimal.Decimal `db:"average_buy_price"`
	STCGBalance     decimal.Decimal `db:"stcg_balance"`
	STCGGain        decimal.Decimal `db:"stcg_gain"`
	LTCGBalance     decimal.Decimal `db:"ltcg_balance"`
	LTCGGain        decimal.Decimal `db:"ltcg_gain"`
}

func (row holdingRow) toEntity() entities.HoldingRecord {
	return entities.HoldingRecord{
		ID:              row.ID,
		Coin:            row.Coin,
		CoinName:        row.CoinName,
		Logo:            row.Logo,
		CurrentPrice:    row.CurrentPrice,
		TotalHolding:    row.TotalHolding,
		AverageBuyPrice: row.AverageBuyPrice,
		STCG:            entities.GainBucket{Balance: row.STCGBalance, Gain: row.STCGGain},
		LTCG:            entities.GainBucket{Balance: row.LTCGBalance, Gain: row.LTCGGain},
	}
}

// Migrate creates the holdings table if needed
func (r *HoldingRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, HoldingsSchema); err != nil {
		return fmt.Errorf("failed to create holdings table: %w", err)
	}
	return nil
}

// GetAll retrieves every holding ordered by its load position
func (r *HoldingRepo) GetAll(ctx context.Context) ([]entities.HoldingRecord, error) {
	query := `
		SELECT id, position, coin, coin_name, logo,
			current_price, total_holding, average_buy_price,
			stcg_balance, stcg_gain, ltcg_balance, ltcg_gain
		FROM holdings
		ORDER BY position, id
	`

	var rows []holdingRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}

	holdings := make([]entities.HoldingRecord, len(rows))
	for i, row := range rows {
		holdings[i] = row.toEntity()
	}

	return holdings, nil
}

// Count returns the number of holdings
func (r *HoldingRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM holdings`); err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return count, nil
}

// Seed upserts records keeping their slice order as position
func (r *HoldingRepo) Seed(ctx context.Context, records []entities.HoldingRecord) error {
	query := `
		INSERT INTO holdings (
			id, position, coin, coin_name, logo,
			current_price, total_holding, average_buy_price,
			stcg_balance, stcg_gain, ltcg_balance, ltcg_gain
		) VALUES (
			:id, :position, :coin, :coin_name, :logo,
			:current_price, :total_holding, :average_buy_price,
			:stcg_balance, :stcg_gain, :ltcg_balance, :ltcg_gain
		)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			coin = EXCLUDED.coin,
			coin_name = EXCLUDED.coin_name,
			logo = EXCLUDED.logo,
			current_price = EXCLUDED.current_price,
			total_holding = EXCLUDED.total_holding,
			average_buy_price = EXCLUDED.average_buy_price,
			stcg_balance = EXCLUDED.stcg_balance,
			stcg_gain = EXCLUDED.stcg_gain,
			ltcg_balance = EXCLUDED.ltcg_balance,
			ltcg_gain = EXCLUDED.ltcg_gain
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, rec := range records {
		row := holdingRow{
			ID:              rec.ID,
			Position:        i,
			Coin:            rec.Coin,
			CoinName:        rec.CoinName,
			Logo:            rec.Logo,
			CurrentPrice:    rec.CurrentPrice,
			TotalHolding:    rec.TotalHolding,
			AverageBuyPrice: rec.AverageBuyPrice,
			STCGBalance:     rec.STCG.Balance,
			STCGGain:        rec.STCG.Gain,
			LTCGBalance:     rec.LTCG.Balance,
			LTCGGain:        rec.LTCG.Gain,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to seed holding %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit holdings: %w", err)
	}

	return nil
}
