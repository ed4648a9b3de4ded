package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/tax-harvester/internal/application/services"
	"github.com/bimakw/tax-harvester/internal/config"
	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/infrastructure/database"
	"github.com/bimakw/tax-harvester/internal/infrastructure/dataset"
	"github.com/bimakw/tax-harvester/internal/infrastructure/session"
)

// env is what every command needs: the dataset and the services over it
type env struct {
	harvest *services.HarvestService
	close   func()
}

// loadEnv reads configuration and the holdings source the same way the API does
func loadEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := zap.NewNop()
	closeFn := func() {}

	var ds *entities.Dataset
	switch cfg.Harvest.Source {
	case config.SourcePostgres:
		db, err := database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		closeFn = func() { _ = db.Close() }

		ds, err = services.LoadDataset(ctx, database.NewHoldingRepo(db.DB()))
		if err != nil {
			closeFn()
			return nil, err
		}
	default:
		ds, err = services.LoadDataset(ctx, dataset.NewEmbeddedRepo())
		if err != nil {
			return nil, err
		}
	}

	return &env{
		harvest: services.NewHarvestService(
			ds,
			services.BaselineFromConfig(cfg.Harvest),
			session.NewMemoryStore(),
			nil,
			logger,
		).WithPageSize(entities.MaxPageSize),
		close: closeFn,
	}, nil
}

// withSelection starts a throwaway session holding ids
func (e *env) withSelection(ctx context.Context, ids []string) (string, error) {
	started, err := e.harvest.StartSession(ctx)
	if err != nil {
		return "", err
	}
	id := started.Data.ID

	if _, err := e.harvest.ReplaceSelection(ctx, id, ids); err != nil {
		return "", err
	}
	return id, nil
}

// splitIDs parses a comma separated id list, skipping blanks
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
