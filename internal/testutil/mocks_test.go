package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

func TestMockHoldingRepository_GetAll(t *testing.T) {
	repo := NewMockHoldingRepository()
	repo.AddHoldings(TestHoldings()...)

	ctx := context.Background()

	holdings, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(holdings) != 4 {
		t.Errorf("expected 4 holdings, got %d", len(holdings))
	}
	if holdings[0].ID != BitcoinID {
		t.Errorf("expected first holding %s, got %s", BitcoinID, holdings[0].ID)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Errorf("expected count 4, got %d", count)
	}

	// Test call tracking
	if len(repo.Calls) != 2 {
		t.Errorf("expected 2 calls, got %d", len(repo.Calls))
	}
}

func TestMockHoldingRepository_CustomFunc(t *testing.T) {
	repo := NewMockHoldingRepository()
	expectedErr := errors.New("source unavailable")
	repo.GetAllFunc = func(ctx context.Context) ([]entities.HoldingRecord, error) {
		return nil, expectedErr
	}

	_, err := repo.GetAll(context.Background())
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
}

func TestMockSessionRepository_Lifecycle(t *testing.T) {
	repo := NewMockSessionRepository()
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	if err := repo.Create(ctx, entities.NewSession("s1", NewTestDataset(), now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, err := repo.Update(ctx, "s1", func(s *entities.Session) error {
		return s.Selection.Toggle(EthereumID)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Selection.Len() != 1 {
		t.Errorf("expected 1 selected, got %d", sess.Selection.Len())
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, entities.ErrSessionNotInitialized) {
		t.Errorf("expected ErrSessionNotInitialized, got %v", err)
	}

	if repo.CallCount("Get") != 1 {
		t.Errorf("expected 1 Get call, got %d", repo.CallCount("Get"))
	}
}

func TestMockHealthChecker(t *testing.T) {
	checker := NewMockHealthChecker(true)
	ctx := context.Background()

	if err := checker.HealthCheck(ctx); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}

	checker.SetHealthy(false)
	if err := checker.HealthCheck(ctx); err == nil {
		t.Error("expected error when unhealthy")
	}

	if len(checker.Calls) != 2 {
		t.Errorf("expected 2 calls, got %d", len(checker.Calls))
	}
}

func TestCreateTestHolding(t *testing.T) {
	h := CreateTestHolding()
	if h.ID != BitcoinID {
		t.Errorf("expected default id %s, got %s", BitcoinID, h.ID)
	}

	custom := CreateTestHolding(
		WithID("doge"),
		WithCoin("DOGE", "Dogecoin"),
		WithSTCG("100", "-12.5"),
	)
	if custom.ID != "doge" || custom.Coin != "DOGE" {
		t.Errorf("options not applied: %+v", custom)
	}
	if !custom.STCG.Gain.Equal(D("-12.5")) {
		t.Errorf("expected stcg gain -12.5, got %s", custom.STCG.Gain)
	}
}
