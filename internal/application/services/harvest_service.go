package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bimakw/tax-harvester/internal/config"
	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/domain/repositories"
	"github.com/bimakw/tax-harvester/internal/infrastructure/metrics"
)

// BaselineFromConfig builds the pre-harvesting position from configuration
func BaselineFromConfig(cfg config.HarvestConfig) entities.CapitalGains {
	return entities.CapitalGains{
		ShortTerm: entities.NewGainSummary(cfg.BaselineSTCGProfits, cfg.BaselineSTCGLosses),
		LongTerm:  entities.NewGainSummary(cfg.BaselineLTCGProfits, cfg.BaselineLTCGLosses),
	}
}

// HarvestService manages harvesting sessions: their selection, grid sort and summaries
type HarvestService struct {
	dataset  *entities.Dataset
	baseline entities.CapitalGains
	sessions repositories.SessionRepository
	metrics  *metrics.HarvestMetrics
	logger   *zap.Logger
	pageSize int
	newID    func() string
	now      func() time.Time
}

// NewHarvestService creates a new harvest service
func NewHarvestService(
	dataset *entities.Dataset,
	baseline entities.CapitalGains,
	sessions repositories.SessionRepository,
	m *metrics.HarvestMetrics,
	logger *zap.Logger,
) *HarvestService {
	return &HarvestService{
		dataset:  dataset,
		baseline: baseline,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
		pageSize: entities.DefaultPageSize,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// WithPageSize sets the grid page size used when a query has no limit
func (s *HarvestService) WithPageSize(n int) *HarvestService {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// GainSummaryDTO is the API representation of one bucket of a summary table
type GainSummaryDTO struct {
	Profits        string `json:"profits"`
	Losses         string `json:"losses"`
	Net            string `json:"net"`
	ProfitsDisplay string `json:"profits_display"`
	LossesDisplay  string `json:"losses_display"`
	NetDisplay     string `json:"net_display"`
}

// CapitalGainsDTO is the API representation of a summary table
type CapitalGainsDTO struct {
	STCG            GainSummaryDTO `json:"stcg"`
	LTCG            GainSummaryDTO `json:"ltcg"`
	Realised        string         `json:"realised"`
	RealisedDisplay string         `json:"realised_display"`
}

// BaselineResponse wraps the pre-harvesting table
type BaselineResponse struct {
	Data CapitalGainsDTO `json:"data"`
}

// SummaryDTO compares the pre- and post-harvesting tables of a session
type SummaryDTO struct {
	SessionID      string          `json:"session_id"`
	PreHarvesting  CapitalGainsDTO `json:"pre_harvesting"`
	PostHarvesting CapitalGainsDTO `json:"post_harvesting"`
	Harvesting     bool            `json:"harvesting"`
	SelectedCount  int             `json:"selected_count"`
	Savings        string          `json:"savings"`
	ShowSavings    bool            `json:"show_savings"`
	SavingsMessage string          `json:"savings_message,omitempty"`
}

// SummaryResponse wraps a session summary
type SummaryResponse struct {
	Data SummaryDTO `json:"data"`
}

// SessionDTO is the API representation of a session
type SessionDTO struct {
	ID             string  `json:"id"`
	SelectedCount  int     `json:"selected_count"`
	Sort           SortDTO `json:"sort"`
	CreatedAt      string  `json:"created_at"`
	LastAccessedAt string  `json:"last_accessed_at"`
}

// SessionResponse wraps a session
type SessionResponse struct {
	Data SessionDTO `json:"data"`
}

// SelectionDTO lists the selected holdings in selection order
type SelectionDTO struct {
	SessionID string       `json:"session_id"`
	IDs       []string     `json:"ids"`
	Holdings  []HoldingDTO `json:"holdings"`
}

// SelectionResponse wraps a selection
type SelectionResponse struct {
	Data SelectionDTO `json:"data"`
}

// SelectionStatusDTO answers a membership test
type SelectionStatusDTO struct {
	SessionID string `json:"session_id"`
	HoldingID string `json:"holding_id"`
	Selected  bool   `json:"selected"`
}

// SelectionStatusResponse wraps a membership test
type SelectionStatusResponse struct {
	Data SelectionStatusDTO `json:"data"`
}

// SortResponse wraps a session grid sort
type SortResponse struct {
	Data SortDTO `json:"data"`
}

// Baseline returns the pre-harvesting position
func (s *HarvestService) Baseline() entities.CapitalGains {
	return s.baseline
}

// GetBaseline returns the pre-harvesting table
func (s *HarvestService) GetBaseline() *BaselineResponse {
	return &BaselineResponse{Data: capitalGainsToDTO(s.baseline)}
}

// TermBaselineResponse wraps one bucket of the pre-harvesting table
type TermBaselineResponse struct {
	Term  string         `json:"term"`
	Label string         `json:"label"`
	Data  GainSummaryDTO `json:"data"`
}

// GetBaselineTerm returns one bucket of the pre-harvesting table
func (s *HarvestService) GetBaselineTerm(term entities.Term) *TermBaselineResponse {
	return &TermBaselineResponse{
		Term:  term.String(),
		Label: term.Label(),
		Data:  gainSummaryToDTO(s.baseline.Term(term)),
	}
}

// StartSession creates a session with an empty selection
func (s *HarvestService) StartSession(ctx context.Context) (*SessionResponse, error) {
	sess := entities.NewSession(s.newID(), s.dataset, s.now())

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.SessionStarted()
	s.logger.Debug("Session started", zap.String("session_id", sess.ID))

	return &SessionResponse{Data: sessionToDTO(sess)}, nil
}

// GetSession returns a session snapshot
func (s *HarvestService) GetSession(ctx context.Context, sessionID string) (*SessionResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &SessionResponse{Data: sessionToDTO(sess)}, nil
}

// EndSession clears the selection and destroys the session
func (s *HarvestService) EndSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	s.metrics.SessionEnded()
	s.logger.Debug("Session ended", zap.String("session_id", sessionID))

	return nil
}

// GetSelection lists the selected holdings
func (s *HarvestService) GetSelection(ctx context.Context, sessionID string) (*SelectionResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return selectionResponse(sess)
}

// ToggleSelection flips membership of one holding; unknown holdings are ignored
func (s *HarvestService) ToggleSelection(ctx context.Context, sessionID, holdingID string) (*SelectionResponse, error) {
	return s.mutateSelection(ctx, sessionID, "toggle", func(sel *entities.Selection) error {
		return sel.Toggle(holdingID)
	})
}

// ReplaceSelection sets the selection to exactly the given holdings
func (s *HarvestService) ReplaceSelection(ctx context.Context, sessionID string, holdingIDs []string) (*SelectionResponse, error) {
	return s.mutateSelection(ctx, sessionID, "replace", func(sel *entities.Selection) error {
		return sel.ReplaceIDs(holdingIDs)
	})
}

// ClearSelection empties the selection
func (s *HarvestService) ClearSelection(ctx context.Context, sessionID string) (*SelectionResponse, error) {
	return s.mutateSelection(ctx, sessionID, "clear", func(sel *entities.Selection) error {
		return sel.Clear()
	})
}

// IsSelected reports whether a holding is selected
func (s *HarvestService) IsSelected(ctx context.Context, sessionID, holdingID string) (*SelectionStatusResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	selected, err := sess.Selection.IsSelected(holdingID)
	if err != nil {
		return nil, err
	}

	return &SelectionStatusResponse{
		Data: SelectionStatusDTO{
			SessionID: sessionID,
			HoldingID: holdingID,
			Selected:  selected,
		},
	}, nil
}

// SelectPage selects or deselects every row of one grid page, sorted the way
// the session grid currently is, and reports the result as a replace.
func (s *HarvestService) SelectPage(ctx context.Context, sessionID string, q entities.GridQuery, selected bool) (*SelectionResponse, error) {
	if q.Limit <= 0 {
		q.Limit = s.pageSize
	}

	return s.mutateSessionSelection(ctx, sessionID, "page", func(sess *entities.Session) error {
		q.Sort = sess.Sort
		page := entities.QueryGrid(s.dataset.All(), q)

		current, err := sess.Selection.IDs()
		if err != nil {
			return err
		}

		onPage := make(map[string]bool, len(page.Rows))
		for _, r := range page.Rows {
			onPage[r.ID] = true
		}

		next := make([]string, 0, len(current)+len(page.Rows))
		for _, id := range current {
			if selected || !onPage[id] {
				next = append(next, id)
			}
		}
		if selected {
			for _, r := range page.Rows {
				next = append(next, r.ID)
			}
		}

		return sess.Selection.ReplaceIDs(next)
	})
}

// GetSummary computes the pre- and post-harvesting tables for a session
func (s *HarvestService) GetSummary(ctx context.Context, sessionID string) (*SummaryResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	records, err := sess.Selection.Records()
	if err != nil {
		return nil, err
	}

	outcome := entities.ComputeHarvest(s.baseline, records)
	s.metrics.SummaryComputed(outcome.Savings.InexactFloat64(), outcome.ShowSavings)

	summary := SummaryDTO{
		SessionID:      sessionID,
		PreHarvesting:  capitalGainsToDTO(outcome.Pre),
		PostHarvesting: capitalGainsToDTO(outcome.Post),
		Harvesting:     outcome.Harvesting,
		SelectedCount:  len(records),
		Savings:        outcome.Savings.String(),
		ShowSavings:    outcome.ShowSavings,
	}
	if outcome.ShowSavings {
		summary.SavingsMessage = "You are going to save up to " + formatUSD(outcome.Savings)
	}

	return &SummaryResponse{Data: summary}, nil
}

// GetSessionHoldings returns a grid page with the session's selection and sort.
// A non-zero q.Sort overrides the session sort for this page only.
func (s *HarvestService) GetSessionHoldings(ctx context.Context, sessionID string, q entities.GridQuery) (*HoldingsPageResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	ids, err := sess.Selection.IDs()
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	if q.Sort.IsZero() {
		q.Sort = sess.Sort
	}
	if q.Limit <= 0 {
		q.Limit = s.pageSize
	}

	return buildPage(s.dataset.All(), q, selected), nil
}

// ToggleSort activates a grid column for the session: ascending first, then
// flipping on every repeated activation.
func (s *HarvestService) ToggleSort(ctx context.Context, sessionID string, column entities.SortColumn) (*SortResponse, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *entities.Session) error {
		sess.Sort = sess.Sort.Toggle(column)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle sort: %w", err)
	}

	return &SortResponse{Data: SortDTO{Column: string(sess.Sort.Column), Order: sess.Sort.Order()}}, nil
}

// ExpireIdle ends sessions not accessed within idle
func (s *HarvestService) ExpireIdle(ctx context.Context, idle time.Duration) (int, error) {
	removed, err := s.sessions.DeleteIdle(ctx, s.now().Add(-idle))
	if err != nil {
		return 0, fmt.Errorf("failed to expire sessions: %w", err)
	}

	s.metrics.SessionsEvicted(removed)
	if removed > 0 {
		s.logger.Info("Expired idle sessions", zap.Int("count", removed))
	}

	return removed, nil
}

// RunJanitor expires idle sessions every interval until ctx is cancelled
func (s *HarvestService) RunJanitor(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.ExpireIdle(ctx, idle); err != nil {
				s.logger.Error("Session sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *HarvestService) mutateSelection(ctx context.Context, sessionID, operation string, fn func(*entities.Selection) error) (*SelectionResponse, error) {
	return s.mutateSessionSelection(ctx, sessionID, operation, func(sess *entities.Session) error {
		return fn(sess.Selection)
	})
}

func (s *HarvestService) mutateSessionSelection(ctx context.Context, sessionID, operation string, fn func(*entities.Session) error) (*SelectionResponse, error) {
	sess, err := s.sessions.Update(ctx, sessionID, fn)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotInitialized) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to %s selection: %w", operation, err)
	}

	s.metrics.SelectionChanged(operation)
	return selectionResponse(sess)
}

func selectionResponse(sess *entities.Session) (*SelectionResponse, error) {
	records, err := sess.Selection.Records()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	holdings := make([]HoldingDTO, len(records))
	for i, r := range records {
		ids[i] = r.ID
		holdings[i] = holdingToDTO(r)
	}

	return &SelectionResponse{
		Data: SelectionDTO{
			SessionID: sess.ID,
			IDs:       ids,
			Holdings:  holdings,
		},
	}, nil
}

func sessionToDTO(sess *entities.Session) SessionDTO {
	dto := SessionDTO{
		ID:             sess.ID,
		SelectedCount:  sess.Selection.Len(),
		CreatedAt:      sess.CreatedAt.UTC().Format(time.RFC3339),
		LastAccessedAt: sess.LastAccessedAt.UTC().Format(time.RFC3339),
	}
	if !sess.Sort.IsZero() {
		dto.Sort = SortDTO{Column: string(sess.Sort.Column), Order: sess.Sort.Order()}
	}
	return dto
}

func capitalGainsToDTO(c entities.CapitalGains) CapitalGainsDTO {
	return CapitalGainsDTO{
		STCG:            gainSummaryToDTO(c.ShortTerm),
		LTCG:            gainSummaryToDTO(c.LongTerm),
		Realised:        c.Realised().String(),
		RealisedDisplay: formatUSD(c.Realised()),
	}
}

func gainSummaryToDTO(g entities.GainSummary) GainSummaryDTO {
	return GainSummaryDTO{
		Profits:        g.Profits.String(),
		Losses:         g.Losses.String(),
		Net:            g.Net.String(),
		ProfitsDisplay: formatUSD(g.Profits),
		LossesDisplay:  formatLoss(g.Losses),
		NetDisplay:     formatUSD(g.Net),
	}
}
