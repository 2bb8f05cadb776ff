package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
)

// ReportService polls the desk's closed-deal history and produces at most one
// ClosedTradeReport per newly closed deal. The last reported deal is persisted
// so a wide polling window never re-reports across cycles or restarts.
type ReportService struct {
	desk   domain.Desk
	cursor domain.ReportCursorRepository
	window time.Duration
	logger *zap.Logger
}

func NewReportService(desk domain.Desk, cursor domain.ReportCursorRepository, window time.Duration, logger *zap.Logger) *ReportService {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &ReportService{
		desk:   desk,
		cursor: cursor,
		window: window,
		logger: logger,
	}
}

// Poll returns the report for the most recently closed deal in the trailing
// window, or nil when there is nothing new. An empty history is not an error.
func (s *ReportService) Poll(ctx context.Context) (*domain.ClosedTradeReport, error) {
	since := time.Now().Add(-s.window)
	deals, err := s.desk.ClosedDealsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("closed deals query: %w", err)
	}
	if len(deals) == 0 {
		return nil, nil
	}

	latest := deals[0]
	for _, d := range deals[1:] {
		if d.ClosedAt.After(latest.ClosedAt) {
			latest = d
		}
	}

	lastID, lastAt, err := s.cursor.LastReported(ctx)
	if err != nil {
		s.logger.Warn("report cursor unavailable, deal may repeat", zap.Error(err))
	} else if latest.ID == lastID || !latest.ClosedAt.After(lastAt) {
		return nil, nil
	}

	balance, err := s.desk.AccountBalance(ctx)
	if err != nil {
		s.logger.Warn("balance unavailable for report", zap.Error(err))
		balance = 0
	}

	report := &domain.ClosedTradeReport{
		Symbol:  latest.Symbol,
		Outcome: domain.ClassifyProfit(latest.Profit),
		Profit:  latest.Profit,
		Balance: balance,
	}

	if err := s.cursor.SetLastReported(ctx, latest.ID, latest.ClosedAt); err != nil {
		s.logger.Error("failed to persist report cursor", zap.Error(err), zap.Int64("deal", latest.ID))
	}

	return report, nil
}

// FormatReport renders a report as the operator DM text.
func FormatReport(r *domain.ClosedTradeReport) string {
	return fmt.Sprintf("Closed trade on %s: %s %.2f. Balance: %.2f",
		r.Symbol, r.Outcome, r.Profit, r.Balance)
}
