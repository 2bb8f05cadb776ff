package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
)

const (
	deskVenueName   = "desk"
	binaryVenueName = "binary"
)

// ForexExecutor submits desk orders: resolve the instrument, size the trade,
// send the market order, and hand the resulting ticket to the tracker.
type ForexExecutor struct {
	desk     domain.Desk
	resolver *SymbolResolver
	sizer    *RiskSizer
	tracker  *PositionTracker
	tradeLog domain.TradeLogRepository
	logger   *zap.Logger
}

func NewForexExecutor(
	desk domain.Desk,
	resolver *SymbolResolver,
	sizer *RiskSizer,
	tracker *PositionTracker,
	tradeLog domain.TradeLogRepository,
	logger *zap.Logger,
) *ForexExecutor {
	return &ForexExecutor{
		desk:     desk,
		resolver: resolver,
		sizer:    sizer,
		tracker:  tracker,
		tradeLog: tradeLog,
		logger:   logger,
	}
}

// Execute runs the full desk path for a validated FOREX signal. A venue
// rejection comes back as ErrRejected wrapping the venue's reason verbatim.
func (e *ForexExecutor) Execute(ctx context.Context, sig *domain.TradeSignal) (*domain.OrderResult, error) {
	symbol, err := e.resolver.Resolve(ctx, sig.Symbol)
	if err != nil {
		return nil, err
	}

	inst, err := e.resolver.Info(ctx, symbol)
	if err != nil {
		return nil, err
	}

	balance, err := e.desk.AccountBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("account balance: %w", err)
	}

	lot, adjustedStop := e.sizer.SizeTrade(inst, sig.Entry, sig.StopLoss, sig.Action, balance)

	e.logger.Info("submitting desk order",
		zap.String("signal", sig.ID),
		zap.String("symbol", symbol),
		zap.String("action", string(sig.Action)),
		zap.Float64("lot", lot),
		zap.Float64("stop", adjustedStop),
		zap.Float64("tp", sig.FirstTakeProfit()))

	result, err := e.desk.MarketOrder(ctx, symbol, sig.Action, lot, sig.FirstTakeProfit(), adjustedStop)
	if err != nil {
		return nil, fmt.Errorf("market order: %w", err)
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s", domain.ErrRejected, result.Reason)
	}

	e.tracker.Track(domain.TrackedPosition{
		Ticket:    result.Ticket,
		Symbol:    symbol,
		Direction: sig.Action,
		Entry:     sig.Entry,
		FirstTP:   sig.FirstTakeProfit(),
	})

	if err := e.tradeLog.SaveExecution(ctx, &domain.Execution{
		SignalID:   sig.ID,
		Venue:      deskVenueName,
		Symbol:     symbol,
		Action:     sig.Action,
		Lot:        lot,
		Entry:      sig.Entry,
		StopLoss:   adjustedStop,
		TakeProfit: sig.FirstTakeProfit(),
		Ticket:     result.Ticket,
		CreatedAt:  time.Now(),
	}); err != nil {
		e.logger.Error("failed to save execution", zap.Error(err))
	}

	return result, nil
}
