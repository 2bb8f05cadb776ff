package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
)

// Extraction calls get a hard deadline; a hung model call must degrade to
// "skip, notify", never block the listener.
const parseTimeout = 45 * time.Second

// Messages must contain at least one of these before a model call is spent.
var signalKeywords = []string{
	"SIGNAL", "BUY", "SELL", "CALL", "PUT", "TP", "SL",
	"EXPIRATION", "GALE", "OTC",
}

// SignalRouter drives one inbound message end to end: prefilter, parse,
// validate, confirm, dispatch to the right venue, notify. Any failure past
// the parse stage is reported to the operator; nothing here ever panics the
// process over a single bad signal.
type SignalRouter struct {
	parser      domain.SignalParser
	executor    *ForexExecutor
	binary      domain.BinaryVenue
	notifier    domain.Notifier
	confirm     ConfirmPolicy
	gate        *TechnicalGate // nil disables the advisory analysis
	tradeLog    domain.TradeLogRepository
	binaryStake float64
	logger      *zap.Logger
}

func NewSignalRouter(
	parser domain.SignalParser,
	executor *ForexExecutor,
	binary domain.BinaryVenue,
	notifier domain.Notifier,
	confirm ConfirmPolicy,
	gate *TechnicalGate,
	tradeLog domain.TradeLogRepository,
	binaryStake float64,
	logger *zap.Logger,
) *SignalRouter {
	if confirm == nil {
		confirm = AutoConfirm{}
	}
	return &SignalRouter{
		parser:      parser,
		executor:    executor,
		binary:      binary,
		notifier:    notifier,
		confirm:     confirm,
		gate:        gate,
		tradeLog:    tradeLog,
		binaryStake: binaryStake,
		logger:      logger,
	}
}

// HandleMessage processes one raw channel message. It never returns an error:
// every failure mode ends in a log line and, for actionable failures, an
// operator notice.
func (r *SignalRouter) HandleMessage(ctx context.Context, msg domain.ChannelMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("signal handler panic", zap.Any("panic", rec))
			r.notifyf(ctx, "Bridge error processing signal: %v", rec)
		}
	}()

	if !looksLikeSignal(msg.Text) {
		return
	}

	signalID := uuid.NewString()
	r.logger.Info("signal candidate detected",
		zap.String("signal", signalID),
		zap.Int64("chat", msg.ChatID))

	parseCtx, cancel := context.WithTimeout(ctx, parseTimeout)
	sig, err := r.parser.Parse(parseCtx, msg.Text)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNoSignal) {
			r.logger.Debug("no trade in message", zap.String("signal", signalID))
			return
		}
		r.logger.Error("extraction failed", zap.String("signal", signalID), zap.Error(err))
		r.notifyf(ctx, "Bridge error: signal extraction failed: %v", err)
		return
	}
	sig.ID = signalID

	if err := sig.Validate(); err != nil {
		r.logger.Warn("signal rejected by validation",
			zap.String("signal", signalID), zap.Error(err))
		r.notifyf(ctx, "Skipped signal %s: %v", sig.Symbol, err)
		return
	}

	analysis := r.analyze(ctx, sig)

	ok, err := r.confirm.Confirm(sig, analysis)
	if err != nil {
		r.logger.Error("confirmation failed", zap.String("signal", signalID), zap.Error(err))
		return
	}
	if !ok {
		r.logger.Info("trade declined by operator", zap.String("signal", signalID))
		r.notifyf(ctx, "Trade declined: %s %s", sig.Action, sig.Symbol)
		return
	}

	switch sig.Class {
	case domain.ClassForex:
		r.executeForex(ctx, sig, analysis)
	case domain.ClassBinary:
		r.executeBinary(ctx, sig)
	}
}

func (r *SignalRouter) executeForex(ctx context.Context, sig *domain.TradeSignal, analysis string) {
	result, err := r.executor.Execute(ctx, sig)
	switch {
	case err == nil:
		text := fmt.Sprintf("Executed %s %s, ticket %d", sig.Action, sig.Symbol, result.Ticket)
		if analysis != "" {
			text += "\n" + analysis
		}
		r.notifyf(ctx, "%s", text)
	case errors.Is(err, domain.ErrSymbolNotFound):
		r.logger.Warn("symbol unresolvable", zap.String("signal", sig.ID), zap.Error(err))
		r.notifyf(ctx, "Skipped %s: instrument not available on desk", sig.Symbol)
	case errors.Is(err, domain.ErrRejected):
		reason := ""
		if result != nil {
			reason = result.Reason
		}
		r.logger.Warn("order rejected",
			zap.String("signal", sig.ID), zap.String("reason", reason))
		r.notifyf(ctx, "Order rejected for %s: %s", sig.Symbol, reason)
	default:
		r.logger.Error("desk execution failed", zap.String("signal", sig.ID), zap.Error(err))
		r.notifyf(ctx, "Bridge error executing %s: %v", sig.Symbol, err)
	}
}

func (r *SignalRouter) executeBinary(ctx context.Context, sig *domain.TradeSignal) {
	expiry := sig.ExpiryMinutes
	if expiry <= 0 {
		expiry = 5
	}

	if err := r.binary.Connect(ctx); err != nil {
		r.logger.Error("binary venue unreachable", zap.String("signal", sig.ID), zap.Error(err))
		r.notifyf(ctx, "Binary venue unreachable for %s: %v", sig.Symbol, err)
		return
	}

	if err := r.binary.PlaceOrder(ctx, sig.Symbol, r.binaryStake, sig.Action, expiry*60); err != nil {
		r.logger.Error("binary order failed", zap.String("signal", sig.ID), zap.Error(err))
		r.notifyf(ctx, "Binary order failed for %s: %v", sig.Symbol, err)
		return
	}

	if err := r.tradeLog.SaveExecution(ctx, &domain.Execution{
		SignalID:  sig.ID,
		Venue:     binaryVenueName,
		Symbol:    sig.Symbol,
		Action:    sig.Action,
		Lot:       r.binaryStake,
		CreatedAt: time.Now(),
	}); err != nil {
		r.logger.Error("failed to save execution", zap.Error(err))
	}

	r.notifyf(ctx, "Binary order placed: %s %s, %d min expiry, stake %.2f",
		sig.Action, sig.Symbol, expiry, r.binaryStake)
}

// analyze runs the advisory indicator read for forex signals. Failures only
// cost the annotation.
func (r *SignalRouter) analyze(ctx context.Context, sig *domain.TradeSignal) string {
	if r.gate == nil || sig.Class != domain.ClassForex {
		return ""
	}
	analysis, err := r.gate.Analyze(ctx, CleanSymbol(sig.Symbol))
	if err != nil {
		r.logger.Warn("technical analysis unavailable", zap.Error(err))
		return ""
	}
	return analysis
}

func (r *SignalRouter) notifyf(ctx context.Context, format string, args ...any) {
	if err := r.notifier.Notify(ctx, fmt.Sprintf(format, args...)); err != nil {
		r.logger.Error("operator notification failed", zap.Error(err))
	}
}

func looksLikeSignal(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range signalKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
