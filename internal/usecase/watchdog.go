package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
)

// Watchdog wakes on a fixed interval and drives the position lifecycle:
// OPEN(armed=false) -> OPEN(armed=true) when price crosses the first target,
// -> removed when the ticket leaves the desk's open-position set. It also
// runs the closed-trade reporter on the same cadence.
type Watchdog struct {
	desk     domain.Desk
	tracker  *PositionTracker
	reporter *ReportService
	notifier domain.Notifier
	interval time.Duration
	logger   *zap.Logger
}

func NewWatchdog(
	desk domain.Desk,
	tracker *PositionTracker,
	reporter *ReportService,
	notifier domain.Notifier,
	interval time.Duration,
	logger *zap.Logger,
) *Watchdog {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Watchdog{
		desk:     desk,
		tracker:  tracker,
		reporter: reporter,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the loop until ctx is cancelled. Errors inside one cycle are
// logged and absorbed; the next tick retries implicitly.
func (w *Watchdog) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("watchdog started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ticker.C:
			w.RunCycle(ctx)
		case <-ctx.Done():
			w.logger.Info("watchdog stopped")
			return
		}
	}
}

// RunCycle performs one poll: break-even sweep, then closed-trade report.
func (w *Watchdog) RunCycle(ctx context.Context) {
	if err := w.sweep(ctx); err != nil {
		w.logger.Error("break-even sweep failed", zap.Error(err))
	}

	report, err := w.reporter.Poll(ctx)
	if err != nil {
		w.logger.Error("closed-trade poll failed", zap.Error(err))
		return
	}
	if report == nil {
		return
	}

	w.logger.Info("closed trade detected",
		zap.String("symbol", report.Symbol),
		zap.String("outcome", string(report.Outcome)),
		zap.Float64("profit", report.Profit))

	if err := w.notifier.Notify(ctx, FormatReport(report)); err != nil {
		w.logger.Error("failed to send report", zap.Error(err))
	}
}

func (w *Watchdog) sweep(ctx context.Context) error {
	tracked := w.tracker.Snapshot()
	if len(tracked) == 0 {
		return nil
	}

	open, err := w.desk.OpenTickets(ctx)
	if err != nil {
		return fmt.Errorf("open positions query: %w", err)
	}

	for _, pos := range tracked {
		if !open[pos.Ticket] {
			// Closed on the venue side; drop and never touch again.
			w.tracker.Remove(pos.Ticket)
			w.logger.Info("position closed, untracked",
				zap.Int64("ticket", pos.Ticket),
				zap.String("symbol", pos.Symbol))
			continue
		}

		if pos.BreakEvenMoved {
			continue
		}

		tick, err := w.desk.CurrentTick(ctx, pos.Symbol)
		if err != nil {
			w.logger.Warn("tick unavailable",
				zap.String("symbol", pos.Symbol), zap.Error(err))
			continue
		}

		if !crossedTarget(pos, tick) {
			continue
		}

		// Move the stop to entry. The armed flag flips only after the desk
		// confirms, so a failed modification retries next poll.
		if err := w.desk.ModifyStop(ctx, pos.Ticket, pos.Entry); err != nil {
			w.logger.Error("break-even move failed",
				zap.Int64("ticket", pos.Ticket), zap.Error(err))
			continue
		}

		w.tracker.MarkArmed(pos.Ticket)
		w.logger.Info("stop moved to break-even",
			zap.Int64("ticket", pos.Ticket),
			zap.String("symbol", pos.Symbol),
			zap.Float64("entry", pos.Entry))

		msg := fmt.Sprintf("Break-even set on %s (ticket %d): SL moved to %.5f",
			pos.Symbol, pos.Ticket, pos.Entry)
		if err := w.notifier.Notify(ctx, msg); err != nil {
			w.logger.Warn("break-even notice failed", zap.Error(err))
		}
	}

	return nil
}

// crossedTarget reports whether the exit-side price reached the first target
// strictly in the favorable direction. Buys exit at bid, sells at ask.
func crossedTarget(pos domain.TrackedPosition, tick *domain.Tick) bool {
	if pos.Direction == domain.ActionBuy {
		return tick.Bid >= pos.FirstTP
	}
	return tick.Ask <= pos.FirstTP
}
