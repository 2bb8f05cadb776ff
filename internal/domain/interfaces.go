package domain

import (
	"context"
	"time"
)

// Desk is the position-trading venue (an MT5-style terminal behind a local
// gateway). Implementations re-establish the session at the start of any call;
// the reconnect path must be a no-op when the session is already live.
type Desk interface {
	Login(ctx context.Context) error
	Instruments(ctx context.Context) ([]string, error)
	SymbolInfo(ctx context.Context, symbol string) (*Instrument, error)
	AccountBalance(ctx context.Context) (float64, error)
	CurrentTick(ctx context.Context, symbol string) (*Tick, error)
	MarketOrder(ctx context.Context, symbol string, action Action, lot, takeProfit, stopLoss float64) (*OrderResult, error)
	ModifyStop(ctx context.Context, ticket int64, newStop float64) error
	OpenTickets(ctx context.Context) (map[int64]bool, error)
	ClosedDealsSince(ctx context.Context, since time.Time) ([]Deal, error)
	Candles(ctx context.Context, symbol string, limit int) ([]Candle, error)
}

// BinaryVenue is the websocket binary-options venue.
type BinaryVenue interface {
	Connect(ctx context.Context) error
	PlaceOrder(ctx context.Context, asset string, amount float64, action Action, durationSec int) error
}

// SignalParser turns raw channel text into a TradeSignal. It is an untrusted
// oracle: callers validate everything it returns. ErrNoSignal means the text
// carried no usable trade.
type SignalParser interface {
	Parse(ctx context.Context, raw string) (*TradeSignal, error)
}

// Notifier delivers a free-text message to the operator's own account.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ReportCursorRepository persists the last reported closed deal so the same
// deal is never reported twice, including across restarts.
type ReportCursorRepository interface {
	LastReported(ctx context.Context) (dealID int64, closedAt time.Time, err error)
	SetLastReported(ctx context.Context, dealID int64, closedAt time.Time) error
}

// TradeLogRepository records every submitted trade.
type TradeLogRepository interface {
	SaveExecution(ctx context.Context, e *Execution) error
	ListExecutions(ctx context.Context, limit int) ([]*Execution, error)
}
