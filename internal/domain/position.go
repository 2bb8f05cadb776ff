package domain

import "time"

// TrackedPosition is one open desk position under watchdog supervision.
// The ticket is assigned by the venue and only referenced here.
type TrackedPosition struct {
	Ticket    int64
	Symbol    string
	Direction Action
	Entry     float64
	FirstTP   float64

	// BreakEvenMoved flips false -> true exactly once, after a confirmed
	// stop modification. It never reverts.
	BreakEvenMoved bool
}

// Tick is a live quote. Bid is the exit side for buys, ask the exit side
// for sells.
type Tick struct {
	Bid float64
	Ask float64
}

// OrderResult is the venue's answer to a market order submission.
type OrderResult struct {
	Success bool
	Ticket  int64
	Reason  string
}

// Deal is one closed trade from the venue's history query.
type Deal struct {
	ID       int64
	Symbol   string
	Profit   float64
	ClosedAt time.Time
}

// Execution is the bridge's own record of a submitted trade, persisted for
// the operator's audit trail.
type Execution struct {
	ID         int64
	SignalID   string
	Venue      string // "desk" or "binary"
	Symbol     string
	Action     Action
	Lot        float64
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Ticket     int64
	CreatedAt  time.Time
}
