package usecase

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/mvoss/signalbridge/internal/domain"
)

// RiskSizer turns a signal into a bounded position size. The risk fraction
// and minimum lot are fixed at construction; everything else comes from the
// instrument metadata so contract value is never hard-coded per call site.
type RiskSizer struct {
	riskFraction float64
	minLot       float64
}

func NewRiskSizer(riskFraction, minLot float64) *RiskSizer {
	if riskFraction <= 0 {
		riskFraction = 0.02
	}
	if minLot <= 0 {
		minLot = 0.01
	}
	return &RiskSizer{riskFraction: riskFraction, minLot: minLot}
}

// SizeTrade computes (lot, adjustedStop) for a market order.
//
// The stop is shifted by the current spread away from entry: a BUY opens near
// ask but closes at bid, so its effective stop sits one spread further out.
// Risk budget is balance * riskFraction; lot = budget / (stopDistance *
// contractSize), rounded to the venue's two-decimal step and floored at the
// minimum lot. A zero stop distance is a degenerate signal, not an error:
// it returns the minimum lot and the stop untouched.
//
// The minimum-lot floor can force more actual risk than the configured
// fraction. That overrun is accepted; the fraction bound holds everywhere
// else up to rounding.
func (r *RiskSizer) SizeTrade(inst *domain.Instrument, entry, stop float64, action domain.Action, balance float64) (float64, float64) {
	spread := inst.SpreadPrice()

	adjustedStop := stop
	if action == domain.ActionBuy {
		adjustedStop -= spread
	} else {
		adjustedStop += spread
	}

	dist := math.Abs(entry - adjustedStop)
	if dist == 0 {
		return r.minLot, stop
	}

	budget := balance * r.riskFraction
	raw := budget / (dist * inst.ContractSize)

	lot, _ := decimal.NewFromFloat(raw).Round(2).Float64()
	if lot < r.minLot {
		lot = r.minLot
	}

	return lot, adjustedStop
}

// RiskFraction reports the configured per-trade risk limit.
func (r *RiskSizer) RiskFraction() float64 { return r.riskFraction }

// MinLot reports the configured minimum position size.
func (r *RiskSizer) MinLot() float64 { return r.minLot }
