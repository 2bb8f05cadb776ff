package domain

type Outcome string

const (
	OutcomeProfit Outcome = "PROFIT"
	OutcomeLoss   Outcome = "LOSS"
)

// ClassifyProfit maps realized profit to an outcome. Exactly zero is a LOSS;
// the boundary is fixed here so it is never re-decided at call sites.
func ClassifyProfit(profit float64) Outcome {
	if profit > 0 {
		return OutcomeProfit
	}
	return OutcomeLoss
}

// ClosedTradeReport is produced once per newly-closed deal and sent to the
// operator. It is ephemeral; only the report cursor is persisted.
type ClosedTradeReport struct {
	Symbol  string
	Outcome Outcome
	Profit  float64
	Balance float64
}
