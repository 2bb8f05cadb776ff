package domain

import (
	"fmt"
	"strings"
)

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

type InstrumentClass string

const (
	ClassForex  InstrumentClass = "FOREX"
	ClassBinary InstrumentClass = "BINARY"
)

// TradeSignal is the structured form of one inbound channel message.
// Produced by the parser, validated here before anything downstream acts on it.
type TradeSignal struct {
	ID     string
	Class  InstrumentClass
	Symbol string
	Action Action

	// FOREX fields. Entry/StopLoss and at least one take-profit are
	// mandatory for ClassForex.
	Entry       float64
	TakeProfits []float64
	StopLoss    float64

	// BINARY fields, passed through to the venue untouched.
	ExpiryMinutes int
	GaleSteps     int
}

// NormalizeAction maps venue-specific direction vocabulary to BUY/SELL.
// CALL and GREEN are buys, PUT and RED are sells.
func NormalizeAction(raw string) (Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY", "CALL", "GREEN", "LONG":
		return ActionBuy, true
	case "SELL", "PUT", "RED", "SHORT":
		return ActionSell, true
	}
	return "", false
}

// FirstTakeProfit returns the primary target. Valid only after Validate.
func (s *TradeSignal) FirstTakeProfit() float64 {
	if len(s.TakeProfits) == 0 {
		return 0
	}
	return s.TakeProfits[0]
}

// Validate enforces the invariants the execution path relies on. The parser
// output is treated as untrusted; anything malformed fails here, never later.
func (s *TradeSignal) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidSignal)
	}
	if s.Action != ActionBuy && s.Action != ActionSell {
		return fmt.Errorf("%w: action %q not resolvable to BUY/SELL", ErrInvalidSignal, s.Action)
	}

	switch s.Class {
	case ClassForex:
		if s.Entry <= 0 {
			return fmt.Errorf("%w: missing or non-positive entry", ErrInvalidSignal)
		}
		if s.StopLoss <= 0 {
			return fmt.Errorf("%w: missing or non-positive stop loss", ErrInvalidSignal)
		}
		if len(s.TakeProfits) == 0 {
			return fmt.Errorf("%w: forex signal without take profit", ErrInvalidSignal)
		}
		for _, tp := range s.TakeProfits {
			if tp <= 0 {
				return fmt.Errorf("%w: non-positive take profit", ErrInvalidSignal)
			}
		}
	case ClassBinary:
		if s.ExpiryMinutes < 0 || s.GaleSteps < 0 {
			return fmt.Errorf("%w: negative binary parameter", ErrInvalidSignal)
		}
	default:
		return fmt.Errorf("%w: unknown instrument class %q", ErrInvalidSignal, s.Class)
	}

	return nil
}

// ChannelMessage is one raw event from the messaging source.
type ChannelMessage struct {
	ChatID int64
	Text   string
}
