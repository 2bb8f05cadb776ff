package usecase

import (
	"context"
	"fmt"

	"github.com/mvoss/signalbridge/internal/domain"
)

const (
	rsiPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9

	candleLookback = 100
)

// TechnicalGate computes an RSI/MACD read of the market for a symbol. It is
// advisory only: the summary travels with the proposed-trade notification and
// the confirmation prompt, it never blocks execution on its own.
type TechnicalGate struct {
	desk domain.Desk
}

func NewTechnicalGate(desk domain.Desk) *TechnicalGate {
	return &TechnicalGate{desk: desk}
}

// Analyze returns a one-line sentiment summary, or "" when there is not
// enough candle history to say anything.
func (g *TechnicalGate) Analyze(ctx context.Context, symbol string) (string, error) {
	candles, err := g.desk.Candles(ctx, symbol, candleLookback)
	if err != nil {
		return "", fmt.Errorf("candles for %s: %w", symbol, err)
	}
	if len(candles) < macdSlow+macdSignal {
		return "", nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	rsi := computeRSI(closes, rsiPeriod)
	macd, signal := computeMACD(closes)

	bias := "neutral"
	switch {
	case rsi > 70 || (macd < signal && rsi > 50):
		bias = "bearish"
	case rsi < 30 || (macd > signal && rsi < 50):
		bias = "bullish"
	}

	return fmt.Sprintf("RSI %.1f, MACD %.5f vs signal %.5f (%s)", rsi, macd, signal, bias), nil
}

// computeRSI is Wilder's smoothed RSI over the final value of the series.
func computeRSI(closes []float64, period int) float64 {
	if len(closes) <= period {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// computeMACD returns the final MACD line and its signal line.
func computeMACD(closes []float64) (float64, float64) {
	fast := ema(closes, macdFast)
	slow := ema(closes, macdSlow)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fast[i] - slow[i]
	}
	signalLine := ema(macdLine, macdSignal)

	last := len(closes) - 1
	return macdLine[last], signalLine[last]
}

func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}
