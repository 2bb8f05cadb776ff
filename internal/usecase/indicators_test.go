package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mvoss/signalbridge/internal/domain"
	"github.com/mvoss/signalbridge/internal/usecase"
)

func candlesFromCloses(closes []float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{Time: int64(i), Close: c}
	}
	return out
}

func TestAnalyze_ShortHistorySaysNothing(t *testing.T) {
	desk := &mockDesk{CandleData: candlesFromCloses([]float64{1, 2, 3})}
	gate := usecase.NewTechnicalGate(desk)

	summary, err := gate.Analyze(context.Background(), "EURUSD")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "" {
		t.Errorf("short history should produce no summary, got %q", summary)
	}
}

func TestAnalyze_SteadyUptrendReadsOverbought(t *testing.T) {
	// 100 monotonically rising closes: RSI pins at 100, bias bearish.
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 2000 + float64(i)
	}
	desk := &mockDesk{CandleData: candlesFromCloses(closes)}
	gate := usecase.NewTechnicalGate(desk)

	summary, err := gate.Analyze(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatal(err)
	}
	if summary == "" {
		t.Fatal("expected a summary for full history")
	}
	if !strings.Contains(summary, "bearish") {
		t.Errorf("relentless uptrend should read overbought/bearish, got %q", summary)
	}
	if !strings.Contains(summary, "RSI 100.0") {
		t.Errorf("all-gain series should pin RSI at 100, got %q", summary)
	}
}

func TestAnalyze_SteadyDowntrendReadsOversold(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 2000 - float64(i)
	}
	desk := &mockDesk{CandleData: candlesFromCloses(closes)}
	gate := usecase.NewTechnicalGate(desk)

	summary, err := gate.Analyze(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary, "bullish") {
		t.Errorf("relentless downtrend should read oversold/bullish, got %q", summary)
	}
}
