package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mvoss/signalbridge/internal/domain"
	"github.com/mvoss/signalbridge/internal/usecase"
)

func TestCleanSymbol(t *testing.T) {
	cases := map[string]string{
		"XAUUSD-ECN": "XAUUSD",
		"EUR/USD":    "EURUSD",
		"xauusd":     "XAUUSD",
		" GBPUSD ":   "GBPUSD",
		"BTC/USD-m":  "BTCUSD",
	}
	for raw, want := range cases {
		if got := usecase.CleanSymbol(raw); got != want {
			t.Errorf("CleanSymbol(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestResolve_ExactBeatsSubstring(t *testing.T) {
	// XAUUSD appears both as itself and inside XAUUSDm. Exact must win
	// regardless of list order.
	desk := &mockDesk{Symbols: []string{"XAUUSDm", "XAUUSD", "EURUSD"}}
	resolver := usecase.NewSymbolResolver(desk, nil)

	got, err := resolver.Resolve(context.Background(), "XAUUSD-ECN")
	if err != nil {
		t.Fatal(err)
	}
	if got != "XAUUSD" {
		t.Errorf("resolved %q, want exact match XAUUSD", got)
	}
}

func TestResolve_SubstringFallback(t *testing.T) {
	desk := &mockDesk{Symbols: []string{"XAUUSDm", "EURUSDm"}}
	resolver := usecase.NewSymbolResolver(desk, nil)

	got, err := resolver.Resolve(context.Background(), "EUR/USD")
	if err != nil {
		t.Fatal(err)
	}
	if got != "EURUSDm" {
		t.Errorf("resolved %q, want EURUSDm via containment", got)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	desk := &mockDesk{Symbols: []string{"EURUSD"}}
	resolver := usecase.NewSymbolResolver(desk, nil)

	_, err := resolver.Resolve(context.Background(), "US30")
	if !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestInfo_ContractSizeDefaults(t *testing.T) {
	desk := &mockDesk{
		Info: map[string]*domain.Instrument{
			"XAUUSD": {Name: "XAUUSD"}, // desk reports no contract size
			"EURUSD": {Name: "EURUSD"},
			"USDJPY": {Name: "USDJPY", ContractSize: 50000},
		},
	}
	resolver := usecase.NewSymbolResolver(desk, nil)
	ctx := context.Background()

	inst, err := resolver.Info(ctx, "XAUUSD")
	if err != nil {
		t.Fatal(err)
	}
	if inst.ContractSize != 100 {
		t.Errorf("XAUUSD contract = %v, want metal default 100", inst.ContractSize)
	}

	inst, _ = resolver.Info(ctx, "EURUSD")
	if inst.ContractSize != 100000 {
		t.Errorf("EURUSD contract = %v, want standard lot 100000", inst.ContractSize)
	}

	// Venue-reported size survives.
	inst, _ = resolver.Info(ctx, "USDJPY")
	if inst.ContractSize != 50000 {
		t.Errorf("USDJPY contract = %v, want the desk's 50000", inst.ContractSize)
	}
}

func TestInfo_ConfigOverrideWins(t *testing.T) {
	desk := &mockDesk{
		Info: map[string]*domain.Instrument{
			"XAUUSD": {Name: "XAUUSD", ContractSize: 100},
		},
	}
	resolver := usecase.NewSymbolResolver(desk, map[string]float64{"XAUUSD": 10})

	inst, err := resolver.Info(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatal(err)
	}
	if inst.ContractSize != 10 {
		t.Errorf("contract = %v, want configured override 10", inst.ContractSize)
	}
}
