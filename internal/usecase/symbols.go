package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mvoss/signalbridge/internal/domain"
)

const (
	symbolCacheTTL = 5 * time.Minute

	metalContractSize = 100
	forexContractSize = 100000
)

// SymbolResolver maps raw signal symbols to the desk's tradable instruments.
// Signals often carry venue suffixes ("XAUUSD-ECN", "EUR/USD"); resolution
// strips those, tries an exact match against the desk list, then falls back
// to substring containment. No match means the caller skips execution.
type SymbolResolver struct {
	desk      domain.Desk
	overrides map[string]float64 // symbol -> contract size, from config

	mu       sync.Mutex
	cached   []string
	cachedAt time.Time
}

func NewSymbolResolver(desk domain.Desk, contractOverrides map[string]float64) *SymbolResolver {
	return &SymbolResolver{
		desk:      desk,
		overrides: contractOverrides,
	}
}

// CleanSymbol normalizes a raw signal symbol: the part before any "-" suffix,
// slashes removed, upper-cased.
func CleanSymbol(raw string) string {
	clean := raw
	if idx := strings.Index(clean, "-"); idx >= 0 {
		clean = clean[:idx]
	}
	clean = strings.ReplaceAll(clean, "/", "")
	return strings.ToUpper(strings.TrimSpace(clean))
}

// Resolve returns the desk's name for a raw signal symbol, or
// ErrSymbolNotFound. Exact match wins over containment.
func (r *SymbolResolver) Resolve(ctx context.Context, raw string) (string, error) {
	clean := CleanSymbol(raw)
	if clean == "" {
		return "", fmt.Errorf("%w: empty symbol after cleaning %q", domain.ErrSymbolNotFound, raw)
	}

	symbols, err := r.tradable(ctx)
	if err != nil {
		return "", fmt.Errorf("list instruments: %w", err)
	}

	for _, s := range symbols {
		if s == clean {
			return s, nil
		}
	}
	for _, s := range symbols {
		if strings.Contains(s, clean) {
			return s, nil
		}
	}

	return "", fmt.Errorf("%w: %q", domain.ErrSymbolNotFound, clean)
}

// Info fetches instrument metadata for a resolved symbol, filling in the
// contract size when the desk does not report one: metal-style quoting uses
// 100, everything else the standard lot convention. Config overrides win
// over both.
func (r *SymbolResolver) Info(ctx context.Context, symbol string) (*domain.Instrument, error) {
	inst, err := r.desk.SymbolInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("symbol info %s: %w", symbol, err)
	}

	if inst.ContractSize <= 0 {
		inst.ContractSize = defaultContractSize(symbol)
	}
	if override, ok := r.overrides[symbol]; ok && override > 0 {
		inst.ContractSize = override
	}

	return inst, nil
}

func defaultContractSize(symbol string) float64 {
	upper := strings.ToUpper(symbol)
	if strings.Contains(upper, "XAU") || strings.Contains(upper, "GOLD") {
		return metalContractSize
	}
	return forexContractSize
}

func (r *SymbolResolver) tradable(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	if r.cached != nil && time.Since(r.cachedAt) < symbolCacheTTL {
		cached := r.cached
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	symbols, err := r.desk.Instruments(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cached = symbols
	r.cachedAt = time.Now()
	r.mu.Unlock()

	return symbols, nil
}
