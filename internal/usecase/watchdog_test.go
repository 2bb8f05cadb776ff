package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
	"github.com/mvoss/signalbridge/internal/usecase"
)

// mockDesk is shared by the watchdog, reporter and resolver tests.
type mockDesk struct {
	Symbols     []string
	SymbolsErr  error
	Info        map[string]*domain.Instrument
	Balance     float64
	BalanceErr  error
	Ticks       map[string]*domain.Tick
	TickErr     error
	Open        map[int64]bool
	OpenErr     error
	Deals       []domain.Deal
	DealsErr    error
	ModifyErr   error
	ModifyCalls []int64
	OrderResult *domain.OrderResult
	OrderErr    error
	CandleData  []domain.Candle
}

func (m *mockDesk) Login(ctx context.Context) error { return nil }
func (m *mockDesk) Instruments(ctx context.Context) ([]string, error) {
	return m.Symbols, m.SymbolsErr
}
func (m *mockDesk) SymbolInfo(ctx context.Context, symbol string) (*domain.Instrument, error) {
	if inst, ok := m.Info[symbol]; ok {
		return inst, nil
	}
	return nil, errors.New("unknown symbol")
}
func (m *mockDesk) AccountBalance(ctx context.Context) (float64, error) {
	return m.Balance, m.BalanceErr
}
func (m *mockDesk) CurrentTick(ctx context.Context, symbol string) (*domain.Tick, error) {
	if m.TickErr != nil {
		return nil, m.TickErr
	}
	if tick, ok := m.Ticks[symbol]; ok {
		return tick, nil
	}
	return nil, errors.New("no tick")
}
func (m *mockDesk) MarketOrder(ctx context.Context, symbol string, action domain.Action, lot, takeProfit, stopLoss float64) (*domain.OrderResult, error) {
	return m.OrderResult, m.OrderErr
}
func (m *mockDesk) ModifyStop(ctx context.Context, ticket int64, newStop float64) error {
	m.ModifyCalls = append(m.ModifyCalls, ticket)
	return m.ModifyErr
}
func (m *mockDesk) OpenTickets(ctx context.Context) (map[int64]bool, error) {
	return m.Open, m.OpenErr
}
func (m *mockDesk) ClosedDealsSince(ctx context.Context, since time.Time) ([]domain.Deal, error) {
	return m.Deals, m.DealsErr
}
func (m *mockDesk) Candles(ctx context.Context, symbol string, limit int) ([]domain.Candle, error) {
	return m.CandleData, nil
}

type mockNotifier struct {
	Sent []string
}

func (m *mockNotifier) Notify(ctx context.Context, text string) error {
	m.Sent = append(m.Sent, text)
	return nil
}

type mockCursor struct {
	DealID   int64
	ClosedAt time.Time
	SetCalls int
}

func (m *mockCursor) LastReported(ctx context.Context) (int64, time.Time, error) {
	return m.DealID, m.ClosedAt, nil
}
func (m *mockCursor) SetLastReported(ctx context.Context, dealID int64, closedAt time.Time) error {
	m.DealID = dealID
	m.ClosedAt = closedAt
	m.SetCalls++
	return nil
}

func newTestWatchdog(desk *mockDesk, notifier *mockNotifier) (*usecase.Watchdog, *usecase.PositionTracker) {
	tracker := usecase.NewPositionTracker()
	reporter := usecase.NewReportService(desk, &mockCursor{}, 24*time.Hour, zap.NewNop())
	w := usecase.NewWatchdog(desk, tracker, reporter, notifier, time.Minute, zap.NewNop())
	return w, tracker
}

func TestWatchdog_MovesStopToBreakEvenOnce(t *testing.T) {
	desk := &mockDesk{
		Open:  map[int64]bool{42: true},
		Ticks: map[string]*domain.Tick{"XAUUSD": {Bid: 2061, Ask: 2061.3}},
	}
	notifier := &mockNotifier{}
	w, tracker := newTestWatchdog(desk, notifier)

	tracker.Track(domain.TrackedPosition{
		Ticket: 42, Symbol: "XAUUSD", Direction: domain.ActionBuy,
		Entry: 2050, FirstTP: 2060,
	})

	w.RunCycle(context.Background())
	w.RunCycle(context.Background())

	if len(desk.ModifyCalls) != 1 {
		t.Fatalf("ModifyStop called %d times, want exactly 1", len(desk.ModifyCalls))
	}
	if desk.ModifyCalls[0] != 42 {
		t.Errorf("ModifyStop ticket = %d, want 42", desk.ModifyCalls[0])
	}

	pos, _ := tracker.Get(42)
	if !pos.BreakEvenMoved {
		t.Error("position should be armed after confirmed stop move")
	}
	if len(notifier.Sent) == 0 {
		t.Error("expected a break-even notice to the operator")
	}
}

func TestWatchdog_SellCrossesOnAsk(t *testing.T) {
	desk := &mockDesk{
		Open:  map[int64]bool{7: true},
		Ticks: map[string]*domain.Tick{"EURUSD": {Bid: 1.0939, Ask: 1.0940}},
	}
	w, tracker := newTestWatchdog(desk, &mockNotifier{})

	tracker.Track(domain.TrackedPosition{
		Ticket: 7, Symbol: "EURUSD", Direction: domain.ActionSell,
		Entry: 1.1000, FirstTP: 1.0940,
	})

	w.RunCycle(context.Background())

	if len(desk.ModifyCalls) != 1 {
		t.Fatalf("sell should trigger on ask <= TP, ModifyStop calls = %d", len(desk.ModifyCalls))
	}
}

func TestWatchdog_FailedModifyRetriesNextCycle(t *testing.T) {
	desk := &mockDesk{
		Open:      map[int64]bool{42: true},
		Ticks:     map[string]*domain.Tick{"XAUUSD": {Bid: 2061, Ask: 2061.3}},
		ModifyErr: errors.New("requote"),
	}
	w, tracker := newTestWatchdog(desk, &mockNotifier{})

	tracker.Track(domain.TrackedPosition{
		Ticket: 42, Symbol: "XAUUSD", Direction: domain.ActionBuy,
		Entry: 2050, FirstTP: 2060,
	})

	w.RunCycle(context.Background())

	pos, _ := tracker.Get(42)
	if pos.BreakEvenMoved {
		t.Fatal("failed modification must not arm the position")
	}

	// Desk recovers; the next cycle retries the same ticket.
	desk.ModifyErr = nil
	w.RunCycle(context.Background())

	if len(desk.ModifyCalls) != 2 {
		t.Fatalf("ModifyStop calls = %d, want retry on second cycle", len(desk.ModifyCalls))
	}
	pos, _ = tracker.Get(42)
	if !pos.BreakEvenMoved {
		t.Error("position should be armed after the retry succeeds")
	}
}

func TestWatchdog_UntracksClosedTickets(t *testing.T) {
	desk := &mockDesk{
		Open:  map[int64]bool{}, // venue reports nothing open
		Ticks: map[string]*domain.Tick{"XAUUSD": {Bid: 2061, Ask: 2061.3}},
	}
	w, tracker := newTestWatchdog(desk, &mockNotifier{})

	tracker.Track(domain.TrackedPosition{
		Ticket: 42, Symbol: "XAUUSD", Direction: domain.ActionBuy,
		Entry: 2050, FirstTP: 2060,
	})

	w.RunCycle(context.Background())

	if tracker.Len() != 0 {
		t.Fatal("closed ticket should be untracked")
	}
	if len(desk.ModifyCalls) != 0 {
		t.Error("a closed ticket must never be modified")
	}

	// Nothing acts on it in later cycles either.
	w.RunCycle(context.Background())
	if len(desk.ModifyCalls) != 0 {
		t.Error("removed ticket touched on a later cycle")
	}
}

func TestWatchdog_BelowTargetDoesNothing(t *testing.T) {
	desk := &mockDesk{
		Open:  map[int64]bool{42: true},
		Ticks: map[string]*domain.Tick{"XAUUSD": {Bid: 2055, Ask: 2055.3}},
	}
	w, tracker := newTestWatchdog(desk, &mockNotifier{})

	tracker.Track(domain.TrackedPosition{
		Ticket: 42, Symbol: "XAUUSD", Direction: domain.ActionBuy,
		Entry: 2050, FirstTP: 2060,
	})

	w.RunCycle(context.Background())

	if len(desk.ModifyCalls) != 0 {
		t.Error("stop must not move before the first target is crossed")
	}
}
