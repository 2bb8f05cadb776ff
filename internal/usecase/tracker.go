package usecase

import (
	"sync"

	"github.com/mvoss/signalbridge/internal/domain"
)

// PositionTracker owns the map of open tickets the watchdog supervises.
// The signal path inserts, the watchdog transitions and removes; a mutex
// serializes the two since they run on separate goroutines.
type PositionTracker struct {
	mu        sync.Mutex
	positions map[int64]*domain.TrackedPosition
}

func NewPositionTracker() *PositionTracker {
	return &PositionTracker{
		positions: make(map[int64]*domain.TrackedPosition),
	}
}

// Track registers a freshly opened position. Re-tracking an existing ticket
// overwrites it; tickets are venue-unique so that only happens on duplicate
// fills of the same order.
func (t *PositionTracker) Track(p domain.TrackedPosition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p.BreakEvenMoved = false
	t.positions[p.Ticket] = &p
}

// Remove drops a ticket. The caller must never operate on it again.
func (t *PositionTracker) Remove(ticket int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.positions, ticket)
}

// MarkArmed records a confirmed break-even stop move. Monotonic: once set it
// stays set, and a ticket no longer tracked is a no-op.
func (t *PositionTracker) MarkArmed(ticket int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.positions[ticket]; ok {
		p.BreakEvenMoved = true
	}
}

// Snapshot returns a copy of the tracked set so the watchdog can iterate
// without holding the lock across venue calls.
func (t *PositionTracker) Snapshot() []domain.TrackedPosition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TrackedPosition, 0, len(t.positions))
	for _, p := range t.positions {
		out = append(out, *p)
	}
	return out
}

// Get returns a copy of one tracked position.
func (t *PositionTracker) Get(ticket int64) (domain.TrackedPosition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.positions[ticket]
	if !ok {
		return domain.TrackedPosition{}, false
	}
	return *p, true
}

func (t *PositionTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.positions)
}
