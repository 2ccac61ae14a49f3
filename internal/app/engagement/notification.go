package engagement

import (
	"sync"
	"time"

	"github.com/roadmap-labs/roadmap/internal/domain"
)

// DefaultDismissAfter is how long a batch of new achievements stays visible.
const DefaultDismissAfter = 5 * time.Second

// ClearReason tells a clear hook why the queue emptied.
type ClearReason string

const (
	ClearExpired   ClearReason = "expired"
	ClearDismissed ClearReason = "dismissed"
)

// Notifier holds the transient "new achievements" list shown after an unlock.
//
// Each Push replaces the list and schedules a fresh auto-clear, cancelling any
// pending one. Dismiss clears immediately and cancels the pending clear.
// Whichever of the two fires first wins.
type Notifier struct {
	mu      sync.Mutex
	items   []domain.Achievement
	timer   *time.Timer
	gen     uint64
	after   time.Duration
	onClear func(ClearReason, int)
}

// NewNotifier creates a notifier that auto-clears after the given delay.
// A non-positive delay falls back to DefaultDismissAfter.
func NewNotifier(after time.Duration) *Notifier {
	if after <= 0 {
		after = DefaultDismissAfter
	}
	return &Notifier{after: after}
}

// OnClear registers a hook invoked (outside the lock) whenever a non-empty
// list is cleared, with the reason and the number of items dropped.
func (n *Notifier) OnClear(fn func(ClearReason, int)) {
	n.mu.Lock()
	n.onClear = fn
	n.mu.Unlock()
}

// Push publishes a batch of newly unlocked achievements. Empty batches are
// ignored so an evaluation pass with no unlocks does not reset the timer.
func (n *Notifier) Push(batch []domain.Achievement) {
	if len(batch) == 0 {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.items = append([]domain.Achievement(nil), batch...)
	gen := n.gen
	n.timer = time.AfterFunc(n.after, func() { n.expire(gen) })
}

// Pending returns a copy of the current list.
func (n *Notifier) Pending() []domain.Achievement {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Achievement(nil), n.items...)
}

// Dismiss clears the list now.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	dropped := len(n.items)
	n.stopLocked()
	n.items = nil
	hook := n.onClear
	n.mu.Unlock()

	if hook != nil && dropped > 0 {
		hook(ClearDismissed, dropped)
	}
}

// Close cancels any pending auto-clear without firing hooks.
func (n *Notifier) Close() {
	n.mu.Lock()
	n.stopLocked()
	n.mu.Unlock()
}

// stopLocked cancels the pending timer and invalidates it in case it already
// fired and is waiting on the lock.
func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	dropped := len(n.items)
	n.items = nil
	n.timer = nil
	hook := n.onClear
	n.mu.Unlock()

	if hook != nil && dropped > 0 {
		hook(ClearExpired, dropped)
	}
}
