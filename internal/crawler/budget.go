package crawler

import (
	"math"
	"sync"
)

// UnlimitedPages is the sentinel page ceiling for unbounded crawls.
const UnlimitedPages = int64(math.MaxInt64)

// Budget holds the shared pages-remaining and bytes-remaining counters.
// All mutation goes through the charge operations; callers never see the
// raw counters. Snapshot is a dirty read and may be stale by one
// decrement, which lets a worker start at most one extra unit of work
// after true exhaustion. That tolerance is accepted.
type Budget struct {
	mu    sync.Mutex
	pages int64
	bytes int64
}

// NewBudget creates a budget with the given ceilings. maxPages <= 0 means
// unbounded pages.
func NewBudget(maxPages, maxBytes int64) *Budget {
	if maxPages <= 0 {
		maxPages = UnlimitedPages
	}
	return &Budget{pages: maxPages, bytes: maxBytes}
}

// TryChargePage consumes one page if any remain. A false return means the
// page budget was already exhausted and the caller must not count the item
// as delivered.
func (b *Budget) TryChargePage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pages <= 0 {
		return false
	}
	b.pages--
	return true
}

// ChargeBytes consumes n bytes if any remain.
func (b *Budget) ChargeBytes(n int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bytes <= 0 {
		return false
	}
	b.bytes -= n
	return true
}

// RefundPage returns one page to the budget. Kept for an
// abandonment policy that charges up front; the engine's pinned policy
// charges only after a successful write, so it does not call this.
func (b *Budget) RefundPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pages < UnlimitedPages {
		b.pages++
	}
}

// Snapshot reports the remaining ceilings. Used only for
// loop-continuation checks.
func (b *Budget) Snapshot() (pages, bytes int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pages, b.bytes
}

// Exhausted reports whether either ceiling has run out.
func (b *Budget) Exhausted() bool {
	pages, bytes := b.Snapshot()
	return pages <= 0 || bytes <= 0
}
