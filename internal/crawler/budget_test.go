package crawler

import (
	"sync"
	"testing"
)

func TestBudgetChargesPagesUntilExhaustion(t *testing.T) {
	b := NewBudget(3, 100)

	for i := 0; i < 3; i++ {
		if !b.TryChargePage() {
			t.Fatalf("charge %d should succeed", i)
		}
	}
	if b.TryChargePage() {
		t.Fatalf("charge past ceiling should fail")
	}
	if pages, _ := b.Snapshot(); pages != 0 {
		t.Fatalf("pages remaining %d, want 0", pages)
	}
	if !b.Exhausted() {
		t.Fatalf("budget should report exhausted")
	}
}

func TestBudgetUnboundedPages(t *testing.T) {
	b := NewBudget(0, 100)
	pages, _ := b.Snapshot()
	if pages != UnlimitedPages {
		t.Fatalf("expected unlimited sentinel, got %d", pages)
	}
	if !b.TryChargePage() {
		t.Fatalf("unbounded budget should always charge")
	}
	pages, _ = b.Snapshot()
	if pages != UnlimitedPages-1 {
		t.Fatalf("pages remaining %d, want sentinel-1", pages)
	}
}

func TestBudgetBytes(t *testing.T) {
	b := NewBudget(0, 10)
	if !b.ChargeBytes(7) {
		t.Fatalf("first byte charge should succeed")
	}
	// Remaining is positive, so one more charge is allowed even if it
	// overshoots; after that the budget is exhausted.
	if !b.ChargeBytes(7) {
		t.Fatalf("charge with positive remainder should succeed")
	}
	if b.ChargeBytes(1) {
		t.Fatalf("charge on exhausted byte budget should fail")
	}
	_, bytes := b.Snapshot()
	if bytes != -4 {
		t.Fatalf("bytes remaining %d, want -4", bytes)
	}
}

func TestBudgetRefundPage(t *testing.T) {
	b := NewBudget(1, 100)
	if !b.TryChargePage() {
		t.Fatalf("charge should succeed")
	}
	b.RefundPage()
	if !b.TryChargePage() {
		t.Fatalf("charge after refund should succeed")
	}
}

func TestBudgetConcurrentPageCharges(t *testing.T) {
	const ceiling = 50
	const goroutines = 200

	b := NewBudget(ceiling, 1<<30)
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryChargePage() {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != ceiling {
		t.Fatalf("%d successful charges, want exactly %d", successes, ceiling)
	}
	if pages, _ := b.Snapshot(); pages != 0 {
		t.Fatalf("pages remaining %d, want 0", pages)
	}
}
