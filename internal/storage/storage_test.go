package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreClaimsOnce(t *testing.T) {
	store := NewMemoryStore()

	first, err := store.Visit("u1")
	if err != nil || !first {
		t.Fatalf("expected first visit, got first=%v err=%v", first, err)
	}
	first, err = store.Visit("u1")
	if err != nil || first {
		t.Fatalf("expected repeat visit, got first=%v err=%v", first, err)
	}
}

func TestMemoryStoreConcurrentClaim(t *testing.T) {
	store := NewMemoryStore()
	const goroutines = 32

	var wg sync.WaitGroup
	wins := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Half the goroutines race on the same key.
			id := "shared"
			if n%2 == 0 {
				id = fmt.Sprintf("unique-%d", n)
			}
			if first, _ := store.Visit(id); first {
				wins <- id
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	sharedWins := 0
	for id := range wins {
		if id == "shared" {
			sharedWins++
		}
	}
	if sharedWins != 1 {
		t.Fatalf("expected exactly one claim of the shared key, got %d", sharedWins)
	}
}

func TestBoltStoreClaimsAndExpires(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		VisitedTTL:      1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/visited.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	first, err := store.Visit("id1")
	if err != nil || !first {
		t.Fatalf("expected first visit, got first=%v err=%v", first, err)
	}
	first, err = store.Visit("id1")
	if err != nil || first {
		t.Fatalf("expected repeat visit, got first=%v err=%v", first, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	first, err = store.Visit("id1")
	if err != nil {
		t.Fatalf("Visit after expiry: %v", err)
	}
	if !first {
		t.Fatalf("expected entry to expire and be claimable again")
	}
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	store, err := NewStore("", "", Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if first, _ := store.Visit("x"); !first {
		t.Fatalf("memory store should claim fresh id")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported store type")
	}
}
