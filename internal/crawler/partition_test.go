package crawler

import (
	"fmt"
	"testing"
)

func TestAssignIsDeterministic(t *testing.T) {
	urls := []string{
		"https://www.reddit.com/r/golang/comments/abc/post/",
		"https://www.reddit.com/r/rust/comments/def/other/",
		"",
		"short",
	}
	for _, url := range urls {
		first := Assign(url, 16)
		for i := 0; i < 100; i++ {
			if got := Assign(url, 16); got != first {
				t.Fatalf("Assign(%q, 16) unstable: %d then %d", url, first, got)
			}
		}
	}
}

func TestAssignStaysInRange(t *testing.T) {
	for n := 1; n <= 32; n++ {
		for i := 0; i < 200; i++ {
			idx := Assign(fmt.Sprintf("url-%d", i), n)
			if idx < 0 || idx >= n {
				t.Fatalf("Assign returned %d for workerCount %d", idx, n)
			}
		}
	}
}

func TestAssignSpreadsKeys(t *testing.T) {
	const workers = 8
	counts := make([]int, workers)
	for i := 0; i < 1000; i++ {
		counts[Assign(fmt.Sprintf("https://example/%d", i), workers)]++
	}
	for i, c := range counts {
		if c == 0 {
			t.Fatalf("queue %d received no keys", i)
		}
	}
}
