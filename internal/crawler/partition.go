package crawler

import "hash/fnv"

// Assign routes an identifier to one of workerCount queues. FNV-1a keeps
// the mapping a pure function of the inputs, so independently started
// workers agree on ownership; a per-process seeded hash would break
// co-located dedup.
func Assign(identifier string, workerCount int) int {
	h := fnv.New32a()
	h.Write([]byte(identifier))
	return int(h.Sum32() % uint32(workerCount))
}
