package tick

import "sync"

// ThreadStats is a snapshot of per-thread block production counters.
type ThreadStats struct {
	Thread   uint8
	Produced uint64
	Missed   uint64
}

// Stats rolls forward per-thread produced/missed block counts as the tick
// handler promotes WaitingForSlot blocks. Grounded on the teacher's
// EpochFinalityTracker (consensus/finality_tracker.go): a sync.RWMutex-
// guarded store exposing narrow, named mutators plus a snapshot reader,
// rather than exposing the underlying slice.
type Stats struct {
	mu      sync.RWMutex
	threads []ThreadStats
}

// NewStats allocates a stats rollup for the given thread count.
func NewStats(threadCount uint8) *Stats {
	threads := make([]ThreadStats, threadCount)
	for t := range threads {
		threads[t].Thread = uint8(t)
	}
	return &Stats{threads: threads}
}

// RecordProduced increments the produced counter for thread.
func (s *Stats) RecordProduced(thread uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[thread].Produced++
}

// RecordMissed increments the missed counter for thread.
func (s *Stats) RecordMissed(thread uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[thread].Missed++
}

// Snapshot returns a copy of the per-thread counters.
func (s *Stats) Snapshot() []ThreadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ThreadStats, len(s.threads))
	copy(out, s.threads)
	return out
}
