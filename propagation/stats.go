package propagation

import "sync"

// GossipStats is a snapshot of operation-propagation counters. Grounded on
// the teacher's p2p/block_gossip.go GossipStats struct, renamed from
// block/peer terms to this package's operation/peer terms: Announced counts
// newly-enqueued operation ids rather than received block announcements,
// and Duplicates counts per-peer cache hits rather than the global
// seen-block filter.
type GossipStats struct {
	Announced  uint64 // operation ids enqueued for propagation
	Propagated uint64 // prefixes delivered in announcement sends that succeeded
	Duplicates uint64 // per-peer dedup cache hits filtered out of a flush
	Peers      int    // currently registered peers
}

// stats is the sync.RWMutex-guarded counter store backing GossipStats,
// following the same narrow-mutator-plus-snapshot shape as tick.Stats.
type stats struct {
	mu  sync.RWMutex
	cur GossipStats
}

func (s *stats) recordAnnounced(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Announced += uint64(n)
}

func (s *stats) recordPropagated(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Propagated += uint64(n)
}

func (s *stats) recordDuplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Duplicates++
}

func (s *stats) setPeers(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Peers = n
}

func (s *stats) snapshot() GossipStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}
