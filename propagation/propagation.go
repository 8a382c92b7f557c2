// Package propagation implements the operation-propagation owner thread
// (§4.8): a single goroutine that batches newly-seen operations, announces
// their id prefixes to connected peers (deduplicated per peer), and keeps a
// short-lived FIFO retention of recently-propagated ids available to serve
// on request.
//
// Grounded on the teacher's pkg/p2p/request_manager.go: an owner-thread
// goroutine driven by a ticker plus a stop channel, a config-with-defaults
// constructor, and sentinel errors rather than ad hoc error values. The
// per-peer dedup cache is grounded on pkg/engine/payload_lru_cache.go (see
// prefixcache.go).
package propagation

import (
	"sync"
	"time"

	"github.com/Roshan0045/massa/log"
	"github.com/Roshan0045/massa/message"
)

// PeerID identifies a connected peer. Mirrors the teacher's p2p.PeerID.
type PeerID string

// Sender delivers an operation-id-prefix announcement to a peer. An error
// that wraps ErrPeerDisconnected is treated as peer loss rather than a
// transient failure.
type Sender interface {
	SendAnnouncement(peer PeerID, prefixes []message.OperationPrefix) error
}

type retentionGroup struct {
	at  time.Time
	ids []message.OperationID
}

// Propagator is the owner-thread operation-propagation loop. All mutable
// state is touched only from the Run goroutine except the stats counters,
// which carry their own lock; Enqueue/AddPeer/RemovePeer/Close may be
// called from any goroutine.
type Propagator struct {
	cfg     Config
	log     *log.Logger
	sender  Sender
	storage Storage

	enqueueCh    chan []message.OperationID
	addPeerCh    chan PeerID
	removePeerCh chan PeerID
	stop         chan struct{}
	stopOnce     sync.Once
	done         chan struct{}

	stats stats

	// owner-thread-only state below; never touched from other goroutines.
	peers        map[PeerID]*prefixCache
	pendingPurge map[PeerID]struct{}
	nextBatch    []message.OperationID
	retention    []retentionGroup
	totalKept    int
}

// New constructs a Propagator. Call Run in its own goroutine to start it.
func New(cfg Config, sender Sender, storage Storage) *Propagator {
	return &Propagator{
		cfg:     cfg,
		log:     log.Default().Module("propagation"),
		sender:  sender,
		storage: storage,

		enqueueCh:    make(chan []message.OperationID, 64),
		addPeerCh:    make(chan PeerID, 16),
		removePeerCh: make(chan PeerID, 16),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),

		peers:        make(map[PeerID]*prefixCache),
		pendingPurge: make(map[PeerID]struct{}),
	}
}

// Enqueue submits newly-known operation ids for propagation. Safe to call
// from any goroutine; blocks if the internal queue is full.
func (p *Propagator) Enqueue(ids []message.OperationID) {
	if len(ids) == 0 {
		return
	}
	select {
	case p.enqueueCh <- ids:
	case <-p.stop:
	}
}

// AddPeer registers a newly-connected peer.
func (p *Propagator) AddPeer(peer PeerID) {
	select {
	case p.addPeerCh <- peer:
	case <-p.stop:
	}
}

// RemovePeer unregisters a disconnected peer.
func (p *Propagator) RemovePeer(peer PeerID) {
	select {
	case p.removePeerCh <- peer:
	case <-p.stop:
	}
}

// Close stops the owner thread and waits for Run to return.
func (p *Propagator) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

// Run is the owner-thread loop. Call it in its own goroutine; it returns
// when Close is called.
func (p *Propagator) Run() {
	defer close(p.done)

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return

		case ids := <-p.enqueueCh:
			p.storage.Acquire(ids)
			p.nextBatch = append(p.nextBatch, ids...)
			p.addToRetention(ids)
			p.stats.recordAnnounced(len(ids))
			if len(p.nextBatch) >= p.cfg.BufferCapacity {
				p.flush()
			}

		case peer := <-p.addPeerCh:
			p.peers[peer] = newPrefixCache(p.cfg.PerPeerCacheSize)
			p.stats.setPeers(len(p.peers))

		case peer := <-p.removePeerCh:
			delete(p.peers, peer)
			delete(p.pendingPurge, peer)
			p.stats.setPeers(len(p.peers))

		case <-ticker.C:
			p.flush()
			p.evictRetention()
			p.refreshPeerCaches()
		}
	}
}

// flush announces the pending batch to every connected peer, deduplicated
// per peer and chunked by MaxOperationsPerMessage. A send error classified
// as peer loss aborts that peer's announcement for this cycle only; the
// peer's cache is purged at the next refresh tick rather than immediately,
// since more send errors for the same peer may still arrive this cycle.
func (p *Propagator) flush() {
	if len(p.nextBatch) == 0 {
		return
	}

	for peer, cache := range p.peers {
		var fresh []message.OperationPrefix
		for _, id := range p.nextBatch {
			prefix := message.PrefixOf(id, p.cfg.PrefixLength)
			if cache.Seen(string(prefix)) {
				p.stats.recordDuplicate()
				continue
			}
			fresh = append(fresh, prefix)
		}
		if len(fresh) == 0 {
			continue
		}

		disconnected := false
		for start := 0; start < len(fresh); start += p.cfg.MaxOperationsPerMessage {
			end := start + p.cfg.MaxOperationsPerMessage
			if end > len(fresh) {
				end = len(fresh)
			}
			chunk := fresh[start:end]
			if err := p.sender.SendAnnouncement(peer, chunk); err != nil {
				if isPeerDisconnected(err) {
					p.pendingPurge[peer] = struct{}{}
					disconnected = true
					break
				}
				p.log.Warn("announcement send failed", "peer", string(peer), "error", err)
				break
			}
			for _, prefix := range chunk {
				cache.Add(string(prefix))
			}
			p.stats.recordPropagated(len(chunk))
		}
		if disconnected {
			continue
		}
	}

	p.nextBatch = p.nextBatch[:0]
}

func isPeerDisconnected(err error) bool {
	for err != nil {
		if err == ErrPeerDisconnected {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func (p *Propagator) addToRetention(ids []message.OperationID) {
	cp := make([]message.OperationID, len(ids))
	copy(cp, ids)
	p.retention = append(p.retention, retentionGroup{at: p.cfg.now(), ids: cp})
	p.totalKept += len(cp)
}

// evictRetention drops groups older than MaxPropagationTime, then trims
// the oldest remaining groups until the total held count is within
// MaxOpsKeptForPropagation (§4.8).
func (p *Propagator) evictRetention() {
	now := p.cfg.now()
	i := 0
	for i < len(p.retention) && now.Sub(p.retention[i].at) > p.cfg.MaxPropagationTime {
		p.releaseGroup(p.retention[i])
		i++
	}
	p.retention = p.retention[i:]

	for p.totalKept > p.cfg.MaxOpsKeptForPropagation && len(p.retention) > 0 {
		p.releaseGroup(p.retention[0])
		p.retention = p.retention[1:]
	}
}

func (p *Propagator) releaseGroup(g retentionGroup) {
	p.storage.Release(g.ids)
	p.totalKept -= len(g.ids)
}

// refreshPeerCaches purges the dedup cache of any peer whose last send
// errored with disconnection during the previous flush.
func (p *Propagator) refreshPeerCaches() {
	for peer := range p.pendingPurge {
		delete(p.peers, peer)
		delete(p.pendingPurge, peer)
	}
}

// RetainedCount reports the total number of operation ids currently held
// across all retention groups, for tests and diagnostics.
func (p *Propagator) RetainedCount() int { return p.totalKept }

// Stats returns a snapshot of the propagation counters. Safe to call from
// any goroutine.
func (p *Propagator) Stats() GossipStats { return p.stats.snapshot() }
