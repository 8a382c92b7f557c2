package node

import (
	"sync"
	"time"

	"github.com/Roshan0045/massa/log"
	"github.com/Roshan0045/massa/propagation"
	"github.com/Roshan0045/massa/sequencer"
	"github.com/Roshan0045/massa/slot"
	"github.com/Roshan0045/massa/tick"
)

// Executor is the boundary the node calls into on every dispatched slot.
// Actual execution of smart contracts is out of scope (spec §1); this is
// the seam where a real execution engine plugs in.
type Executor interface {
	Execute(isFinal bool, sl slot.Slot, content *sequencer.Content[tick.BlockMetadata])
}

// Node wires the execution slot sequencer, the consensus tick handler,
// and the operation propagation loop into one runnable process. Grounded
// on the teacher's node.Config/node.LifecycleManager wiring (pkg/node/
// config.go, pkg/node/lifecycle.go), simplified to the two long-running
// components this spec actually has: the propagation owner thread and
// the node's own slot-driven dispatch loop.
type Node struct {
	cfg      Config
	log      *log.Logger
	clock    *slot.Clock
	seq      *sequencer.Sequencer[tick.BlockMetadata]
	ticker   *tick.Ticker
	prop     *propagation.Propagator
	executor Executor

	stop     chan struct{}
	stopOnce sync.Once
	loopDone chan struct{}
}

// New constructs a Node. graph supplies the consensus-graph contract
// (§4.7); sender delivers operation announcements to peers (§4.8);
// executor receives dispatched slots (§4.4). finalCursor seeds the
// sequencer's execution cursors, as when resuming from a checkpoint.
func New(cfg Config, graph tick.Graph, sender propagation.Sender, storage propagation.Storage, executor Executor, finalCursor slot.Slot) *Node {
	seqCfg := sequencer.Config{
		ThreadCount:      cfg.ThreadCount,
		T0:               cfg.T0,
		GenesisTimestamp: cfg.GenesisTimestamp,
		CursorDelay:      cfg.CursorDelay,
		LastStartPeriod:  cfg.LastStartPeriod,
		Now:              cfg.Now,
	}
	seq := sequencer.New[tick.BlockMetadata](seqCfg, finalCursor)

	tickCfg := tick.Config{ThreadCount: cfg.ThreadCount}
	ticker := tick.New(tickCfg, graph, seq)

	propCfg := propagation.Config{
		BufferCapacity:           cfg.PropagationBufferCapacity,
		FlushInterval:            cfg.PropagationFlushInterval,
		MaxOperationsPerMessage:  cfg.MaxOperationsPerMessage,
		MaxPropagationTime:       cfg.MaxOperationsPropagationTime,
		MaxOpsKeptForPropagation: cfg.MaxOpsKeptForPropagation,
		PerPeerCacheSize:         cfg.PeerPrefixCacheSize,
		PrefixLength:             cfg.OperationPrefixLength,
		Now:                      cfg.Now,
	}
	prop := propagation.New(propCfg, sender, storage)

	return &Node{
		cfg:      cfg,
		log:      log.Default().Module("node").With("name", cfg.Name),
		clock:    slot.NewClock(cfg.GenesisTimestamp, cfg.T0, cfg.ThreadCount),
		seq:      seq,
		ticker:   ticker,
		prop:     prop,
		executor: executor,
		stop:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Sequencer exposes the underlying sequencer, e.g. for tests or metrics.
func (n *Node) Sequencer() *sequencer.Sequencer[tick.BlockMetadata] { return n.seq }

// Ticker exposes the tick handler, e.g. to read production statistics.
func (n *Node) Ticker() *tick.Ticker { return n.ticker }

// Propagator exposes the propagation owner thread, e.g. to add/remove
// peers and enqueue newly-seen operations.
func (n *Node) Propagator() *propagation.Propagator { return n.prop }

// Start launches the propagation owner thread and the node's own
// slot-driven dispatch loop.
func (n *Node) Start() error {
	go n.prop.Run()
	go n.runLoop()
	n.log.Info("node started", "thread_count", n.cfg.ThreadCount, "t0", n.cfg.T0)
	return nil
}

// Stop signals both goroutines to exit and waits for them to finish.
func (n *Node) Stop() error {
	n.stopOnce.Do(func() { close(n.stop) })
	<-n.loopDone
	n.prop.Close()
	n.log.Info("node stopped")
	return nil
}

// runLoop waits for each slot deadline (§4.6), drives the tick handler
// once per slot edge, then drains every sequencer task that becomes
// available before waiting for the next deadline.
func (n *Node) runLoop() {
	defer close(n.loopDone)

	for {
		deadline := n.seq.GetNextSlotDeadline()
		wait := time.Until(deadline)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-n.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if current, ok := n.clock.SlotAt(n.cfg.now()); ok {
			n.ticker.Tick(current)
		}

		for {
			_, ok := sequencer.RunTaskWith(n.seq, func(isFinal bool, sl slot.Slot, content *sequencer.Content[tick.BlockMetadata]) struct{} {
				n.executor.Execute(isFinal, sl, content)
				return struct{}{}
			})
			if !ok {
				break
			}
		}
	}
}
