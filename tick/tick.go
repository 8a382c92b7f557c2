// Package tick implements the consensus tick handler (§4.7): the glue
// between the consensus graph and the execution slot sequencer. On each
// wall-clock slot edge it promotes WaitingForSlot blocks, rolls block
// production statistics forward, recomputes finality through the graph's
// pure-function callback, and emits the resulting diff to the sequencer.
//
// Supplemented from original_source/massa-consensus-worker/src/state/
// tick.rs: the statistics rollup (blocks produced/missed per thread) the
// original's stats_in_final_blocks counters track, modeled here on the
// teacher's EpochFinalityTracker bookkeeping style (see stats.go).
package tick

import (
	"github.com/Roshan0045/massa/log"
	"github.com/Roshan0045/massa/message"
	"github.com/Roshan0045/massa/sequencer"
	"github.com/Roshan0045/massa/slot"
)

// Ticker drives one consensus graph against one sequencer. It is
// single-owner: Tick must not be called concurrently from more than one
// goroutine, matching the sequencer's own single-owner contract.
type Ticker struct {
	cfg   Config
	log   *log.Logger
	graph Graph
	seq   *sequencer.Sequencer[BlockMetadata]
	stats *Stats

	seen map[message.BlockID]struct{}
}

// New constructs a Ticker over the given graph and sequencer.
func New(cfg Config, graph Graph, seq *sequencer.Sequencer[BlockMetadata]) *Ticker {
	return &Ticker{
		cfg:   cfg,
		log:   log.Default().Module("tick"),
		graph: graph,
		seq:   seq,
		stats: NewStats(cfg.ThreadCount),
		seen:  make(map[message.BlockID]struct{}),
	}
}

// Stats returns the production-statistics rollup.
func (t *Ticker) Stats() *Stats { return t.stats }

// Tick processes one slot edge, per §4.7 steps 1-3.
func (t *Ticker) Tick(current slot.Slot) {
	for _, id := range t.graph.ReadyBlocks(current) {
		target, hasTarget := t.graph.TargetSlot(id)
		state := t.graph.Reprocess(id)
		switch state {
		case Active:
			if hasTarget {
				t.stats.RecordProduced(target.Thread)
			}
		case Discarded:
			if hasTarget {
				t.stats.RecordMissed(target.Thread)
			}
		case WaitingForDependencies:
			t.log.Debug("block re-queued pending dependencies", "block", id)
		}
	}

	newFinal, candidate, candidateChanged := t.graph.Finality()

	newMetadata := make(map[message.BlockID]BlockMetadata)
	t.collectMetadata(newFinal, newMetadata)
	if candidateChanged {
		t.collectMetadata(candidate, newMetadata)
	}

	var blockclique map[slot.Slot]message.BlockID
	if candidateChanged {
		blockclique = candidate
	}

	t.seq.Update(newFinal, blockclique, newMetadata)
}

// collectMetadata fetches metadata for any id in ids not already seen in
// a prior tick, moving it into out and marking it seen.
func (t *Ticker) collectMetadata(ids map[slot.Slot]message.BlockID, out map[message.BlockID]BlockMetadata) {
	for _, id := range ids {
		if _, ok := t.seen[id]; ok {
			continue
		}
		md, ok := t.graph.MetadataFor(id)
		if !ok {
			continue
		}
		out[id] = md
		t.seen[id] = struct{}{}
	}
}
