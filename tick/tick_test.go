package tick

import (
	"testing"

	"github.com/Roshan0045/massa/message"
	"github.com/Roshan0045/massa/sequencer"
	"github.com/Roshan0045/massa/slot"
)

type fakeGraph struct {
	ready      []message.BlockID
	target     map[message.BlockID]slot.Slot
	state      map[message.BlockID]BlockState
	metadata   map[message.BlockID]BlockMetadata
	newFinal   map[slot.Slot]message.BlockID
	candidate  map[slot.Slot]message.BlockID
	candChange bool
}

func (g *fakeGraph) ReadyBlocks(current slot.Slot) []message.BlockID { return g.ready }

func (g *fakeGraph) TargetSlot(id message.BlockID) (slot.Slot, bool) {
	s, ok := g.target[id]
	return s, ok
}

func (g *fakeGraph) Reprocess(id message.BlockID) BlockState { return g.state[id] }

func (g *fakeGraph) Finality() (map[slot.Slot]message.BlockID, map[slot.Slot]message.BlockID, bool) {
	return g.newFinal, g.candidate, g.candChange
}

func (g *fakeGraph) MetadataFor(id message.BlockID) (BlockMetadata, bool) {
	md, ok := g.metadata[id]
	return md, ok
}

func bid(b byte) message.BlockID {
	var id message.BlockID
	id[0] = b
	return id
}

func TestTickPromotesAndRecordsStats(t *testing.T) {
	b0, b1 := bid(1), bid(2)
	graph := &fakeGraph{
		ready: []message.BlockID{b0, b1},
		target: map[message.BlockID]slot.Slot{
			b0: slot.New(0, 0),
			b1: slot.New(0, 1),
		},
		state: map[message.BlockID]BlockState{
			b0: Active,
			b1: Discarded,
		},
		newFinal:   map[slot.Slot]message.BlockID{},
		candidate:  nil,
		candChange: false,
		metadata:   map[message.BlockID]BlockMetadata{},
	}

	seq := sequencer.New[BlockMetadata](sequencer.DefaultConfig(), slot.New(0, 0))
	ticker := New(DefaultConfig(), graph, seq)

	ticker.Tick(slot.New(0, 1))

	snap := ticker.Stats().Snapshot()
	if snap[0].Produced != 1 {
		t.Fatalf("expected 1 produced on thread 0, got %d", snap[0].Produced)
	}
	if snap[1].Missed != 1 {
		t.Fatalf("expected 1 missed on thread 1, got %d", snap[1].Missed)
	}
}

func TestTickEmitsNewMetadataOnceToSequencer(t *testing.T) {
	b0 := bid(3)
	graph := &fakeGraph{
		newFinal:   map[slot.Slot]message.BlockID{slot.New(0, 0): b0},
		candidate:  nil,
		candChange: false,
		metadata: map[message.BlockID]BlockMetadata{
			b0: {Size: 42},
		},
	}

	seq := sequencer.New[BlockMetadata](sequencer.DefaultConfig(), slot.New(0, 0))
	ticker := New(DefaultConfig(), graph, seq)

	ticker.Tick(slot.New(0, 0))
	if len(ticker.seen) != 1 {
		t.Fatalf("expected block to be marked seen after first tick, got %d entries", len(ticker.seen))
	}

	// A second tick re-finalizing the same id must not re-fetch metadata
	// (the graph map would panic-equivalent if MetadataFor were called
	// again with a missing entry; here we simply assert idempotency).
	graph.newFinal = map[slot.Slot]message.BlockID{slot.New(0, 0): b0}
	delete(graph.metadata, b0)
	ticker.Tick(slot.New(0, 0))
	if len(ticker.seen) != 1 {
		t.Fatalf("expected seen set to remain size 1 after re-tick, got %d", len(ticker.seen))
	}
}

func TestTickCandidateUnchangedPassesNilBlockclique(t *testing.T) {
	graph := &fakeGraph{
		newFinal:   map[slot.Slot]message.BlockID{},
		candidate:  map[slot.Slot]message.BlockID{slot.New(5, 0): bid(9)},
		candChange: false,
		metadata:   map[message.BlockID]BlockMetadata{},
	}

	seq := sequencer.New[BlockMetadata](sequencer.DefaultConfig(), slot.New(0, 0))
	ticker := New(DefaultConfig(), graph, seq)

	// Must not panic: candChange=false means the candidate map above is
	// never read by the ticker, so its absent metadata is never missed.
	ticker.Tick(slot.New(0, 0))
}
