package node

import (
	"sync"
	"testing"
	"time"

	"github.com/Roshan0045/massa/message"
	"github.com/Roshan0045/massa/propagation"
	"github.com/Roshan0045/massa/sequencer"
	"github.com/Roshan0045/massa/slot"
	"github.com/Roshan0045/massa/tick"
)

type noopGraph struct{}

func (noopGraph) ReadyBlocks(slot.Slot) []message.BlockID           { return nil }
func (noopGraph) TargetSlot(message.BlockID) (slot.Slot, bool)      { return slot.Slot{}, false }
func (noopGraph) Reprocess(message.BlockID) tick.BlockState         { return tick.Discarded }
func (noopGraph) MetadataFor(message.BlockID) (tick.BlockMetadata, bool) {
	return tick.BlockMetadata{}, false
}
func (noopGraph) Finality() (map[slot.Slot]message.BlockID, map[slot.Slot]message.BlockID, bool) {
	return map[slot.Slot]message.BlockID{}, nil, false
}

type noopSender struct{}

func (noopSender) SendAnnouncement(propagation.PeerID, []message.OperationPrefix) error { return nil }

type recordingExecutor struct {
	mu    sync.Mutex
	calls int
}

func (e *recordingExecutor) Execute(isFinal bool, sl slot.Slot, content *sequencer.Content[tick.BlockMetadata]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func TestNodeStartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThreadCount = 2
	cfg.T0 = 20 * time.Millisecond
	cfg.GenesisTimestamp = time.Now()
	cfg.PropagationFlushInterval = 5 * time.Millisecond

	exec := &recordingExecutor{}
	n := New(cfg, noopGraph{}, noopSender{}, propagation.NewMapStorage(), exec, slot.New(0, 0))

	if err := n.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := n.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if exec.count() == 0 {
		t.Fatal("expected at least one dispatched slot during the run")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	bad := cfg
	bad.ThreadCount = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for zero thread count")
	}
}
