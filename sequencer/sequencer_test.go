package sequencer

import (
	"testing"
	"time"

	"github.com/Roshan0045/massa/message"
	"github.com/Roshan0045/massa/slot"
)

func bid(b byte) message.BlockID {
	var id message.BlockID
	id[0] = b
	return id
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func baseConfig(now time.Time) Config {
	return Config{
		ThreadCount:      2,
		T0:               time.Second,
		GenesisTimestamp: time.Time{},
		CursorDelay:      0,
		LastStartPeriod:  0,
		Now:              fixedNow(now),
	}
}

// TestS1BootstrapThenTick exercises scenario S1: bootstrapping from three
// newly-final blocks at t=1.0s leaves (0,0) and (0,1) execution-final
// (they precede final_cursor=(0,1)) while (1,0) is only consensus-final,
// and the candidate dispatch branch is immediately ready since the clock
// has already advanced past it.
func TestS1BootstrapThenTick(t *testing.T) {
	genesis := time.Time{}
	cfg := baseConfig(genesis.Add(time.Second))
	finalCursor := slot.New(0, 1)
	seq := New[string](cfg, finalCursor)

	b0, b1, b2 := bid(1), bid(2), bid(3)
	newFinal := map[slot.Slot]message.BlockID{
		slot.New(0, 0): b0,
		slot.New(0, 1): b1,
		slot.New(1, 0): b2,
	}
	metadata := map[message.BlockID]string{b0: "m0", b1: "m1", b2: "m2"}

	seq.Update(newFinal, nil, metadata)

	info00, ok := seq.lookup(slot.New(0, 0))
	if !ok || info00.Content == nil || info00.Content.BlockID != b0 || !info00.ExecutionFinal {
		t.Fatalf("(0,0): expected execution-final content=%s, got %+v", b0, info00)
	}
	info01, ok := seq.lookup(slot.New(0, 1))
	if !ok || info01.Content == nil || info01.Content.BlockID != b1 || !info01.ExecutionFinal {
		t.Fatalf("(0,1): expected execution-final content=%s, got %+v", b1, info01)
	}
	info10, ok := seq.lookup(slot.New(1, 0))
	if !ok || info10.Content == nil || info10.Content.BlockID != b2 {
		t.Fatalf("(1,0): expected content=%s, got %+v", b2, info10)
	}
	if !info10.ConsensusFinal || info10.ExecutionFinal {
		t.Fatalf("(1,0): expected consensus_final=true, execution_final=false, got %+v", info10)
	}

	if len(newFinal) != 0 || len(metadata) != 0 {
		t.Fatalf("expected new_final_blocks/new_metadata fully consumed, got %d/%d left", len(newFinal), len(metadata))
	}

	if !seq.IsTaskAvailable() {
		t.Fatalf("expected a task available once the clock has reached the first un-dispatched slot")
	}
}

// TestS4CrossThreadFinalityHorizon exercises scenario S4: slot (1,0) is
// not at or before its own thread's watermark (0,0), but a full round
// (thread_count=2) has elapsed since it according to thread 1's watermark
// (3,1) — slots_since((1,0),(3,1)) = 5 >= 2 — so it becomes consensus-final
// purely through the cross-thread rule, with no direct evidence for
// (1,0) itself.
func TestS4CrossThreadFinalityHorizon(t *testing.T) {
	genesis := time.Time{}
	cfg := baseConfig(genesis.Add(4 * time.Second))
	seq := New[string](cfg, slot.New(0, 0))

	b0 := bid(1)
	seq.Update(map[slot.Slot]message.BlockID{slot.New(0, 0): b0}, nil, map[message.BlockID]string{b0: "m0"})

	before, ok := seq.lookup(slot.New(1, 0))
	if !ok || before.ConsensusFinal {
		t.Fatalf("expected (1,0) non-final before the horizon update, got %+v", before)
	}

	b1 := bid(2)
	seq.Update(map[slot.Slot]message.BlockID{slot.New(3, 1): b1}, nil, map[message.BlockID]string{b1: "m1"})

	after, ok := seq.lookup(slot.New(1, 0))
	if !ok {
		t.Fatalf("expected (1,0) still present after the rebuild")
	}
	if !after.ConsensusFinal {
		t.Fatalf("expected (1,0) consensus-final via the cross-thread horizon, got %+v", after)
	}
	if after.Content != nil {
		t.Fatalf("expected (1,0) to remain a finalized miss (no direct block evidence), got %+v", after.Content)
	}
}

// TestFinalSlotNeverRewritten exercises invariant 2: resupplying an
// already-final slot's block id is a no-op — no history rewrite, no
// overwrite, no candidate-cursor disturbance.
func TestFinalSlotNeverRewritten(t *testing.T) {
	genesis := time.Time{}
	cfg := baseConfig(genesis.Add(time.Second))
	seq := New[string](cfg, slot.New(0, 0))

	b0 := bid(1)
	seq.Update(map[slot.Slot]message.BlockID{slot.New(0, 0): b0}, nil, map[message.BlockID]string{b0: "m0"})

	before, _ := seq.lookup(slot.New(0, 0))
	beforeCandidate := seq.LatestExecutedCandidateSlot()

	// Resupply the same final block id again with fresh metadata; it must
	// not be consumed (the slot already has its metadata) and the content
	// pointer must be unchanged (recycled, not replaced).
	seq.Update(map[slot.Slot]message.BlockID{slot.New(0, 0): b0}, nil, map[message.BlockID]string{})

	after, _ := seq.lookup(slot.New(0, 0))
	if after.Content != before.Content {
		t.Fatalf("expected content to be recycled (same pointer), got different: before=%v after=%v", before.Content, after.Content)
	}
	if seq.LatestExecutedCandidateSlot() != beforeCandidate {
		t.Fatalf("expected no candidate cursor disturbance, got %s (was %s)", seq.LatestExecutedCandidateSlot(), beforeCandidate)
	}
}

// TestCandidateRewriteRollsBackCursor exercises invariant 3 and the
// history-rewrite mechanics of scenarios S2/S3: when a non-final slot's
// candidate content changes after it has already been dispatched for
// execution, the candidate cursor is rewound to exactly prev(slot).
func TestCandidateRewriteRollsBackCursor(t *testing.T) {
	genesis := time.Time{}
	cfg := baseConfig(genesis.Add(3 * time.Second))
	seq := New[string](cfg, slot.New(0, 0))

	b0 := bid(1)
	seq.Update(map[slot.Slot]message.BlockID{slot.New(0, 0): b0}, nil, map[message.BlockID]string{b0: "m0"})

	bp := bid(2)
	seq.Update(nil, map[slot.Slot]message.BlockID{slot.New(2, 0): bp}, map[message.BlockID]string{bp: "mp"})

	// Drive the candidate cursor past (2,0) by repeated dispatch.
	for i := 0; i < 5; i++ {
		_, ok := RunTaskWith(seq, func(isFinal bool, sl slot.Slot, c *Content[string]) struct{} { return struct{}{} })
		if !ok {
			t.Fatalf("dispatch %d: expected a task to be available", i)
		}
	}
	if got, want := seq.LatestExecutedCandidateSlot(), slot.New(2, 1); got != want {
		t.Fatalf("expected candidate cursor at %s after priming, got %s", want, got)
	}

	bq := bid(3)
	seq.Update(nil, map[slot.Slot]message.BlockID{slot.New(2, 0): bq}, map[message.BlockID]string{bq: "mq"})

	info, ok := seq.lookup(slot.New(2, 0))
	if !ok || info.Content == nil || info.Content.BlockID != bq {
		t.Fatalf("expected (2,0) content replaced with %s, got %+v", bq, info)
	}
	if want := slot.New(1, 1); seq.LatestExecutedCandidateSlot() != want {
		t.Fatalf("expected candidate cursor rolled back to %s, got %s", want, seq.LatestExecutedCandidateSlot())
	}
}

// TestS5DispatchPriority exercises scenario S5: given a ready final slot
// and a ready candidate slot further ahead, run_task_with always prefers
// final, and the candidate cursor clamp is a no-op when it is already
// ahead of the dispatched final slot.
func TestS5DispatchPriority(t *testing.T) {
	genesis := time.Time{}
	cfg := baseConfig(genesis.Add(7500 * time.Millisecond))
	seq := &Sequencer[string]{
		cfg:                       cfg,
		clock:                     slot.NewClock(cfg.GenesisTimestamp, cfg.T0, cfg.ThreadCount),
		hasConsensusFinal:         make([]bool, cfg.ThreadCount),
		latestConsensusFinalSlots: make([]slot.Slot, cfg.ThreadCount),
		hasSequence:               true,
		front:                     slot.New(5, 0),
		deque: []SlotInfo[string]{
			{Slot: slot.New(5, 0), ConsensusFinal: true, ExecutionFinal: true},
			{Slot: slot.New(5, 1), ConsensusFinal: true, ExecutionFinal: true},
			{Slot: slot.New(6, 0), ConsensusFinal: false, ExecutionFinal: false},
			{Slot: slot.New(6, 1), ConsensusFinal: false, ExecutionFinal: false},
			{Slot: slot.New(7, 0), ConsensusFinal: false, ExecutionFinal: false},
		},
		latestExecutionFinalSlot:    slot.New(5, 0),
		latestExecutedFinalSlot:     slot.New(4, 1),
		latestExecutedCandidateSlot: slot.New(6, 1),
	}

	var gotFinal bool
	var gotSlot slot.Slot
	result, ok := RunTaskWith(seq, func(isFinal bool, sl slot.Slot, c *Content[string]) string {
		gotFinal = isFinal
		gotSlot = sl
		return "dispatched"
	})
	if !ok || result != "dispatched" {
		t.Fatalf("expected a dispatch, got ok=%v result=%q", ok, result)
	}
	if !gotFinal || gotSlot != slot.New(5, 0) {
		t.Fatalf("expected final dispatch at (5,0), got final=%v slot=%s", gotFinal, gotSlot)
	}
	if want := slot.New(5, 0); seq.LatestExecutedFinalSlot() != want {
		t.Fatalf("expected executed-final cursor at %s, got %s", want, seq.LatestExecutedFinalSlot())
	}
	if want := slot.New(6, 1); seq.LatestExecutedCandidateSlot() != want {
		t.Fatalf("expected candidate cursor unchanged at %s, got %s", want, seq.LatestExecutedCandidateSlot())
	}
}

// TestMissingMetadataIsFatal exercises §3/§9: a block id referenced by
// new_final_blocks with no corresponding entry in new_metadata is a
// program-invariant violation, not a recoverable error.
func TestMissingMetadataIsFatal(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for missing metadata")
		}
		if _, ok := r.(*InvariantError); !ok {
			t.Fatalf("expected *InvariantError, got %T: %v", r, r)
		}
	}()

	cfg := baseConfig(time.Time{})
	seq := New[string](cfg, slot.New(0, 0))
	seq.Update(map[slot.Slot]message.BlockID{slot.New(0, 0): bid(1)}, nil, map[message.BlockID]string{})
}

// TestDequeConsecutive exercises the data-model invariant that the deque
// is gap-free under next().
func TestDequeConsecutive(t *testing.T) {
	cfg := baseConfig(time.Time{}.Add(5 * time.Second))
	seq := New[string](cfg, slot.New(0, 0))
	b0 := bid(1)
	seq.Update(map[slot.Slot]message.BlockID{slot.New(0, 0): b0}, nil, map[message.BlockID]string{b0: "m"})

	for i := 1; i < seq.Len(); i++ {
		prevSlot := seq.deque[i-1].Slot
		nxt, err := slot.Next(prevSlot, cfg.ThreadCount)
		if err != nil {
			t.Fatalf("unexpected overflow: %v", err)
		}
		if seq.deque[i].Slot != nxt {
			t.Fatalf("gap in sequence: %s followed by %s", prevSlot, seq.deque[i].Slot)
		}
	}
}

// TestCleanupRetainsLiveCursors exercises invariant 5: cleanup never
// drops a slot at or after any live cursor.
func TestCleanupRetainsLiveCursors(t *testing.T) {
	cfg := baseConfig(time.Time{}.Add(6 * time.Second))
	seq := New[string](cfg, slot.New(0, 0))
	b0 := bid(1)
	seq.Update(map[slot.Slot]message.BlockID{slot.New(0, 0): b0}, nil, map[message.BlockID]string{b0: "m"})

	// Advance the final-dispatch cursor a few times, which triggers
	// cleanup after each final dispatch.
	for i := 0; i < 3; i++ {
		RunTaskWith(seq, func(isFinal bool, sl slot.Slot, c *Content[string]) struct{} { return struct{}{} })
	}

	minUseful := seq.minUsefulSlot()
	if len(seq.deque) > 0 && seq.deque[0].Slot.Before(minUseful) {
		t.Fatalf("cleanup left a slot %s before the minimum useful slot %s", seq.deque[0].Slot, minUseful)
	}
	if seq.front.After(minUseful) {
		t.Fatalf("cleanup dropped the minimum useful slot %s (front is now %s)", minUseful, seq.front)
	}
}
