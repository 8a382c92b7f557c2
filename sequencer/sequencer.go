// Package sequencer implements the execution slot sequencer: a
// deterministic state machine that reconciles a candidate blockclique and a
// finalized prefix into a single linear sequence of slots for execution,
// rolling back speculative work when the candidate history is rewritten.
//
// Grounded on the teacher's generic lruCache[K,V] (pkg/core/rawdb/
// chaindb.go) for the pattern of a hand-rolled, pointer-bookkept container
// parameterized over a payload type — adapted here from an LRU eviction
// order to a FIFO deque ordered by slot.
package sequencer

import (
	"github.com/Roshan0045/massa/log"
	"github.com/Roshan0045/massa/message"
	"github.com/Roshan0045/massa/slot"
)

// Content is the (block id, metadata) pair carried by a slot that produced
// a block. Metadata is move-only: the build step transfers it out of the
// caller's new_metadata map exactly once and never copies it afterwards.
type Content[M any] struct {
	BlockID  message.BlockID
	Metadata M
}

// SlotInfo is one entry of the sequence: a slot together with its finality
// flags and, if a block was produced there, its content. Content == nil
// denotes a miss, which is semantically distinct from "unknown" — a miss
// slot is still dispatched for execution (for its timer effects).
type SlotInfo[M any] struct {
	Slot           slot.Slot
	ConsensusFinal bool
	ExecutionFinal bool
	Content        *Content[M]
}

// Sequencer is the execution slot sequencer. It is single-owner: Update,
// IsTaskAvailable, RunTaskWith and GetNextSlotDeadline are not reentrant
// and must not be interleaved from more than one goroutine. Callers that
// want concurrent access should serialize through the owning goroutine
// (e.g. a command channel) rather than share the structure.
type Sequencer[M any] struct {
	cfg   Config
	clock *slot.Clock
	log   *log.Logger

	hasSequence bool
	front       slot.Slot
	deque       []SlotInfo[M]

	hasConsensusFinal         []bool
	latestConsensusFinalSlots []slot.Slot

	finalCursor                 slot.Slot
	latestExecutionFinalSlot    slot.Slot
	latestExecutedFinalSlot     slot.Slot
	latestExecutedCandidateSlot slot.Slot
}

// New constructs an empty sequencer. finalCursor seeds all three execution
// cursors to the slot of the most recently executed final block, i.e. it
// bootstraps the sequencer from a prior run's checkpoint.
func New[M any](cfg Config, finalCursor slot.Slot) *Sequencer[M] {
	if cfg.ThreadCount == 0 {
		panic("sequencer: thread count must be > 0")
	}
	return &Sequencer[M]{
		cfg:   cfg,
		clock: slot.NewClock(cfg.GenesisTimestamp, cfg.T0, cfg.ThreadCount),
		log:   log.Default().Module("sequencer"),

		hasConsensusFinal:         make([]bool, cfg.ThreadCount),
		latestConsensusFinalSlots: make([]slot.Slot, cfg.ThreadCount),

		finalCursor:                  finalCursor,
		latestExecutionFinalSlot:     finalCursor,
		latestExecutedFinalSlot:      finalCursor,
		latestExecutedCandidateSlot: finalCursor,
	}
}

// LatestExecutionFinalSlot returns the highest slot known execution-final.
func (s *Sequencer[M]) LatestExecutionFinalSlot() slot.Slot { return s.latestExecutionFinalSlot }

// LatestExecutedFinalSlot returns the highest slot dispatched as final.
func (s *Sequencer[M]) LatestExecutedFinalSlot() slot.Slot { return s.latestExecutedFinalSlot }

// LatestExecutedCandidateSlot returns the highest slot dispatched as
// candidate.
func (s *Sequencer[M]) LatestExecutedCandidateSlot() slot.Slot {
	return s.latestExecutedCandidateSlot
}

// Len reports how many slots are currently held in the sequence.
func (s *Sequencer[M]) Len() int { return len(s.deque) }

// lookup returns the SlotInfo at sl if it is held in the sequence.
func (s *Sequencer[M]) lookup(sl slot.Slot) (*SlotInfo[M], bool) {
	if !s.hasSequence || len(s.deque) == 0 || sl.Before(s.front) {
		return nil, false
	}
	idx, ok := slot.SlotsSince(s.front, sl, s.cfg.ThreadCount)
	if !ok || idx >= uint64(len(s.deque)) {
		return nil, false
	}
	return &s.deque[idx], true
}

// backSlot returns the slot of the last entry of the sequence, or front
// itself if the deque has been cleaned down to nothing.
func (s *Sequencer[M]) backSlot() slot.Slot {
	if len(s.deque) == 0 {
		return s.front
	}
	return s.deque[len(s.deque)-1].Slot
}

func (s *Sequencer[M]) bumpConsensusFinal(sl slot.Slot) {
	t := sl.Thread
	if !s.hasConsensusFinal[t] || s.latestConsensusFinalSlots[t].Before(sl) {
		s.latestConsensusFinalSlots[t] = sl
		s.hasConsensusFinal[t] = true
	}
}

func (s *Sequencer[M]) isAtOrBeforeThreadWatermark(sl slot.Slot) bool {
	t := sl.Thread
	return s.hasConsensusFinal[t] && sl.LessOrEqual(s.latestConsensusFinalSlots[t])
}

// computeNewConsensusFinal implements the §4.2 new_consensus_final
// predicate: true if sl is at or before its own thread's watermark, or if
// a full round has elapsed since sl according to some other thread's
// watermark. Per the spec's open question, slots_since underflow (the
// other thread's watermark is before sl) contributes false, not a
// wrapped/negative count.
func (s *Sequencer[M]) computeNewConsensusFinal(sl slot.Slot) bool {
	if s.isAtOrBeforeThreadWatermark(sl) {
		return true
	}
	for t := 0; t < int(s.cfg.ThreadCount); t++ {
		th := uint8(t)
		if th == sl.Thread || !s.hasConsensusFinal[th] {
			continue
		}
		n, ok := slot.SlotsSince(sl, s.latestConsensusFinalSlots[th], s.cfg.ThreadCount)
		if ok && n >= uint64(s.cfg.ThreadCount) {
			return true
		}
	}
	return false
}

func (s *Sequencer[M]) maxConsensusFinalSlot() (slot.Slot, bool) {
	var best slot.Slot
	found := false
	for t := 0; t < int(s.cfg.ThreadCount); t++ {
		if !s.hasConsensusFinal[t] {
			continue
		}
		sl := s.latestConsensusFinalSlots[t]
		if !found || sl.After(best) {
			best = sl
			found = true
		}
	}
	return best, found
}

func (s *Sequencer[M]) minConsensusFinalSlot() (slot.Slot, bool) {
	var best slot.Slot
	found := false
	for t := 0; t < int(s.cfg.ThreadCount); t++ {
		if !s.hasConsensusFinal[t] {
			continue
		}
		sl := s.latestConsensusFinalSlots[t]
		if !found || sl.Before(best) {
			best = sl
			found = true
		}
	}
	return best, found
}

// attachMetadata moves id's metadata out of newMetadata. A referenced
// block id with no metadata in the same update call is a fatal input
// error (§3, §9).
func (s *Sequencer[M]) attachMetadata(op string, id message.BlockID, newMetadata map[message.BlockID]M) *Content[M] {
	md, ok := newMetadata[id]
	if !ok {
		fatal(op, "missing metadata for block %s", id)
	}
	delete(newMetadata, id)
	return &Content[M]{BlockID: id, Metadata: md}
}

// sameContentID reports whether c (a possibly-nil existing content) and
// the possibly-absent incoming block id denote the same slot content.
// Two misses (c == nil, hasNew == false) compare equal.
func sameContentID[M any](c *Content[M], hasNew bool, newID message.BlockID) bool {
	if c == nil {
		return !hasNew
	}
	if !hasNew {
		return false
	}
	return c.BlockID == newID
}

// timeCursor implements §4.3: the latest slot at (now - cursor_delay), or
// Slot(last_start_period, 0) if that instant precedes genesis.
func (s *Sequencer[M]) timeCursor() slot.Slot {
	now := s.cfg.now()
	sl, ok := s.clock.SlotAt(now.Add(-s.cfg.CursorDelay))
	if !ok {
		return slot.New(s.cfg.LastStartPeriod, 0)
	}
	return sl
}

// cleanup implements §4.5: trims the front of the deque down to the
// oldest cursor still in use.
func (s *Sequencer[M]) cleanup() {
	if !s.hasSequence {
		return
	}
	minUseful := s.minUsefulSlot()
	i := 0
	for i < len(s.deque) && s.deque[i].Slot.Before(minUseful) {
		i++
	}
	s.deque = s.deque[i:]
	if len(s.deque) > 0 {
		s.front = s.deque[0].Slot
	} else {
		s.front = minUseful
	}
}

func (s *Sequencer[M]) minUsefulSlot() slot.Slot {
	result := s.latestExecutionFinalSlot
	if mn, ok := s.minConsensusFinalSlot(); ok {
		result = slot.Min(result, mn)
	}
	result = slot.Min(result, s.latestExecutedFinalSlot)
	result = slot.Min(result, s.latestExecutedCandidateSlot)
	return result
}

func maxSlotKey(m map[slot.Slot]message.BlockID) (slot.Slot, bool) {
	var best slot.Slot
	found := false
	for k := range m {
		if !found || k.After(best) {
			best = k
			found = true
		}
	}
	return best, found
}

func minSlotKey(m map[slot.Slot]message.BlockID) (slot.Slot, bool) {
	var best slot.Slot
	found := false
	for k := range m {
		if !found || k.Before(best) {
			best = k
			found = true
		}
	}
	return best, found
}
