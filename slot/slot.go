// Package slot defines the slot scheduling coordinate used throughout the
// massa node: a (period, thread) pair totally ordered first by period then
// by thread, plus the arithmetic and timestamp conversions the execution
// slot sequencer depends on.
package slot

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned when a Next/Prev step would carry the period
// past the representable range. Per the sequencer's error design this is
// an input-invariant violation and callers should treat it as fatal.
var ErrOverflow = errors.New("slot: period arithmetic overflow")

// Slot is a scheduling coordinate: a period (round number) and a thread
// (one of ThreadCount parallel block-producing lanes within that round).
type Slot struct {
	Period uint64
	Thread uint8
}

// New constructs a Slot.
func New(period uint64, thread uint8) Slot {
	return Slot{Period: period, Thread: thread}
}

// String implements fmt.Stringer.
func (s Slot) String() string {
	return fmt.Sprintf("(%d,%d)", s.Period, s.Thread)
}

// Before reports whether s sorts strictly before other: period first,
// then thread.
func (s Slot) Before(other Slot) bool {
	if s.Period != other.Period {
		return s.Period < other.Period
	}
	return s.Thread < other.Thread
}

// After reports whether s sorts strictly after other.
func (s Slot) After(other Slot) bool {
	return other.Before(s)
}

// Equal reports whether s and other denote the same slot.
func (s Slot) Equal(other Slot) bool {
	return s == other
}

// LessOrEqual reports s <= other under the total order.
func (s Slot) LessOrEqual(other Slot) bool {
	return !s.After(other)
}

// GreaterOrEqual reports s >= other under the total order.
func (s Slot) GreaterOrEqual(other Slot) bool {
	return !s.Before(other)
}

// Max returns the greater of s and other.
func Max(s, other Slot) Slot {
	if s.After(other) {
		return s
	}
	return other
}

// Min returns the lesser of s and other.
func Min(s, other Slot) Slot {
	if s.Before(other) {
		return s
	}
	return other
}

// Next returns the slot immediately following s for the given thread
// count: same period, next thread, or next period's thread 0 once the
// thread count is exhausted.
func Next(s Slot, threadCount uint8) (Slot, error) {
	if threadCount == 0 {
		return Slot{}, fmt.Errorf("slot: thread count must be > 0")
	}
	if s.Thread+1 < threadCount {
		return Slot{Period: s.Period, Thread: s.Thread + 1}, nil
	}
	if s.Period == ^uint64(0) {
		return Slot{}, ErrOverflow
	}
	return Slot{Period: s.Period + 1, Thread: 0}, nil
}

// Prev returns the slot immediately preceding s for the given thread
// count. Returns ErrOverflow for the very first slot (0,0), which has no
// predecessor.
func Prev(s Slot, threadCount uint8) (Slot, error) {
	if threadCount == 0 {
		return Slot{}, fmt.Errorf("slot: thread count must be > 0")
	}
	if s.Thread > 0 {
		return Slot{Period: s.Period, Thread: s.Thread - 1}, nil
	}
	if s.Period == 0 {
		return Slot{}, ErrOverflow
	}
	return Slot{Period: s.Period - 1, Thread: threadCount - 1}, nil
}

// SlotsSince computes how many Next-steps separate since from to (i.e.
// since + n == to), matching the call order of the spec's slots_since(slot,
// s') formula: since is the earlier reference, to is the candidate that may
// have happened n slots later. If to is strictly before since, the
// function returns (0, false): per the spec's open question, that
// underflow is read as "no evidence of finality from this thread", not as
// a wrapped/negative count.
func SlotsSince(since, to Slot, threadCount uint8) (uint64, bool) {
	if threadCount == 0 {
		return 0, false
	}
	if to.Before(since) {
		return 0, false
	}
	periodDelta := to.Period - since.Period
	total := periodDelta*uint64(threadCount) + uint64(to.Thread) - uint64(since.Thread)
	return total, true
}
