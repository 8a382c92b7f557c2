package sequencer

import (
	"time"

	"github.com/Roshan0045/massa/slot"
)

// IsTaskAvailable reports whether RunTaskWith would dispatch work right
// now. Pure query: final branch takes priority over candidate.
func (s *Sequencer[M]) IsTaskAvailable() bool {
	nextFinal, err := slot.Next(s.latestExecutedFinalSlot, s.cfg.ThreadCount)
	if err != nil {
		fatal("is_task_available", "slot arithmetic overflow: %v", err)
	}
	if info, ok := s.lookup(nextFinal); ok && info.ExecutionFinal {
		return true
	}

	nextCandidate, err := slot.Next(s.latestExecutedCandidateSlot, s.cfg.ThreadCount)
	if err != nil {
		fatal("is_task_available", "slot arithmetic overflow: %v", err)
	}
	return s.timeCursor().GreaterOrEqual(nextCandidate)
}

// RunTaskWith dispatches at most one slot for execution, invoking
// callback and returning its result with ok=true, or returning the zero
// value with ok=false if nothing is ready. This is a free function
// (rather than a method) because Go methods cannot introduce a type
// parameter of their own beyond the receiver's — T is independent of M.
// The callback must not call back into the sequencer.
func RunTaskWith[M any, T any](s *Sequencer[M], callback func(isFinal bool, sl slot.Slot, content *Content[M]) T) (T, bool) {
	var zero T

	nextFinal, err := slot.Next(s.latestExecutedFinalSlot, s.cfg.ThreadCount)
	if err != nil {
		fatal("run_task_with", "slot arithmetic overflow: %v", err)
	}
	if info, ok := s.lookup(nextFinal); ok && info.ExecutionFinal {
		result := callback(true, nextFinal, info.Content)
		s.latestExecutedFinalSlot = nextFinal
		s.latestExecutedCandidateSlot = slot.Max(s.latestExecutedCandidateSlot, s.latestExecutedFinalSlot)
		s.cleanup()
		return result, true
	}

	nextCandidate, err := slot.Next(s.latestExecutedCandidateSlot, s.cfg.ThreadCount)
	if err != nil {
		fatal("run_task_with", "slot arithmetic overflow: %v", err)
	}
	if s.timeCursor().GreaterOrEqual(nextCandidate) {
		var content *Content[M]
		if info, ok := s.lookup(nextCandidate); ok {
			content = info.Content
		}
		result := callback(false, nextCandidate, content)
		s.latestExecutedCandidateSlot = nextCandidate
		return result, true
	}

	return zero, false
}

// GetNextSlotDeadline returns the timestamp at which the next
// time-driven slot becomes eligible for candidate dispatch (§4.6).
func (s *Sequencer[M]) GetNextSlotDeadline() time.Time {
	if !s.hasSequence || len(s.deque) == 0 {
		return s.cfg.now().Add(s.cfg.T0 / time.Duration(s.cfg.ThreadCount))
	}
	nxt, err := slot.Next(s.timeCursor(), s.cfg.ThreadCount)
	if err != nil {
		fatal("get_next_slot_deadline", "slot arithmetic overflow: %v", err)
	}
	return s.clock.TimestampOf(nxt).Add(s.cfg.CursorDelay)
}
