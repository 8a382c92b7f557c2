package sequencer

import (
	"github.com/Roshan0045/massa/message"
	"github.com/Roshan0045/massa/slot"
)

// Update integrates a batch of changes from the consensus collaborator:
// newly-final blocks, the (possibly unchanged — nil means unchanged) new
// blockclique, and metadata for any block id referenced for the first
// time. See §4.2 for the full algorithm.
func (s *Sequencer[M]) Update(newFinalBlocks map[slot.Slot]message.BlockID, newBlockclique map[slot.Slot]message.BlockID, newMetadata map[message.BlockID]M) {
	for sl := range newFinalBlocks {
		s.bumpConsensusFinal(sl)
	}

	if !s.hasSequence {
		if len(newFinalBlocks) == 0 {
			return
		}
		s.bootstrap(newFinalBlocks, newBlockclique, newMetadata)
		s.cleanup()
		return
	}

	s.rebuild(newFinalBlocks, newBlockclique, newMetadata)
	s.cleanup()
}

// bootstrap builds the very first sequence from an empty sequencer.
func (s *Sequencer[M]) bootstrap(newFinalBlocks, newBlockclique map[slot.Slot]message.BlockID, newMetadata map[message.BlockID]M) {
	left, ok := minSlotKey(newFinalBlocks)
	if !ok {
		fatal("bootstrap", "new_final_blocks is empty")
	}
	right := s.bootstrapRight(newBlockclique)

	n, ok := slot.SlotsSince(left, right, s.cfg.ThreadCount)
	if !ok {
		fatal("bootstrap", "right endpoint %s precedes left endpoint %s", right, left)
	}

	deque := make([]SlotInfo[M], 0, n+1)
	cur := left
	for {
		info := SlotInfo[M]{
			Slot:           cur,
			ConsensusFinal: s.isAtOrBeforeThreadWatermark(cur),
			ExecutionFinal: cur.LessOrEqual(s.finalCursor),
		}

		if id, ok := newFinalBlocks[cur]; ok {
			delete(newFinalBlocks, cur)
			info.Content = s.attachMetadata("bootstrap", id, newMetadata)
		} else if newBlockclique != nil {
			if id, ok := newBlockclique[cur]; ok {
				info.Content = s.attachMetadata("bootstrap", id, newMetadata)
			}
		}

		deque = append(deque, info)
		if cur == right {
			break
		}
		nxt, err := slot.Next(cur, s.cfg.ThreadCount)
		if err != nil {
			fatal("bootstrap", "slot arithmetic overflow walking to %s: %v", right, err)
		}
		cur = nxt
	}

	s.front = left
	s.deque = deque
	s.hasSequence = true
}

// bootstrapRight computes max(max(latest_consensus_final_slots),
// max(keys(blockclique ∪ {last_start_period_slot})), time_cursor()).
func (s *Sequencer[M]) bootstrapRight(newBlockclique map[slot.Slot]message.BlockID) slot.Slot {
	right := slot.New(s.cfg.LastStartPeriod, 0)
	if mx, ok := maxSlotKey(newBlockclique); ok && mx.After(right) {
		right = mx
	}
	if mx, ok := s.maxConsensusFinalSlot(); ok && mx.After(right) {
		right = mx
	}
	if tc := s.timeCursor(); tc.After(right) {
		right = tc
	}
	return right
}

// rebuildRight computes max(max(latest_consensus_final_slots),
// max(keys(blockclique or ∅)), current back slot).
func (s *Sequencer[M]) rebuildRight(newBlockclique map[slot.Slot]message.BlockID) slot.Slot {
	right := s.backSlot()
	if mx, ok := maxSlotKey(newBlockclique); ok && mx.After(right) {
		right = mx
	}
	if mx, ok := s.maxConsensusFinalSlot(); ok && mx.After(right) {
		right = mx
	}
	return right
}

// rebuild walks the existing sequence and the two input maps in lockstep,
// replacing it with a freshly built one. §4.2 "Incremental path".
func (s *Sequencer[M]) rebuild(newFinalBlocks, newBlockclique map[slot.Slot]message.BlockID, newMetadata map[message.BlockID]M) {
	left := s.front
	right := s.rebuildRight(newBlockclique)

	n, ok := slot.SlotsSince(left, right, s.cfg.ThreadCount)
	if !ok {
		fatal("rebuild", "right endpoint %s precedes current front %s", right, left)
	}

	blockcliqueUpdated := newBlockclique != nil
	oldDeque := s.deque
	oldIdx := 0

	newDeque := make([]SlotInfo[M], 0, n+1)
	inExecFinality := true

	cur := left
	for {
		var previous *SlotInfo[M]
		if oldIdx < len(oldDeque) {
			cand := oldDeque[oldIdx]
			if cand.Slot != cur {
				fatal("rebuild", "old sequence front %s does not match expected slot %s", cand.Slot, cur)
			}
			previous = &cand
			oldIdx++
		}

		newConsensusFinal := s.computeNewConsensusFinal(cur)

		newFinalID, hasNewFinal := newFinalBlocks[cur]
		if hasNewFinal {
			delete(newFinalBlocks, cur)
		}

		var newCandidateID message.BlockID
		hasNewCandidate := false
		if blockcliqueUpdated {
			newCandidateID, hasNewCandidate = newBlockclique[cur]
			if hasNewCandidate {
				delete(newBlockclique, cur)
			}
		}

		info, overwrites := s.buildStep(cur, previous, newConsensusFinal, hasNewFinal, newFinalID, blockcliqueUpdated, hasNewCandidate, newCandidateID, inExecFinality, newMetadata)

		inExecFinality = inExecFinality && info.ExecutionFinal
		if inExecFinality {
			s.latestExecutionFinalSlot = cur
		}
		if overwrites && cur.LessOrEqual(s.latestExecutedCandidateSlot) {
			prevSlot, err := slot.Prev(cur, s.cfg.ThreadCount)
			if err != nil {
				fatal("rebuild", "cannot roll candidate cursor back before %s: %v", cur, err)
			}
			s.latestExecutedCandidateSlot = prevSlot
		}

		newDeque = append(newDeque, info)
		if cur == right {
			break
		}
		nxt, err := slot.Next(cur, s.cfg.ThreadCount)
		if err != nil {
			fatal("rebuild", "slot arithmetic overflow walking to %s: %v", right, err)
		}
		cur = nxt
	}

	if oldIdx != len(oldDeque) {
		fatal("rebuild", "%d residual entries in old sequence after rebuild", len(oldDeque)-oldIdx)
	}
	if len(newFinalBlocks) != 0 {
		fatal("rebuild", "%d residual entries in new_final_blocks after rebuild", len(newFinalBlocks))
	}
	if blockcliqueUpdated && len(newBlockclique) != 0 {
		fatal("rebuild", "%d residual entries in new_blockclique after rebuild", len(newBlockclique))
	}

	s.front = left
	s.deque = newDeque
}

// buildStep implements the Sequence Build Step, cases 1-6 (§4.2).
func (s *Sequencer[M]) buildStep(
	cur slot.Slot,
	previous *SlotInfo[M],
	newConsensusFinal bool,
	hasNewFinal bool, newFinalID message.BlockID,
	blockcliqueUpdated bool,
	hasNewCandidate bool, newCandidateID message.BlockID,
	inExecFinality bool,
	newMetadata map[message.BlockID]M,
) (SlotInfo[M], bool) {
	if previous != nil && previous.ConsensusFinal {
		// Case 1: already consensus-final, recycle content.
		return SlotInfo[M]{Slot: cur, ConsensusFinal: true, ExecutionFinal: inExecFinality, Content: previous.Content}, false
	}

	if previous != nil {
		if newConsensusFinal {
			// Case 2: becoming final.
			if sameContentID(previous.Content, hasNewFinal, newFinalID) {
				return SlotInfo[M]{Slot: cur, ConsensusFinal: true, ExecutionFinal: inExecFinality, Content: previous.Content}, false
			}
			var content *Content[M]
			if hasNewFinal {
				content = s.attachMetadata("rebuild", newFinalID, newMetadata)
			}
			return SlotInfo[M]{Slot: cur, ConsensusFinal: true, ExecutionFinal: inExecFinality, Content: content}, true
		}
		if !blockcliqueUpdated {
			// Case 3: still not final, blockclique unchanged.
			return *previous, false
		}
		// Case 4: still not final, blockclique updated.
		if sameContentID(previous.Content, hasNewCandidate, newCandidateID) {
			return *previous, false
		}
		var content *Content[M]
		if hasNewCandidate {
			content = s.attachMetadata("rebuild", newCandidateID, newMetadata)
		}
		return SlotInfo[M]{Slot: cur, ConsensusFinal: false, ExecutionFinal: false, Content: content}, true
	}

	if newConsensusFinal {
		// Case 5: no previous, becoming final.
		var content *Content[M]
		if hasNewFinal {
			content = s.attachMetadata("rebuild", newFinalID, newMetadata)
		}
		return SlotInfo[M]{Slot: cur, ConsensusFinal: true, ExecutionFinal: inExecFinality, Content: content}, content != nil
	}

	// Case 6: no previous, not final.
	var content *Content[M]
	if blockcliqueUpdated && hasNewCandidate {
		content = s.attachMetadata("rebuild", newCandidateID, newMetadata)
	}
	return SlotInfo[M]{Slot: cur, ConsensusFinal: false, ExecutionFinal: false, Content: content}, content != nil
}
