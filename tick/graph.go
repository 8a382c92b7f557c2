package tick

import (
	"github.com/Roshan0045/massa/address"
	"github.com/Roshan0045/massa/message"
	"github.com/Roshan0045/massa/slot"
)

// BlockState is a block's position in the consensus graph's processing
// pipeline.
type BlockState uint8

const (
	WaitingForSlot BlockState = iota
	WaitingForDependencies
	Active
	Discarded
)

func (s BlockState) String() string {
	switch s {
	case WaitingForSlot:
		return "waiting_for_slot"
	case WaitingForDependencies:
		return "waiting_for_dependencies"
	case Active:
		return "active"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// BlockMetadata is the opaque-to-the-sequencer payload carried alongside a
// block id: a reference-counted handle on the operations the block draws
// from shared storage, plus the creator address used for statistics.
type BlockMetadata struct {
	Creator      address.Address
	OperationIDs []message.OperationID
	Size         int
}

// Graph is the consensus graph's contract with the tick handler (§4.7).
// The finality algorithm itself, and the internal mechanics of block
// (re)processing, are out of this spec's scope — Graph is the seam at
// which a real implementation plugs in.
type Graph interface {
	// ReadyBlocks returns the ids of blocks in WaitingForSlot state whose
	// target slot is now <= current.
	ReadyBlocks(current slot.Slot) []message.BlockID

	// TargetSlot returns the slot a WaitingForSlot block is waiting for.
	TargetSlot(id message.BlockID) (slot.Slot, bool)

	// Reprocess re-processes a block taken out of WaitingForSlot,
	// returning its new state (Active, Discarded, or
	// WaitingForDependencies).
	Reprocess(id message.BlockID) BlockState

	// Finality recomputes finality and the candidate blockclique. It is a
	// pure function over the graph's current state; candidateChanged
	// mirrors the sequencer's "None means unchanged" contract.
	Finality() (newFinalBlocks map[slot.Slot]message.BlockID, candidate map[slot.Slot]message.BlockID, candidateChanged bool)

	// MetadataFor returns the metadata for a block id, used the first
	// time the tick handler sees that id.
	MetadataFor(id message.BlockID) (BlockMetadata, bool)
}
