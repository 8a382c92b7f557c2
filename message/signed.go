package message

// SignedHeader is a block header together with its producer's signature.
// Signature verification is an external collaborator's concern (spec §1:
// "cryptographic primitives ... out of scope"); this codec only
// round-trips the signature bytes.
type SignedHeader struct {
	Slot          Slot
	ParentIDs     []BlockID
	Denunciations [][]byte
	Signature     []byte
}

// Slot is the wire-level slot coordinate carried by headers and
// operations: a thin local mirror of slot.Slot so this package has no
// import-cycle dependency on the sequencer's slot package.
type Slot struct {
	Period uint64
	Thread uint8
}

func (s Slot) encode(e *encoder) {
	e.putUvarint(s.Period)
	e.putRaw([]byte{s.Thread})
}

func decodeSlot(d *decoder) (Slot, error) {
	period, err := d.uvarint("slot.period")
	if err != nil {
		return Slot{}, err
	}
	threadB, err := d.raw(1, "slot.thread")
	if err != nil {
		return Slot{}, err
	}
	return Slot{Period: period, Thread: threadB[0]}, nil
}

func (h SignedHeader) encode(e *encoder, lim Limits) {
	h.Slot.encode(e)
	e.putLen(len(h.ParentIDs))
	for _, p := range h.ParentIDs {
		e.putID32(p)
	}
	e.putLen(len(h.Denunciations))
	for _, den := range h.Denunciations {
		e.putBytesField(den)
	}
	e.putBytesField(h.Signature)
}

func decodeSignedHeader(d *decoder, lim Limits) (SignedHeader, error) {
	var h SignedHeader
	var err error
	h.Slot, err = decodeSlot(d)
	if err != nil {
		return h, innerDecodeErr("header.slot", err)
	}
	nParents, err := d.length(1<<20, "header.parents")
	if err != nil {
		return h, innerDecodeErr("header.parents", err)
	}
	h.ParentIDs = make([]BlockID, nParents)
	for i := range h.ParentIDs {
		id, err := d.id32("header.parent")
		if err != nil {
			return h, innerDecodeErr("header.parent", err)
		}
		h.ParentIDs[i] = BlockID(id)
	}
	nDen, err := d.length(lim.MaxDenunciationsInBlockHeader, "header.denunciations")
	if err != nil {
		return h, err
	}
	h.Denunciations = make([][]byte, nDen)
	for i := range h.Denunciations {
		b, err := d.bytesField(1<<20, "header.denunciation")
		if err != nil {
			return h, innerDecodeErr("header.denunciation", err)
		}
		h.Denunciations[i] = b
	}
	sig, err := d.bytesField(1<<20, "header.signature")
	if err != nil {
		return h, innerDecodeErr("header.signature", err)
	}
	h.Signature = sig
	return h, nil
}

// DatastoreEntry is one key/value pair in a signed operation's datastore
// write set.
type DatastoreEntry struct {
	Key   []byte
	Value []byte
}

// SignedOperation is a smart-contract call operation together with its
// sender's signature.
type SignedOperation struct {
	ID            OperationID
	FunctionName  string
	Parameters    []byte
	Datastore     []DatastoreEntry
	Signature     []byte
}

func (op SignedOperation) encode(e *encoder, lim Limits) {
	e.putID32(op.ID)
	e.putBytesField([]byte(op.FunctionName))
	e.putBytesField(op.Parameters)
	e.putLen(len(op.Datastore))
	for _, kv := range op.Datastore {
		e.putBytesField(kv.Key)
		e.putBytesField(kv.Value)
	}
	e.putBytesField(op.Signature)
}

func decodeSignedOperation(d *decoder, lim Limits) (SignedOperation, error) {
	var op SignedOperation
	id, err := d.id32("operation.id")
	if err != nil {
		return op, innerDecodeErr("operation.id", err)
	}
	op.ID = OperationID(id)

	fn, err := d.bytesField(lim.MaxFunctionNameLength, "operation.function_name")
	if err != nil {
		return op, innerDecodeErr("operation.function_name", err)
	}
	op.FunctionName = string(fn)

	params, err := d.bytesField(lim.MaxParametersSize, "operation.parameters")
	if err != nil {
		return op, innerDecodeErr("operation.parameters", err)
	}
	op.Parameters = params

	nEntries, err := d.length(lim.MaxOpDatastoreEntryCount, "operation.datastore")
	if err != nil {
		return op, err
	}
	op.Datastore = make([]DatastoreEntry, nEntries)
	for i := range op.Datastore {
		key, err := d.bytesField(lim.MaxOpDatastoreKeyLength, "operation.datastore.key")
		if err != nil {
			return op, innerDecodeErr("operation.datastore.key", err)
		}
		val, err := d.bytesField(lim.MaxDatastoreValueLength, "operation.datastore.value")
		if err != nil {
			return op, innerDecodeErr("operation.datastore.value", err)
		}
		op.Datastore[i] = DatastoreEntry{Key: key, Value: val}
	}

	sig, err := d.bytesField(1<<20, "operation.signature")
	if err != nil {
		return op, innerDecodeErr("operation.signature", err)
	}
	op.Signature = sig

	return op, nil
}
