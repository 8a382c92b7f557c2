package message

import "fmt"

// OperationMessageTag enumerates the operation message sum type (spec
// §4.9).
type OperationMessageTag uint64

const (
	OpTagAnnouncement    OperationMessageTag = 0
	OpTagAskForOperations OperationMessageTag = 1
	OpTagOperations       OperationMessageTag = 2
)

// OperationMessage is the closed sum type over OperationsAnnouncement/
// AskForOperations/Operations.
type OperationMessage struct {
	Tag          OperationMessageTag
	Prefixes     []OperationPrefix // Announcement, AskForOperations
	Operations   []SignedOperation // Operations
}

// EncodeOperationMessage serializes m under the given limits.
func EncodeOperationMessage(m OperationMessage, lim Limits) ([]byte, error) {
	e := newEncoder()
	e.putTag(uint64(m.Tag))
	switch m.Tag {
	case OpTagAnnouncement, OpTagAskForOperations:
		e.putLen(len(m.Prefixes))
		for _, p := range m.Prefixes {
			e.putBytesField(p)
		}
	case OpTagOperations:
		e.putLen(len(m.Operations))
		for _, op := range m.Operations {
			op.encode(e, lim)
		}
	default:
		return nil, fmt.Errorf("%w: operation tag %d", ErrInvalidTag, m.Tag)
	}
	return e.bytes(), nil
}

// DecodeOperationMessage parses an OperationMessage, requiring the input
// to be consumed exactly.
func DecodeOperationMessage(src []byte, lim Limits) (OperationMessage, error) {
	d := newDecoder(src)
	tag, err := d.tag()
	if err != nil {
		return OperationMessage{}, err
	}

	var m OperationMessage
	m.Tag = OperationMessageTag(tag)
	switch m.Tag {
	case OpTagAnnouncement, OpTagAskForOperations:
		n, err := d.length(lim.MaxOperationsPrefixIDs, "operation_message.prefixes")
		if err != nil {
			return OperationMessage{}, err
		}
		m.Prefixes = make([]OperationPrefix, n)
		for i := range m.Prefixes {
			p, err := d.bytesField(IDLength, "operation_message.prefix")
			if err != nil {
				return OperationMessage{}, innerDecodeErr("operation_message.prefix", err)
			}
			m.Prefixes[i] = OperationPrefix(p)
		}
	case OpTagOperations:
		n, err := d.length(lim.MaxOperations, "operation_message.operations")
		if err != nil {
			return OperationMessage{}, err
		}
		m.Operations = make([]SignedOperation, n)
		for i := range m.Operations {
			op, err := decodeSignedOperation(d, lim)
			if err != nil {
				return OperationMessage{}, err
			}
			m.Operations[i] = op
		}
	default:
		return OperationMessage{}, fmt.Errorf("%w: operation tag %d", ErrInvalidTag, tag)
	}

	if err := d.finish(); err != nil {
		return OperationMessage{}, err
	}
	return m, nil
}
