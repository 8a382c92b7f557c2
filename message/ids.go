// Package message implements the wire codec for block and operation
// exchange messages: a tagged sum over {Header, DataRequest,
// DataResponse} for blocks and {OperationsAnnouncement, AskForOperations,
// Operations} for operations, with deterministic length-delimited framing
// bounded by configurable limits.
//
// Grounded on the teacher's p2p/reqresp_protocol.go (method/response-code
// enums, sentinel errors) and p2p/rlpx_frame_codec.go (varint length
// framing via encoding/binary.Uvarint).
package message

import "encoding/hex"

// IDLength is the size in bytes of a content-addressed block or operation
// identifier.
const IDLength = 32

// BlockID is a 32-byte content-addressed block identifier.
type BlockID [IDLength]byte

// String renders the identifier as a hex string.
func (id BlockID) String() string { return hex.EncodeToString(id[:]) }

// OperationID is a 32-byte content-addressed operation identifier.
type OperationID [IDLength]byte

// String renders the identifier as a hex string.
func (id OperationID) String() string { return hex.EncodeToString(id[:]) }

// OperationPrefix is a configurable-length prefix of an OperationID used
// for compact announcements.
type OperationPrefix []byte

// PrefixOf truncates an OperationID to the configured prefix length.
func PrefixOf(id OperationID, length int) OperationPrefix {
	if length > IDLength {
		length = IDLength
	}
	if length < 0 {
		length = 0
	}
	p := make(OperationPrefix, length)
	copy(p, id[:length])
	return p
}

// Equal reports whether two prefixes hold the same bytes.
func (p OperationPrefix) Equal(other OperationPrefix) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the prefix as a hex string.
func (p OperationPrefix) String() string { return hex.EncodeToString(p) }
