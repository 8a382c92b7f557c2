package message

import (
	"errors"
	"testing"
)

// id32 derives a deterministic, content-addressed fixture id via the same
// DeriveOperationID/DeriveBlockID Keccak-256 path production code uses,
// rather than an arbitrary byte pattern.
func id32(b byte) [32]byte {
	return deriveID([]byte("message-fixture"), []byte{b})
}

func TestBlockMessageHeaderRoundTrip(t *testing.T) {
	lim := DefaultLimits()
	m := BlockMessage{
		Tag: BlockTagHeader,
		Header: &SignedHeader{
			Slot:          Slot{Period: 7, Thread: 1},
			ParentIDs:     []BlockID{id32(1), id32(2)},
			Denunciations: [][]byte{{0xAA}},
			Signature:     []byte{1, 2, 3},
		},
	}
	encoded, err := EncodeBlockMessage(m, lim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeBlockMessage(encoded, lim)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tag != BlockTagHeader || got.Header == nil {
		t.Fatalf("unexpected decode result: %+v", got)
	}
	if got.Header.Slot != m.Header.Slot {
		t.Errorf("slot mismatch: got %+v want %+v", got.Header.Slot, m.Header.Slot)
	}
	if len(got.Header.ParentIDs) != 2 {
		t.Errorf("expected 2 parents, got %d", len(got.Header.ParentIDs))
	}
}

func TestDataRequestNotFoundOnlyInResponse(t *testing.T) {
	lim := DefaultLimits()
	// DataRequest has no InfoNotFound case. The encoder does not check the
	// info tag, so encoding succeeds and decoding is where it is rejected.
	req := DataRequest{BlockID: id32(1), Info: InfoNotFound}
	m := BlockMessage{Tag: BlockTagDataRequest, DataRequest: &req}
	encoded, err := EncodeBlockMessage(m, lim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeBlockMessage(encoded, lim); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag decoding DataRequest with NotFound info, got %v", err)
	}
}

func TestDataResponseNotFound(t *testing.T) {
	lim := DefaultLimits()
	resp := DataResponse{BlockID: id32(1), Info: InfoNotFound}
	m := BlockMessage{Tag: BlockTagDataResponse, Response: &resp}
	encoded, err := EncodeBlockMessage(m, lim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeBlockMessage(encoded, lim)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Response.Info != InfoNotFound {
		t.Fatalf("expected InfoNotFound, got %v", got.Response.Info)
	}
}

// S6 — Codec round-trip limit: a DataRequest carrying two OperationIDs
// fails to decode with max_operations_per_block=1, and round-trips with
// max_operations_per_block=2.
func TestS6DataRequestOpsLimit(t *testing.T) {
	req := DataRequest{
		BlockID: id32(9),
		Info:    InfoOps,
		OpIDs:   []OperationID{id32(1), id32(2)},
	}
	m := BlockMessage{Tag: BlockTagDataRequest, DataRequest: &req}

	limLoose := DefaultLimits()
	limLoose.MaxOperationsPerBlock = 2
	encoded, err := EncodeBlockMessage(m, limLoose)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	limTight := DefaultLimits()
	limTight.MaxOperationsPerBlock = 1
	if _, err := DecodeBlockMessage(encoded, limTight); !errors.Is(err, ErrTooManyItems) {
		t.Fatalf("expected ErrTooManyItems with max=1, got %v", err)
	}

	got, err := DecodeBlockMessage(encoded, limLoose)
	if err != nil {
		t.Fatalf("decode with max=2: %v", err)
	}
	if len(got.DataRequest.OpIDs) != 2 {
		t.Fatalf("expected 2 op ids, got %d", len(got.DataRequest.OpIDs))
	}
	for i, id := range got.DataRequest.OpIDs {
		if id != req.OpIDs[i] {
			t.Errorf("op id %d mismatch", i)
		}
	}
}

func TestOperationAnnouncementRoundTrip(t *testing.T) {
	lim := DefaultLimits()
	m := OperationMessage{
		Tag: OpTagAnnouncement,
		Prefixes: []OperationPrefix{
			PrefixOf(id32(1), lim.OperationPrefixLength),
			PrefixOf(id32(2), lim.OperationPrefixLength),
		},
	}
	encoded, err := EncodeOperationMessage(m, lim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeOperationMessage(encoded, lim)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Prefixes) != 2 {
		t.Fatalf("expected 2 prefixes, got %d", len(got.Prefixes))
	}
	if !got.Prefixes[0].Equal(m.Prefixes[0]) {
		t.Errorf("prefix 0 mismatch")
	}
}

func TestOperationsMessageRoundTrip(t *testing.T) {
	lim := DefaultLimits()
	m := OperationMessage{
		Tag: OpTagOperations,
		Operations: []SignedOperation{
			{
				ID:           id32(5),
				FunctionName: "transfer",
				Parameters:   []byte{1, 2, 3},
				Datastore:    []DatastoreEntry{{Key: []byte("k"), Value: []byte("v")}},
				Signature:    []byte{9, 9},
			},
		},
	}
	encoded, err := EncodeOperationMessage(m, lim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeOperationMessage(encoded, lim)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Operations) != 1 || got.Operations[0].FunctionName != "transfer" {
		t.Fatalf("unexpected decode result: %+v", got)
	}
}

func TestOperationsMessageExceedsFunctionNameLimit(t *testing.T) {
	lim := DefaultLimits()
	lim.MaxFunctionNameLength = 2
	m := OperationMessage{
		Tag: OpTagOperations,
		Operations: []SignedOperation{
			{ID: id32(1), FunctionName: "too_long"},
		},
	}
	encoded, err := EncodeOperationMessage(m, lim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeOperationMessage(encoded, lim); !errors.Is(err, ErrTooManyItems) {
		t.Fatalf("expected ErrTooManyItems, got %v", err)
	}
}

func TestTrailingBytesRejected(t *testing.T) {
	lim := DefaultLimits()
	m := OperationMessage{Tag: OpTagAnnouncement}
	encoded, err := EncodeOperationMessage(m, lim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	encoded = append(encoded, 0xFF)
	if _, err := DecodeOperationMessage(encoded, lim); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestInvalidTagRejected(t *testing.T) {
	lim := DefaultLimits()
	if _, err := DecodeOperationMessage([]byte{0x7F}, lim); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
}

func TestTruncatedRejected(t *testing.T) {
	lim := DefaultLimits()
	if _, err := DecodeOperationMessage([]byte{}, lim); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
