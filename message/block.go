package message

import "fmt"

// BlockMessageTag enumerates the block message sum type (spec §4.9).
type BlockMessageTag uint64

const (
	BlockTagHeader      BlockMessageTag = 0
	BlockTagDataRequest  BlockMessageTag = 1
	BlockTagDataResponse BlockMessageTag = 2
)

// DataInfoTag enumerates what a DataRequest asks for / a DataResponse
// carries.
type DataInfoTag uint64

const (
	InfoHeader   DataInfoTag = 0
	InfoOpIDs    DataInfoTag = 1
	InfoOps      DataInfoTag = 2
	InfoNotFound DataInfoTag = 3 // valid only in DataResponse
)

// BlockMessage is the closed sum type over Header/DataRequest/
// DataResponse. Exactly one of the Header/DataRequest/DataResponse
// fields is populated, selected by Tag.
type BlockMessage struct {
	Tag         BlockMessageTag
	Header      *SignedHeader
	DataRequest *DataRequest
	Response    *DataResponse
}

// DataRequest asks a peer for information about a specific block.
type DataRequest struct {
	BlockID BlockID
	Info    DataInfoTag // Header, OpIDs, or Ops
	OpIDs   []OperationID // populated only when Info == InfoOps
}

// DataResponse answers a DataRequest.
type DataResponse struct {
	BlockID BlockID
	Info    DataInfoTag // Header, OpIDs, Ops, or NotFound
	Header  *SignedHeader           // populated when Info == InfoHeader
	OpIDs   []OperationID           // populated when Info == InfoOpIDs
	Ops     []SignedOperation       // populated when Info == InfoOps
}

// EncodeBlockMessage serializes m under the given limits.
func EncodeBlockMessage(m BlockMessage, lim Limits) ([]byte, error) {
	e := newEncoder()
	e.putTag(uint64(m.Tag))
	switch m.Tag {
	case BlockTagHeader:
		if m.Header == nil {
			return nil, fmt.Errorf("message: Header tag requires a header")
		}
		m.Header.encode(e, lim)
	case BlockTagDataRequest:
		if m.DataRequest == nil {
			return nil, fmt.Errorf("message: DataRequest tag requires a request")
		}
		encodeDataRequest(e, *m.DataRequest, lim)
	case BlockTagDataResponse:
		if m.Response == nil {
			return nil, fmt.Errorf("message: DataResponse tag requires a response")
		}
		if err := encodeDataResponse(e, *m.Response, lim); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: block tag %d", ErrInvalidTag, m.Tag)
	}
	return e.bytes(), nil
}

// DecodeBlockMessage parses a BlockMessage, requiring the input to be
// consumed exactly.
func DecodeBlockMessage(src []byte, lim Limits) (BlockMessage, error) {
	d := newDecoder(src)
	tag, err := d.tag()
	if err != nil {
		return BlockMessage{}, err
	}

	var m BlockMessage
	m.Tag = BlockMessageTag(tag)
	switch m.Tag {
	case BlockTagHeader:
		h, err := decodeSignedHeader(d, lim)
		if err != nil {
			return BlockMessage{}, err
		}
		m.Header = &h
	case BlockTagDataRequest:
		req, err := decodeDataRequest(d, lim)
		if err != nil {
			return BlockMessage{}, err
		}
		m.DataRequest = &req
	case BlockTagDataResponse:
		resp, err := decodeDataResponse(d, lim)
		if err != nil {
			return BlockMessage{}, err
		}
		m.Response = &resp
	default:
		return BlockMessage{}, fmt.Errorf("%w: block tag %d", ErrInvalidTag, tag)
	}

	if err := d.finish(); err != nil {
		return BlockMessage{}, err
	}
	return m, nil
}

func encodeDataRequest(e *encoder, r DataRequest, lim Limits) {
	e.putID32(r.BlockID)
	e.putTag(uint64(r.Info))
	if r.Info == InfoOps {
		e.putLen(len(r.OpIDs))
		for _, id := range r.OpIDs {
			e.putID32(id)
		}
	}
}

func decodeDataRequest(d *decoder, lim Limits) (DataRequest, error) {
	var r DataRequest
	id, err := d.id32("data_request.block_id")
	if err != nil {
		return r, err
	}
	r.BlockID = BlockID(id)

	infoTag, err := d.tag()
	if err != nil {
		return r, err
	}
	r.Info = DataInfoTag(infoTag)
	switch r.Info {
	case InfoHeader, InfoOpIDs:
		// no payload
	case InfoOps:
		n, err := d.length(lim.MaxOperationsPerBlock, "data_request.op_ids")
		if err != nil {
			return r, err
		}
		r.OpIDs = make([]OperationID, n)
		for i := range r.OpIDs {
			id, err := d.id32("data_request.op_id")
			if err != nil {
				return r, err
			}
			r.OpIDs[i] = OperationID(id)
		}
	default:
		return r, fmt.Errorf("%w: data_request info tag %d", ErrInvalidTag, infoTag)
	}
	return r, nil
}

func encodeDataResponse(e *encoder, r DataResponse, lim Limits) error {
	e.putID32(r.BlockID)
	e.putTag(uint64(r.Info))
	switch r.Info {
	case InfoHeader:
		if r.Header == nil {
			return fmt.Errorf("message: DataResponse InfoHeader requires a header")
		}
		r.Header.encode(e, lim)
	case InfoOpIDs:
		e.putLen(len(r.OpIDs))
		for _, id := range r.OpIDs {
			e.putID32(id)
		}
	case InfoOps:
		e.putLen(len(r.Ops))
		for _, op := range r.Ops {
			op.encode(e, lim)
		}
	case InfoNotFound:
		// no payload
	default:
		return fmt.Errorf("%w: data_response info tag %d", ErrInvalidTag, r.Info)
	}
	return nil
}

func decodeDataResponse(d *decoder, lim Limits) (DataResponse, error) {
	var r DataResponse
	id, err := d.id32("data_response.block_id")
	if err != nil {
		return r, err
	}
	r.BlockID = BlockID(id)

	infoTag, err := d.tag()
	if err != nil {
		return r, err
	}
	r.Info = DataInfoTag(infoTag)
	switch r.Info {
	case InfoHeader:
		h, err := decodeSignedHeader(d, lim)
		if err != nil {
			return r, err
		}
		r.Header = &h
	case InfoOpIDs:
		n, err := d.length(lim.MaxOperationsPerBlock, "data_response.op_ids")
		if err != nil {
			return r, err
		}
		r.OpIDs = make([]OperationID, n)
		for i := range r.OpIDs {
			id, err := d.id32("data_response.op_id")
			if err != nil {
				return r, err
			}
			r.OpIDs[i] = OperationID(id)
		}
	case InfoOps:
		n, err := d.length(lim.MaxOperationsPerBlock, "data_response.ops")
		if err != nil {
			return r, err
		}
		r.Ops = make([]SignedOperation, n)
		for i := range r.Ops {
			op, err := decodeSignedOperation(d, lim)
			if err != nil {
				return r, err
			}
			r.Ops[i] = op
		}
	case InfoNotFound:
		// no payload
	default:
		return r, fmt.Errorf("%w: data_response info tag %d", ErrInvalidTag, infoTag)
	}
	return r, nil
}
