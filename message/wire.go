package message

import (
	"encoding/binary"
	"fmt"
)

// encoder accumulates a length-delimited wire payload. Mirrors the
// teacher's varint-prefixed framing (p2p/rlpx_frame_codec.go), generalized
// from a single frame length to arbitrary tags/lengths/ids.
type encoder struct {
	buf []byte
}

func newEncoder() *encoder { return &encoder{buf: make([]byte, 0, 64)} }

func (e *encoder) bytes() []byte { return e.buf }

func (e *encoder) putUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	e.buf = append(e.buf, tmp[:n]...)
}

func (e *encoder) putTag(tag uint64)    { e.putUvarint(tag) }
func (e *encoder) putLen(length int)    { e.putUvarint(uint64(length)) }
func (e *encoder) putRaw(b []byte)      { e.buf = append(e.buf, b...) }
func (e *encoder) putID32(id [32]byte)  { e.buf = append(e.buf, id[:]...) }
func (e *encoder) putBytesField(b []byte) {
	e.putLen(len(b))
	e.putRaw(b)
}

// decoder consumes a length-delimited wire payload, tracking how much has
// been read so the top-level caller can enforce "no trailing bytes".
type decoder struct {
	src []byte
	pos int
}

func newDecoder(src []byte) *decoder { return &decoder{src: src} }

func (d *decoder) remaining() []byte { return d.src[d.pos:] }

func (d *decoder) uvarint(field string) (uint64, error) {
	v, n := binary.Uvarint(d.remaining())
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrTruncated, field)
	}
	d.pos += n
	return v, nil
}

func (d *decoder) tag() (uint64, error) { return d.uvarint("tag") }

func (d *decoder) length(max int, field string) (int, error) {
	v, err := d.uvarint(field + " length")
	if err != nil {
		return 0, err
	}
	if v > uint64(max) {
		return 0, fmt.Errorf("%w: %s has %d items, max %d", ErrTooManyItems, field, v, max)
	}
	return int(v), nil
}

func (d *decoder) raw(n int, field string) ([]byte, error) {
	if n < 0 || len(d.remaining()) < n {
		return nil, fmt.Errorf("%w: %s", ErrTruncated, field)
	}
	b := d.remaining()[:n]
	d.pos += n
	return b, nil
}

func (d *decoder) id32(field string) ([32]byte, error) {
	var out [32]byte
	b, err := d.raw(32, field)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func (d *decoder) bytesField(max int, field string) ([]byte, error) {
	n, err := d.length(max, field)
	if err != nil {
		return nil, err
	}
	b, err := d.raw(n, field)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// finish asserts the decoder consumed the whole input.
func (d *decoder) finish() error {
	if d.pos != len(d.src) {
		return ErrTrailingBytes
	}
	return nil
}
