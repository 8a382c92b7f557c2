// Package address implements the two address variants used on the wire
// and in human-readable form: User addresses (externally owned) and SC
// addresses (smart contracts), each a versioned, tagged wrapper over a
// 32-byte hash.
package address

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/btcsuite/btcutil/base58"
)

// HashLength is the fixed size of the address payload hash.
const HashLength = 32

// SupportedVersion is the only address version this codec accepts.
const SupportedVersion = 0

// Variant distinguishes user (externally owned) from smart-contract
// addresses. The wire tag and the human-readable letter both derive from
// this value.
type Variant uint8

const (
	// User identifies an externally-owned account address.
	User Variant = 0
	// SC identifies a smart-contract address.
	SC Variant = 1
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case User:
		return "User"
	case SC:
		return "SC"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// letter returns the human-readable-encoding discriminator character.
func (v Variant) letter() (byte, error) {
	switch v {
	case User:
		return 'U', nil
	case SC:
		return 'S', nil
	default:
		return 0, fmt.Errorf("address: unknown variant %d", uint8(v))
	}
}

func variantFromLetter(b byte) (Variant, error) {
	switch b {
	case 'U':
		return User, nil
	case 'S':
		return SC, nil
	default:
		return 0, fmt.Errorf("%w: unexpected variant letter %q", ErrParse, b)
	}
}

// Address is a tagged, versioned 32-byte content-addressed identifier.
type Address struct {
	Variant Variant
	Version uint64
	Hash    [HashLength]byte
}

// New constructs an Address from its parts.
func New(variant Variant, version uint64, hash [HashLength]byte) Address {
	return Address{Variant: variant, Version: version, Hash: hash}
}

// Errors returned by this package. ErrParse wraps all human-readable
// decode failures so callers can test with errors.Is without matching on
// message text.
var (
	ErrParse          = errors.New("address: parse error")
	ErrTruncated      = errors.New("address: truncated wire payload")
	ErrTrailingBytes  = errors.New("address: trailing bytes after wire payload")
	ErrUnsupportedVer = errors.New("address: unsupported version")
)

// --- Wire encoding ---------------------------------------------------------

// WriteTo appends the wire encoding of a to dst and returns the extended
// slice: varint(variant) || varint(version) || hash[32].
func (a Address) WriteTo(dst []byte) []byte {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(a.Variant))
	dst = append(dst, buf[:n]...)
	n = binary.PutUvarint(buf[:], a.Version)
	dst = append(dst, buf[:n]...)
	dst = append(dst, a.Hash[:]...)
	return dst
}

// Encode returns the wire encoding of a as a freshly allocated slice.
func (a Address) Encode() []byte {
	return a.WriteTo(make([]byte, 0, 2+HashLength))
}

// Decode parses a wire-encoded Address from src, returning the number of
// bytes consumed. It does not require src to contain exactly one address;
// use DecodeExact to additionally reject trailing bytes.
func Decode(src []byte) (Address, int, error) {
	variantTag, n1 := binary.Uvarint(src)
	if n1 <= 0 {
		return Address{}, 0, fmt.Errorf("%w: variant tag", ErrTruncated)
	}
	rest := src[n1:]
	version, n2 := binary.Uvarint(rest)
	if n2 <= 0 {
		return Address{}, 0, fmt.Errorf("%w: version", ErrTruncated)
	}
	rest = rest[n2:]
	if len(rest) < HashLength {
		return Address{}, 0, fmt.Errorf("%w: hash", ErrTruncated)
	}
	var hash [HashLength]byte
	copy(hash[:], rest[:HashLength])

	variant := Variant(variantTag)
	if _, err := variant.letter(); err != nil {
		return Address{}, 0, fmt.Errorf("address: %w", err)
	}

	return Address{Variant: variant, Version: version, Hash: hash}, n1 + n2 + HashLength, nil
}

// DecodeExact parses a wire-encoded Address and requires src to be
// consumed exactly; any remainder is ErrTrailingBytes.
func DecodeExact(src []byte) (Address, error) {
	a, n, err := Decode(src)
	if err != nil {
		return Address{}, err
	}
	if n != len(src) {
		return Address{}, ErrTrailingBytes
	}
	return a, nil
}

// --- Human-readable encoding -------------------------------------------

// String renders the human-readable form: "A" + {"U"|"S"} +
// base58check(varint(version) || hash).
func (a Address) String() string {
	letter, err := a.Variant.letter()
	if err != nil {
		return fmt.Sprintf("<invalid address: %v>", err)
	}
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], a.Version)
	payload := append(append([]byte{}, buf[:n]...), a.Hash[:]...)
	return "A" + string(letter) + checkEncode(payload)
}

// Parse decodes a human-readable address string. Any deviation from the
// grammar ("A" + {"U"|"S"} + base58check(varint(version) || hash[32]))
// is reported as an error wrapping ErrParse.
func Parse(s string) (Address, error) {
	if len(s) < 2 {
		return Address{}, fmt.Errorf("%w: too short", ErrParse)
	}
	if s[0] != 'A' {
		return Address{}, fmt.Errorf("%w: missing 'A' prefix", ErrParse)
	}
	variant, err := variantFromLetter(s[1])
	if err != nil {
		return Address{}, err
	}
	payload, err := checkDecode(s[2:])
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	version, n := binary.Uvarint(payload)
	if n <= 0 {
		return Address{}, fmt.Errorf("%w: malformed version varint", ErrParse)
	}
	if version != SupportedVersion {
		return Address{}, fmt.Errorf("%w: %w: version %d", ErrParse, ErrUnsupportedVer, version)
	}
	rest := payload[n:]
	if len(rest) != HashLength {
		return Address{}, fmt.Errorf("%w: hash must be exactly %d bytes, got %d", ErrParse, HashLength, len(rest))
	}
	var hash [HashLength]byte
	copy(hash[:], rest)
	return Address{Variant: variant, Version: version, Hash: hash}, nil
}

// checkEncode base58-encodes payload with an appended 4-byte double-SHA256
// checksum, the same scheme base58.CheckEncode uses internally but applied
// to an arbitrary-length payload rather than a single version byte.
func checkEncode(payload []byte) string {
	sum := checksum(payload)
	return base58.Encode(append(append([]byte{}, payload...), sum[:]...))
}

func checkDecode(s string) ([]byte, error) {
	decoded := base58.Decode(s)
	if len(decoded) == 0 && s != "" {
		return nil, errors.New("invalid base58 encoding")
	}
	if len(decoded) < 4 {
		return nil, errors.New("payload too short for checksum")
	}
	payload, sum := decoded[:len(decoded)-4], decoded[len(decoded)-4:]
	want := checksum(payload)
	if !bytes.Equal(sum, want[:]) {
		return nil, errors.New("checksum mismatch")
	}
	return payload, nil
}

func checksum(payload []byte) [4]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}

// --- Thread assignment ---------------------------------------------------

// Thread returns the producing thread for a User address: the top
// log2(threadCount) bits of the hash's first byte. Only meaningful for
// Variant == User; SC addresses are not slot-scheduled by this codec.
func (a Address) Thread(threadCount uint8) (uint8, error) {
	if a.Variant != User {
		return 0, fmt.Errorf("address: Thread is only defined for User addresses, got %s", a.Variant)
	}
	if threadCount == 0 || threadCount&(threadCount-1) != 0 {
		return 0, fmt.Errorf("address: thread count must be a power of two, got %d", threadCount)
	}
	bitsNeeded := bits.Len8(threadCount - 1)
	if bitsNeeded == 0 {
		return 0, nil
	}
	return a.Hash[0] >> (8 - bitsNeeded), nil
}
