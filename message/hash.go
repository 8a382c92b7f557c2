package message

import "golang.org/x/crypto/sha3"

// DeriveOperationID computes the Keccak-256 digest of an operation's wire
// payload as its content-addressed OperationID. Grounded on the teacher's
// pkg/crypto/keccak.go Keccak256, the same sha3.NewLegacyKeccak256
// writer-then-Sum pattern used by address.DeriveHash.
func DeriveOperationID(payload []byte) OperationID {
	return OperationID(deriveID(payload))
}

// DeriveBlockID computes the Keccak-256 digest of a block header's wire
// payload as its content-addressed BlockID.
func DeriveBlockID(payload []byte) BlockID {
	return BlockID(deriveID(payload))
}

func deriveID(parts ...[]byte) [IDLength]byte {
	d := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		d.Write(p)
	}
	var out [IDLength]byte
	copy(out[:], d.Sum(nil))
	return out
}
