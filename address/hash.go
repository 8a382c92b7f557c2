package address

import "golang.org/x/crypto/sha3"

// DeriveHash computes the Keccak-256 digest of the concatenation of parts,
// the content-addressing primitive an Address's Hash field is built from.
// Grounded on the teacher's pkg/crypto/keccak.go Keccak256: the same
// sha3.NewLegacyKeccak256 writer-then-Sum pattern, specialized to this
// package's fixed-size [HashLength]byte rather than a []byte return.
func DeriveHash(parts ...[]byte) [HashLength]byte {
	d := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		d.Write(p)
	}
	var out [HashLength]byte
	copy(out[:], d.Sum(nil))
	return out
}
