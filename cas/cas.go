// Package cas provides content-addressed hashing for revision texts
// and line-history programs, built on BLAKE3.
package cas

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Digest is a BLAKE3-256 content digest.
type Digest [32]byte

// Sum computes the BLAKE3 digest of data.
func Sum(data []byte) Digest {
	return blake3.Sum256(data)
}

// SumHex computes the BLAKE3 digest of data and returns it as hex.
func SumHex(data []byte) string {
	d := Sum(data)
	return d.Hex()
}

// Hex returns the digest as a hex string.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Chain extends a digest with additional content, producing the digest
// of the combined history. Chaining is order-sensitive: two histories
// yield the same digest only if they append the same content in the
// same order.
func Chain(prev Digest, parts ...[]byte) Digest {
	h := blake3.New(32, nil)
	h.Write(prev[:])
	for _, p := range parts {
		h.Write(p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// SumStrings computes the digest of an ordered sequence of strings.
// Each element is length-prefixed so that ["ab"] and ["a","b"] hash
// differently.
func SumStrings(items []string) Digest {
	h := blake3.New(32, nil)
	var lenBuf [8]byte
	for _, s := range items {
		n := len(s)
		for i := 0; i < 8; i++ {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
