// Package digest computes content hashes of canonical protobuf messages.
//
// Two encodings of the same message that differ only in top-level field
// order hash identically: the message is canonicalized before hashing.
package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/danmuck/pbsort/pkg/protosort"
	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed hash.
type Digest [32]byte

// domainKey separates message digests from any other BLAKE3 use of the same
// bytes. Changing it invalidates every stored digest.
var domainKey = [32]byte{
	'p', 'b', 's', 'o', 'r', 't', '.', 'm', 'e', 's', 's', 'a', 'g', 'e', 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Sum hashes bytes that are already canonical.
func Sum(canonical []byte) Digest {
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(canonical)
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}

// Message canonicalizes msg with s and hashes the result. msg is not
// modified.
func Message(s *protosort.Sorter, msg []byte) (Digest, error) {
	buf, err := s.SortCopy(msg)
	if err != nil {
		return Digest{}, err
	}
	return Sum(buf.Bytes()), nil
}

func (d Digest) String() string {
	return Format(d)
}

// Format returns the lowercase hex encoding used in CLI output and logs.
func Format(d Digest) string {
	return hex.EncodeToString(d[:])
}

func Parse(raw string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return d, fmt.Errorf("parsing message digest: %w", err)
	}
	if len(decoded) != len(d) {
		return d, fmt.Errorf("message digest is %d bytes, want %d", len(decoded), len(d))
	}
	copy(d[:], decoded)
	return d, nil
}
