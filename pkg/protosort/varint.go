package protosort

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// maxVarintLen bounds how many bytes a single varint may occupy.
const maxVarintLen = 10

// VarintOrder selects how 7-bit varint groups are combined.
type VarintOrder uint8

const (
	// VarintLegacy accumulates groups most-significant first
	// (value = value<<7 | group). This is the order historical canonical
	// encodings were produced with and is the default.
	VarintLegacy VarintOrder = iota
	// VarintCanonical accumulates groups least-significant first, as the
	// protobuf wire format defines.
	VarintCanonical
)

func (o VarintOrder) String() string {
	switch o {
	case VarintLegacy:
		return "legacy"
	case VarintCanonical:
		return "canonical"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// ParseVarintOrder parses "legacy" or "canonical". Empty selects legacy.
func ParseVarintOrder(raw string) (VarintOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "legacy":
		return VarintLegacy, nil
	case "canonical":
		return VarintCanonical, nil
	default:
		return 0, fmt.Errorf("protosort: unknown varint order: %q", raw)
	}
}

// readVarint decodes one varint from the front of b and returns its value
// and the number of bytes consumed.
func readVarint(b []byte, order VarintOrder, lenient bool) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrEmptyVarint
	}
	if order == VarintCanonical {
		return readCanonicalVarint(b, lenient)
	}
	var v uint64
	for i, c := range b {
		if i == maxVarintLen || v > math.MaxUint64>>7 {
			return 0, 0, ErrVarintOverflow
		}
		v = v<<7 | uint64(c&0x7f)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	if lenient {
		return v, len(b), nil
	}
	return 0, 0, ErrTruncatedVarint
}

func readCanonicalVarint(b []byte, lenient bool) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		return v, n, nil
	}
	if !errors.Is(protowire.ParseError(n), io.ErrUnexpectedEOF) {
		return 0, 0, ErrVarintOverflow
	}
	if !lenient {
		return 0, 0, ErrTruncatedVarint
	}
	// protowire reports overflow before truncation, so b is shorter than
	// maxVarintLen here.
	v = 0
	for i, c := range b {
		v |= uint64(c&0x7f) << (7 * uint(i))
	}
	return v, len(b), nil
}
