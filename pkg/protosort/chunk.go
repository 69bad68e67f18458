package protosort

import (
	"fmt"
	"math"
)

// WireType is the 3-bit encoding selector carried in every field key.
type WireType uint8

const (
	WireVarint     WireType = 0
	WireFixed64    WireType = 1
	WireBytes      WireType = 2
	WireStartGroup WireType = 3
	WireEndGroup   WireType = 4
	WireFixed32    WireType = 5
)

func (w WireType) String() string {
	switch w {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireBytes:
		return "bytes"
	case WireStartGroup:
		return "start_group"
	case WireEndGroup:
		return "end_group"
	case WireFixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(w))
	}
}

// Chunk is one encoded field entry, key included, located by its byte range
// in the source message. It does not own any bytes.
type Chunk struct {
	ID     uint64
	Wire   WireType
	Offset int
	Length int
}

// End returns the offset one past the last byte of the chunk.
func (c Chunk) End() int {
	return c.Offset + c.Length
}

// scan splits msg into chunks in encounter order. The first malformed field
// aborts the scan; no partial result is returned.
func (s *Sorter) scan(msg []byte) ([]Chunk, error) {
	var chunks []Chunk
	for offset := 0; offset < len(msg); {
		ck, err := s.readField(msg, offset)
		if err != nil {
			return nil, &FieldError{Offset: offset, Err: err}
		}
		chunks = append(chunks, ck)
		offset = ck.End()
	}
	return chunks, nil
}

func (s *Sorter) readField(msg []byte, offset int) (Chunk, error) {
	rest := msg[offset:]
	key, keyLen, err := s.varint(rest)
	if err != nil {
		return Chunk{}, err
	}
	wire := WireType(key & 0x7)
	var payloadLen int
	switch wire {
	case WireVarint:
		_, n, err := s.varint(rest[keyLen:])
		if err != nil {
			return Chunk{}, err
		}
		payloadLen = n
	case WireFixed64:
		payloadLen = 8
	case WireBytes:
		size, n, err := s.varint(rest[keyLen:])
		if err != nil {
			return Chunk{}, err
		}
		if size > uint64(math.MaxInt-n) {
			return Chunk{}, ErrLengthOverflow
		}
		payloadLen = n + int(size)
	case WireStartGroup, WireEndGroup:
		return Chunk{}, ErrGroupWireType
	case WireFixed32:
		payloadLen = 4
	default:
		return Chunk{}, ErrUnknownWireType
	}
	if payloadLen > len(rest)-keyLen {
		return Chunk{}, ErrOutOfBounds
	}
	return Chunk{
		ID:     key >> 3,
		Wire:   wire,
		Offset: offset,
		Length: keyLen + payloadLen,
	}, nil
}

func (s *Sorter) varint(b []byte) (uint64, int, error) {
	return readVarint(b, s.opts.VarintOrder, s.opts.Lenient)
}
