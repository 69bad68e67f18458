package protosort

import (
	"cmp"
	"slices"
)

// Options tune how varints are read while scanning.
type Options struct {
	VarintOrder VarintOrder
	// Lenient accepts a varint that still has its continuation bit set when
	// the message ends, treating it as terminated. Such a field only
	// round-trips while it stays last, so sorted output may not rescan.
	Lenient bool
}

// Sorter canonicalizes messages under a fixed set of Options. A Sorter is
// immutable and safe for concurrent use across different buffers.
type Sorter struct {
	opts Options
}

func New(opts Options) *Sorter {
	return &Sorter{opts: opts}
}

func (s *Sorter) Options() Options {
	return s.opts
}

var defaultSorter = New(Options{})

// Scan splits msg into its top-level field chunks in encounter order.
func (s *Sorter) Scan(msg []byte) ([]Chunk, error) {
	return s.scan(msg)
}

// CheckSorted reports whether msg already has its fields in ascending
// field-number order.
func (s *Sorter) CheckSorted(msg []byte) (bool, error) {
	chunks, err := s.scan(msg)
	if err != nil {
		return false, err
	}
	return IsSorted(chunks), nil
}

// SortCopy returns msg with its fields in canonical order. Already-canonical
// input is returned without copying.
func (s *Sorter) SortCopy(msg []byte) (Buffer, error) {
	chunks, err := s.scan(msg)
	if err != nil {
		return Buffer{}, err
	}
	if IsSorted(chunks) {
		return borrowed(msg), nil
	}
	return owned(reassemble(chunks, msg)), nil
}

// SortInPlace rewrites msg into canonical order. The caller must hold
// exclusive access to msg for the duration of the call.
func (s *Sorter) SortInPlace(msg []byte) error {
	chunks, err := s.scan(msg)
	if err != nil {
		return err
	}
	if IsSorted(chunks) {
		return nil
	}
	copy(msg, reassemble(chunks, msg))
	return nil
}

// IsSorted reports whether chunk ids are non-decreasing.
func IsSorted(chunks []Chunk) bool {
	for i := 1; i < len(chunks); i++ {
		if chunks[i].ID < chunks[i-1].ID {
			return false
		}
	}
	return true
}

// reassemble stable-sorts chunks by id and concatenates their byte ranges.
// Repeated field ids keep their relative order.
func reassemble(chunks []Chunk, msg []byte) []byte {
	slices.SortStableFunc(chunks, func(a, b Chunk) int {
		return cmp.Compare(a.ID, b.ID)
	})
	out := make([]byte, 0, len(msg))
	for _, ck := range chunks {
		out = append(out, msg[ck.Offset:ck.End()]...)
	}
	return out
}

func Scan(msg []byte) ([]Chunk, error) {
	return defaultSorter.Scan(msg)
}

func CheckSorted(msg []byte) (bool, error) {
	return defaultSorter.CheckSorted(msg)
}

func SortCopy(msg []byte) (Buffer, error) {
	return defaultSorter.SortCopy(msg)
}

func SortInPlace(msg []byte) error {
	return defaultSorter.SortInPlace(msg)
}
