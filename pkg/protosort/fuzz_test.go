package protosort

import (
	"bytes"
	"errors"
	"testing"
)

func FuzzSortCopy(f *testing.F) {
	f.Add([]byte{})
	f.Add(canonicalMessage)
	f.Add(shuffledMessage)
	f.Add([]byte{0x0a, 0x05, 'a'})
	f.Add([]byte{0x81, 0x00, 0x05, 0x10, 0x01})
	f.Fuzz(func(t *testing.T, msg []byte) {
		for _, s := range []*Sorter{New(Options{}), New(Options{VarintOrder: VarintCanonical})} {
			out, err := s.SortCopy(msg)
			if err != nil {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("unexpected error kind: %v", err)
				}
				continue
			}
			if out.Len() != len(msg) {
				t.Fatalf("length changed: %d -> %d", len(msg), out.Len())
			}
			sorted, err := s.CheckSorted(out.Bytes())
			if err != nil || !sorted {
				t.Fatalf("result not canonical: sorted=%v err=%v", sorted, err)
			}
			buf := bytes.Clone(msg)
			if err := s.SortInPlace(buf); err != nil {
				t.Fatalf("in place failed after copy succeeded: %v", err)
			}
			if !bytes.Equal(buf, out.Bytes()) {
				t.Fatalf("in-place and copy results differ")
			}
		}
	})
}
