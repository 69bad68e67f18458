package protosort

import "bytes"

// Buffer is the result of SortCopy. It either aliases the caller's message
// (already canonical, nothing copied) or owns a freshly built one.
type Buffer struct {
	data  []byte
	owned bool
}

func borrowed(data []byte) Buffer {
	return Buffer{data: data}
}

func owned(data []byte) Buffer {
	return Buffer{data: data, owned: true}
}

// Bytes returns the canonical message. When Owned reports false the slice
// shares storage with the input and must be treated as read-only.
func (b Buffer) Bytes() []byte {
	return b.data
}

// Owned reports whether the buffer was allocated by SortCopy.
func (b Buffer) Owned() bool {
	return b.owned
}

func (b Buffer) Len() int {
	return len(b.data)
}

// Writable returns bytes the caller may modify, copying only when the
// buffer aliases the input.
func (b Buffer) Writable() []byte {
	if b.owned {
		return b.data
	}
	return bytes.Clone(b.data)
}
