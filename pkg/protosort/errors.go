package protosort

import (
	"errors"
	"fmt"
)

// ErrParse is the single failure kind surfaced by this package. Every
// error returned by Scan, CheckSorted, SortCopy and SortInPlace matches it
// with errors.Is.
var ErrParse = errors.New("protosort: failed to parse protobuf message")

var (
	ErrEmptyVarint     = fmt.Errorf("%w: empty varint", ErrParse)
	ErrTruncatedVarint = fmt.Errorf("%w: truncated varint", ErrParse)
	ErrVarintOverflow  = fmt.Errorf("%w: varint overflows 64 bits", ErrParse)
	ErrGroupWireType   = fmt.Errorf("%w: group wire type not supported", ErrParse)
	ErrUnknownWireType = fmt.Errorf("%w: unknown wire type", ErrParse)
	ErrLengthOverflow  = fmt.Errorf("%w: declared length too large", ErrParse)
	ErrOutOfBounds     = fmt.Errorf("%w: field extends past end of message", ErrParse)
)

// FieldError reports where in the message scanning stopped.
type FieldError struct {
	Offset int
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v (field at offset %d)", e.Err, e.Offset)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
