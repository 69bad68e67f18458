package compress

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the stream compression wrapped around framed messages.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
	// CodecAuto detects the codec from the stream's magic bytes. Valid
	// for readers only.
	CodecAuto
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	case CodecAuto:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func Parse(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CodecNone, nil
	case "zstd", "zst":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	case "auto":
		return CodecAuto, nil
	default:
		return 0, fmt.Errorf("unknown compression codec: %q", name)
	}
}

// Detect inspects the head of a stream. Streams that carry neither the
// zstd nor the lz4 frame magic are reported as CodecNone.
func Detect(head []byte) Codec {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CodecZstd
	case bytes.HasPrefix(head, lz4Magic):
		return CodecLZ4
	default:
		return CodecNone
	}
}

// NewReader wraps r with a decompressor for codec and returns the codec
// actually used, which differs from the argument only for CodecAuto.
func NewReader(r io.Reader, codec Codec) (io.ReadCloser, Codec, error) {
	if codec == CodecAuto {
		br := bufio.NewReader(r)
		// A short stream yields fewer bytes and an error; Detect handles it.
		head, _ := br.Peek(len(zstdMagic))
		codec = Detect(head)
		r = br
	}
	switch codec {
	case CodecNone:
		return io.NopCloser(r), codec, nil
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, codec, fmt.Errorf("zstd reader: %w", err)
		}
		return dec.IOReadCloser(), codec, nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), codec, nil
	default:
		return nil, codec, fmt.Errorf("unsupported compression codec: %s", codec)
	}
}

// NewWriter wraps w with a compressor for codec. Close must be called to
// flush the compressed frame; it does not close w.
func NewWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression codec for writing: %s", codec)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
