package compress

import (
	"bytes"
	"io"
	"testing"
)

func TestRoundTripEachCodec(t *testing.T) {
	payload := bytes.Repeat([]byte("\x08\x01\x12\x05hello"), 64)
	for _, codec := range []Codec{CodecNone, CodecZstd, CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, codec)
			if err != nil {
				t.Fatalf("new writer: %v", err)
			}
			if _, err := w.Write(payload); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			r, detected, err := NewReader(bytes.NewReader(buf.Bytes()), CodecAuto)
			if err != nil {
				t.Fatalf("new reader: %v", err)
			}
			defer r.Close()
			if detected != codec {
				t.Fatalf("detected %s, want %s", detected, codec)
			}
			out, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(out, payload) {
				t.Fatalf("payload mismatch after %s round trip", codec)
			}
		})
	}
}

func TestAutoOnShortInputIsNone(t *testing.T) {
	r, codec, err := NewReader(bytes.NewReader([]byte{0x08}), CodecAuto)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	if codec != CodecNone {
		t.Fatalf("expected none, got %s", codec)
	}
	out, _ := io.ReadAll(r)
	if !bytes.Equal(out, []byte{0x08}) {
		t.Fatalf("unexpected bytes: %x", out)
	}
}

func TestNewWriterRejectsAuto(t *testing.T) {
	if _, err := NewWriter(io.Discard, CodecAuto); err == nil {
		t.Fatalf("expected error for auto writer")
	}
}

func TestParse(t *testing.T) {
	for name, want := range map[string]Codec{"": CodecNone, "ZSTD": CodecZstd, "zst": CodecZstd, "lz4": CodecLZ4, "auto": CodecAuto} {
		got, err := Parse(name)
		if err != nil || got != want {
			t.Fatalf("Parse(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := Parse("gzip"); err == nil {
		t.Fatalf("expected error for gzip")
	}
}
