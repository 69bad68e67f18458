package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// Mode selects how messages are delimited in a stream.
type Mode uint8

const (
	// ModeRaw treats the whole stream as one message.
	ModeRaw Mode = iota
	// ModeDelimited prefixes each message with its length as a varint.
	ModeDelimited
)

var (
	ErrMessageTooLarge = errors.New("frame: message too large")
	ErrShortMessage    = errors.New("frame: short message body")
	ErrBadLengthPrefix = errors.New("frame: malformed length prefix")
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeDelimited:
		return "delimited"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "raw":
		return ModeRaw, nil
	case "delimited", "length-delimited":
		return ModeDelimited, nil
	default:
		return 0, fmt.Errorf("frame: unknown framing mode: %q", raw)
	}
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxMessageBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxMessageBytes: 64 * 1024 * 1024,
	}
}

// Reader yields messages from a stream one at a time.
type Reader struct {
	r      *bufio.Reader
	mode   Mode
	limits Limits
	done   bool
}

func NewReader(r io.Reader, mode Mode, limits Limits) *Reader {
	return &Reader{r: bufio.NewReader(r), mode: mode, limits: limits}
}

// Next returns the next message. It returns io.EOF once the stream is
// exhausted. In raw mode exactly one message is returned, possibly empty.
func (fr *Reader) Next() ([]byte, error) {
	if fr.done {
		return nil, io.EOF
	}
	if fr.mode == ModeRaw {
		fr.done = true
		return fr.readRaw()
	}
	return fr.readDelimited()
}

func (fr *Reader) readRaw() ([]byte, error) {
	msg, err := io.ReadAll(io.LimitReader(fr.r, int64(fr.limits.MaxMessageBytes)+1))
	if err != nil {
		return nil, err
	}
	if uint64(len(msg)) > fr.limits.MaxMessageBytes {
		return nil, ErrMessageTooLarge
	}
	return msg, nil
}

func (fr *Reader) readDelimited() ([]byte, error) {
	size, err := binary.ReadUvarint(fr.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			fr.done = true
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadLengthPrefix
		}
		return nil, fmt.Errorf("%w: %v", ErrBadLengthPrefix, err)
	}
	if size > fr.limits.MaxMessageBytes {
		return nil, ErrMessageTooLarge
	}
	msg := make([]byte, size)
	if _, err := io.ReadFull(fr.r, msg); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrShortMessage
		}
		return nil, err
	}
	return msg, nil
}

// ReadAll collects every message of the stream.
func ReadAll(r io.Reader, mode Mode, limits Limits) ([][]byte, error) {
	fr := NewReader(r, mode, limits)
	var out [][]byte
	for {
		msg, err := fr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
}

// Writer emits messages in the configured framing.
type Writer struct {
	w      io.Writer
	mode   Mode
	limits Limits
	prefix []byte
}

func NewWriter(w io.Writer, mode Mode, limits Limits) *Writer {
	return &Writer{w: w, mode: mode, limits: limits}
}

func (fw *Writer) WriteMessage(msg []byte) error {
	if uint64(len(msg)) > fw.limits.MaxMessageBytes {
		return ErrMessageTooLarge
	}
	if fw.mode == ModeDelimited {
		fw.prefix = protowire.AppendVarint(fw.prefix[:0], uint64(len(msg)))
		if _, err := fw.w.Write(fw.prefix); err != nil {
			return err
		}
	}
	if len(msg) == 0 {
		return nil
	}
	_, err := fw.w.Write(msg)
	return err
}
