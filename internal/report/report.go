// Package report renders per-message chunk listings for inspection.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/pbsort/internal/digest"
	"github.com/danmuck/pbsort/pkg/protosort"
	"github.com/fxamacker/cbor/v2"
)

type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("report: unknown format: %q", raw)
	}
}

// Field describes one chunk of a message.
type Field struct {
	Number uint64 `json:"number"`
	Wire   string `json:"wire"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Message is the report for one framed message.
type Message struct {
	Index  int     `json:"index"`
	Size   int     `json:"size"`
	Sorted bool    `json:"sorted"`
	Digest string  `json:"digest"`
	Fields []Field `json:"fields"`
}

// Build assembles a report from a scanned message. chunks must be in
// encounter order.
func Build(index int, msg []byte, chunks []protosort.Chunk, d digest.Digest) Message {
	fields := make([]Field, 0, len(chunks))
	for _, ck := range chunks {
		fields = append(fields, Field{
			Number: ck.ID,
			Wire:   ck.Wire.String(),
			Offset: ck.Offset,
			Length: ck.Length,
		})
	}
	return Message{
		Index:  index,
		Size:   len(msg),
		Sorted: protosort.IsSorted(chunks),
		Digest: d.String(),
		Fields: fields,
	}
}

var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encoder writes reports to a stream, one record per message.
type Encoder struct {
	w      io.Writer
	format Format
	json   *json.Encoder
	cbor   *cbor.Encoder
}

func NewEncoder(w io.Writer, format Format) *Encoder {
	e := &Encoder{w: w, format: format}
	switch format {
	case FormatJSON:
		e.json = json.NewEncoder(w)
	case FormatCBOR:
		e.cbor = cborMode.NewEncoder(w)
	}
	return e
}

func (e *Encoder) Encode(m Message) error {
	switch e.format {
	case FormatJSON:
		return e.json.Encode(m)
	case FormatCBOR:
		return e.cbor.Encode(m)
	case FormatText:
		return writeText(e.w, m)
	default:
		return fmt.Errorf("report: unsupported format: %s", e.format)
	}
}

func writeText(w io.Writer, m Message) error {
	state := "sorted"
	if !m.Sorted {
		state = "unsorted"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "message %d: size=%d fields=%d %s digest=%s\n", m.Index, m.Size, len(m.Fields), state, m.Digest)
	for _, f := range m.Fields {
		fmt.Fprintf(&b, "  field=%d wire=%s offset=%d length=%d\n", f.Number, f.Wire, f.Offset, f.Length)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
