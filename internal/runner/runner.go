package runner

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/pbsort/internal/digest"
	"github.com/danmuck/pbsort/internal/observability"
	"github.com/danmuck/pbsort/internal/protocol/frame"
	"github.com/danmuck/pbsort/internal/report"
	"github.com/danmuck/pbsort/pkg/protosort"
	"github.com/rs/zerolog/log"
)

// Op is the operation applied to each message.
type Op string

const (
	OpCheck   Op = "check"
	OpSort    Op = "sort"
	OpHash    Op = "hash"
	OpInspect Op = "inspect"
)

func ParseOp(raw string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(raw))); op {
	case OpCheck, OpSort, OpHash, OpInspect:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation: %q", raw)
	}
}

type Config struct {
	Op           Op
	Sorter       *protosort.Sorter
	Framing      frame.Mode
	Limits       frame.Limits
	ReportFormat report.Format
}

// Summary counts what a run saw.
type Summary struct {
	Messages  int
	Unsorted  int
	Reordered int
	Bytes     int64
}

// MessageError ties a failure to the stream position of its message.
type MessageError struct {
	Index int
	Err   error
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("message %d: %v", e.Index, e.Err)
}

func (e *MessageError) Unwrap() error {
	return e.Err
}

type Runner struct {
	cfg Config
}

func New(cfg Config) *Runner {
	if cfg.Sorter == nil {
		cfg.Sorter = protosort.New(protosort.Options{})
	}
	if cfg.Limits.MaxMessageBytes == 0 {
		cfg.Limits = frame.DefaultLimits()
	}
	return &Runner{cfg: cfg}
}

// Run reads every message from in and writes the operation's output to out:
//   - check: one "<index>\tsorted|unsorted" line per message
//   - sort: the canonical messages, framed like the input
//   - hash: one hex digest line per message
//   - inspect: one report record per message
func (r *Runner) Run(in io.Reader, out io.Writer) (Summary, error) {
	var sum Summary
	fr := frame.NewReader(in, r.cfg.Framing, r.cfg.Limits)
	fw := frame.NewWriter(out, r.cfg.Framing, r.cfg.Limits)
	enc := report.NewEncoder(out, r.cfg.ReportFormat)

	for index := 0; ; index++ {
		msg, err := fr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, &MessageError{Index: index, Err: err}
		}

		start := time.Now()
		outcome, fields, err := r.process(index, msg, out, fw, enc)
		if err != nil {
			observability.RecordFailure(string(r.cfg.Op), len(msg))
			log.Debug().
				Str("op", string(r.cfg.Op)).
				Int("index", index).
				Int("size", len(msg)).
				Err(err).
				Msg("runner.Run message failed")
			return sum, &MessageError{Index: index, Err: err}
		}
		observability.RecordMessage(string(r.cfg.Op), outcome, len(msg), fields, time.Since(start))
		log.Debug().
			Str("op", string(r.cfg.Op)).
			Int("index", index).
			Int("size", len(msg)).
			Int("fields", fields).
			Str("outcome", outcome).
			Msg("runner.Run message")

		sum.Messages++
		sum.Bytes += int64(len(msg))
		switch outcome {
		case observability.OutcomeUnsorted:
			sum.Unsorted++
		case observability.OutcomeReordered:
			sum.Reordered++
		}
	}

	log.Info().
		Str("op", string(r.cfg.Op)).
		Str("framing", r.cfg.Framing.String()).
		Int("messages", sum.Messages).
		Int("unsorted", sum.Unsorted).
		Int("reordered", sum.Reordered).
		Int64("bytes", sum.Bytes).
		Msg("runner.Run complete")
	return sum, nil
}

func (r *Runner) process(index int, msg []byte, out io.Writer, fw *frame.Writer, enc *report.Encoder) (string, int, error) {
	s := r.cfg.Sorter
	switch r.cfg.Op {
	case OpCheck:
		chunks, err := s.Scan(msg)
		if err != nil {
			return "", 0, err
		}
		outcome := observability.OutcomeSorted
		if !protosort.IsSorted(chunks) {
			outcome = observability.OutcomeUnsorted
		}
		if _, err := fmt.Fprintf(out, "%d\t%s\n", index, outcome); err != nil {
			return "", 0, err
		}
		return outcome, len(chunks), nil

	case OpSort:
		chunks, err := s.Scan(msg)
		if err != nil {
			return "", 0, err
		}
		outcome := observability.OutcomeSorted
		if !protosort.IsSorted(chunks) {
			// msg was allocated by the frame reader; nothing else holds it.
			if err := s.SortInPlace(msg); err != nil {
				return "", 0, err
			}
			outcome = observability.OutcomeReordered
		}
		if err := fw.WriteMessage(msg); err != nil {
			return "", 0, err
		}
		return outcome, len(chunks), nil

	case OpHash:
		chunks, err := s.Scan(msg)
		if err != nil {
			return "", 0, err
		}
		buf, err := s.SortCopy(msg)
		if err != nil {
			return "", 0, err
		}
		outcome := observability.OutcomeSorted
		if buf.Owned() {
			outcome = observability.OutcomeUnsorted
		}
		if _, err := fmt.Fprintf(out, "%s\n", digest.Sum(buf.Bytes())); err != nil {
			return "", 0, err
		}
		return outcome, len(chunks), nil

	case OpInspect:
		chunks, err := s.Scan(msg)
		if err != nil {
			return "", 0, err
		}
		d, err := digest.Message(s, msg)
		if err != nil {
			return "", 0, err
		}
		rep := report.Build(index, msg, chunks, d)
		if err := enc.Encode(rep); err != nil {
			return "", 0, err
		}
		outcome := observability.OutcomeSorted
		if !rep.Sorted {
			outcome = observability.OutcomeUnsorted
		}
		return outcome, len(chunks), nil

	default:
		return "", 0, fmt.Errorf("unknown operation: %q", r.cfg.Op)
	}
}
