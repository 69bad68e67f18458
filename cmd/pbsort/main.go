// pbsort canonicalizes serialized protobuf messages by reordering their
// top-level fields into ascending field-number order.
//
// Usage:
//
//	pbsort [flags] check|sort|hash|inspect [input]
//
// Input defaults to stdin. Exit status is 0 on success, 1 when check finds
// an unsorted message, and 2 on any error.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danmuck/pbsort/internal/logging"
	"github.com/danmuck/pbsort/internal/observability"
	"github.com/danmuck/pbsort/internal/protocol/compress"
	"github.com/danmuck/pbsort/internal/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const (
	exitOK       = 0
	exitUnsorted = 1
	exitError    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flagSet := pflag.NewFlagSet("pbsort", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	var opts cliOptions
	opts.addFlags(flagSet)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return exitOK
		}
		return exitError
	}
	if opts.help {
		printHelp(stdout, flagSet)
		return exitOK
	}

	positional := flagSet.Args()
	if len(positional) == 0 || len(positional) > 2 {
		fmt.Fprintln(stderr, "pbsort: expected an operation and at most one input")
		printHelp(stderr, flagSet)
		return exitError
	}
	op, err := runner.ParseOp(positional[0])
	if err != nil {
		fmt.Fprintf(stderr, "pbsort: %v\n", err)
		return exitError
	}
	input := "-"
	if len(positional) == 2 {
		input = positional[1]
	}

	st, err := resolveSettings(flagSet, opts)
	if err != nil {
		fmt.Fprintf(stderr, "pbsort: %v\n", err)
		return exitError
	}
	logging.ConfigureRuntime()
	applyLogLevel(flagSet, opts, st.cfg.LogLevel)

	sum, err := execute(op, input, st, opts, stdin, stdout)
	if st.cfg.MetricsFile != "" {
		if merr := observability.WriteTextfile(st.cfg.MetricsFile); merr != nil {
			log.Warn().Str("path", st.cfg.MetricsFile).Err(merr).Msg("pbsort write metrics failed")
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "pbsort: %v\n", err)
		return exitError
	}
	if op == runner.OpCheck && sum.Unsorted > 0 {
		return exitUnsorted
	}
	return exitOK
}

func execute(op runner.Op, input string, st settings, opts cliOptions, stdin io.Reader, stdout io.Writer) (runner.Summary, error) {
	if opts.inPlace {
		if op != runner.OpSort {
			return runner.Summary{}, fmt.Errorf("--in-place only applies to sort")
		}
		if input == "-" {
			return runner.Summary{}, fmt.Errorf("--in-place needs an input file")
		}
		if opts.output != "" && opts.output != "-" {
			return runner.Summary{}, fmt.Errorf("--in-place and --output are mutually exclusive")
		}
	}

	src := stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return runner.Summary{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = f
	}
	in, codec, err := compress.NewReader(src, st.compression)
	if err != nil {
		return runner.Summary{}, err
	}
	defer in.Close()

	// Only sort emits messages; everything else is text or reports.
	outCodec := compress.CodecNone
	if op == runner.OpSort {
		outCodec = codec
	}

	var dst bytes.Buffer
	out, err := compress.NewWriter(&dst, outCodec)
	if err != nil {
		return runner.Summary{}, err
	}
	r := runner.New(runner.Config{
		Op:           op,
		Sorter:       st.sorter,
		Framing:      st.framing,
		Limits:       st.cfg.Limits(),
		ReportFormat: st.reportFormat,
	})
	sum, runErr := r.Run(in, out)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return sum, runErr
	}

	switch {
	case opts.inPlace:
		return sum, replaceFile(input, dst.Bytes())
	case opts.output != "" && opts.output != "-":
		return sum, os.WriteFile(opts.output, dst.Bytes(), 0o644)
	default:
		_, err := stdout.Write(dst.Bytes())
		return sum, err
	}
}

// replaceFile writes data beside path and renames it over path so readers
// never observe a partially written file.
func replaceFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".pbsort-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: pbsort [flags] check|sort|hash|inspect [input]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  check    report whether each message has canonical field order")
	fmt.Fprintln(w, "  sort     write each message with fields in canonical order")
	fmt.Fprintln(w, "  hash     print the BLAKE3 digest of each canonical message")
	fmt.Fprintln(w, "  inspect  list the top-level fields of each message")
	fmt.Fprintln(w)
	fmt.Fprint(w, flagSet.FlagUsages())
}
