package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pbsort/internal/protocol/compress"
	"github.com/danmuck/pbsort/internal/protocol/frame"
	"google.golang.org/protobuf/encoding/protowire"
)

func message(order ...protowire.Number) []byte {
	var msg []byte
	for _, num := range order {
		msg = protowire.AppendTag(msg, num, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(num))
	}
	return msg
}

func runCLI(t *testing.T, stdin []byte, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, bytes.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSortFromStdin(t *testing.T) {
	code, out, errOut := runCLI(t, message(3, 1, 2), "sort")
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != string(message(1, 2, 3)) {
		t.Fatalf("unexpected output: %x", out)
	}
}

func TestCheckExitCodes(t *testing.T) {
	if code, out, _ := runCLI(t, message(1, 2), "check"); code != exitOK || out != "0\tsorted\n" {
		t.Fatalf("sorted: exit %d out %q", code, out)
	}
	if code, out, _ := runCLI(t, message(2, 1), "check"); code != exitUnsorted || out != "0\tunsorted\n" {
		t.Fatalf("unsorted: exit %d out %q", code, out)
	}
	code, _, errOut := runCLI(t, []byte{0x0b}, "check")
	if code != exitError || !strings.Contains(errOut, "message 0") {
		t.Fatalf("malformed: exit %d stderr %q", code, errOut)
	}
}

func TestSortInPlaceRewritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.bin")
	if err := os.WriteFile(path, message(9, 4), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if code, _, errOut := runCLI(t, nil, "sort", "--in-place", path); code != exitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, message(4, 9)) {
		t.Fatalf("file not sorted: %x", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode changed: %v", info.Mode().Perm())
	}
}

func TestInPlaceValidation(t *testing.T) {
	if code, _, errOut := runCLI(t, message(1), "check", "--in-place", "x.bin"); code != exitError || !strings.Contains(errOut, "only applies to sort") {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if code, _, errOut := runCLI(t, message(1), "sort", "--in-place"); code != exitError || !strings.Contains(errOut, "needs an input file") {
		t.Fatalf("exit %d: %s", code, errOut)
	}
}

func TestSortKeepsInputCompression(t *testing.T) {
	var in bytes.Buffer
	w, err := compress.NewWriter(&in, compress.CodecZstd)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	fw := frame.NewWriter(w, frame.ModeDelimited, frame.DefaultLimits())
	for _, msg := range [][]byte{message(2, 1), message(1)} {
		if err := fw.WriteMessage(msg); err != nil {
			t.Fatalf("write message: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.bin.zst")
	code, _, errOut := runCLI(t, in.Bytes(), "sort", "--framing", "delimited", "-o", out)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	r, codec, err := compress.NewReader(bytes.NewReader(data), compress.CodecAuto)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	if codec != compress.CodecZstd {
		t.Fatalf("output codec = %s", codec)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	msgs, err := frame.ReadAll(bytes.NewReader(plain), frame.ModeDelimited, frame.DefaultLimits())
	if err != nil {
		t.Fatalf("read frames: %v", err)
	}
	if len(msgs) != 2 || !bytes.Equal(msgs[0], message(1, 2)) || !bytes.Equal(msgs[1], message(1)) {
		t.Fatalf("unexpected messages: %x", msgs)
	}
}

func TestConfigFileAndFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pbsort.toml")
	metrics := filepath.Join(dir, "pbsort.prom")
	body := "report_format = \"json\"\nmetrics_file = \"" + filepath.ToSlash(metrics) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	code, out, errOut := runCLI(t, message(2, 1), "inspect", "--config", cfgPath)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"sorted":false`) {
		t.Fatalf("expected json report, got %q", out)
	}
	if _, err := os.Stat(metrics); err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}

	code, out, errOut = runCLI(t, message(2, 1), "inspect", "--config", cfgPath, "--format", "text")
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "message 0:") {
		t.Fatalf("flag did not override config: %q", out)
	}
}

func TestHashPrintsDigestPerMessage(t *testing.T) {
	_, a, _ := runCLI(t, message(1, 2), "hash")
	_, b, _ := runCLI(t, message(2, 1), "hash")
	if a != b || len(strings.TrimSpace(a)) != 64 {
		t.Fatalf("unexpected digests %q %q", a, b)
	}
}

func TestUsageErrors(t *testing.T) {
	cases := [][]string{
		{},
		{"merge"},
		{"sort", "a", "b"},
		{"sort", "--framing", "jsonl"},
		{"sort", "--no-such-flag"},
	}
	for _, args := range cases {
		if code, _, _ := runCLI(t, nil, args...); code != exitError {
			t.Fatalf("args %q: exit %d, want %d", args, code, exitError)
		}
	}
	if code, out, _ := runCLI(t, nil, "--help"); code != exitOK || !strings.Contains(out, "usage: pbsort") {
		t.Fatalf("help: exit %d out %q", code, out)
	}
}
