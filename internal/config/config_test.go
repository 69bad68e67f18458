package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pbsort/pkg/protosort"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pbsort.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
varint_order = "canonical"
framing = "delimited"
max_message_bytes = 1024
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.VarintOrder != "canonical" || cfg.Framing != "delimited" || cfg.MaxMessageBytes != 1024 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	def := Default()
	if cfg.Compression != def.Compression || cfg.ReportFormat != def.ReportFormat || cfg.LogLevel != def.LogLevel {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	opts, err := cfg.SorterOptions()
	if err != nil {
		t.Fatalf("sorter options: %v", err)
	}
	if opts.VarintOrder != protosort.VarintCanonical || opts.Lenient {
		t.Fatalf("unexpected sorter options: %+v", opts)
	}
	if cfg.Limits().MaxMessageBytes != 1024 {
		t.Fatalf("unexpected limits: %+v", cfg.Limits())
	}
}

func TestTemplateLoadsAsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbsort.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("template differs from defaults:\n got %+v\nwant %+v", cfg, Default())
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite existing config")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"varint order":   `varint_order = "middle-endian"`,
		"framing":        `framing = "jsonl"`,
		"compression":    `compression = "gzip"`,
		"report format":  `report_format = "xml"`,
		"negative limit": `max_message_bytes = -1`,
		"huge limit":     `max_message_bytes = 9999999999999`,
		"unknown key":    `sort_nested = true`,
		"bad toml":       `framing = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected load error, got %v", err)
	}
}
