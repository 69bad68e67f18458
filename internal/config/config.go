package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pbsort/internal/protocol/compress"
	"github.com/danmuck/pbsort/internal/protocol/frame"
	"github.com/danmuck/pbsort/internal/report"
	"github.com/danmuck/pbsort/pkg/protosort"
)

// maxMessageBytesCeiling keeps frame limits inside what a single slice
// allocation can address on every supported platform.
const maxMessageBytesCeiling = 1 << 31

// Config holds pbsort defaults. Zero values are never used directly; Load
// starts from Default and overrides only keys present in the file.
type Config struct {
	VarintOrder     string
	LenientVarint   bool
	Framing         string
	Compression     string
	MaxMessageBytes uint64
	ReportFormat    string
	LogLevel        string
	MetricsFile     string
}

type fileConfig struct {
	VarintOrder     string `toml:"varint_order"`
	LenientVarint   bool   `toml:"lenient_varint"`
	Framing         string `toml:"framing"`
	Compression     string `toml:"compression"`
	MaxMessageBytes int64  `toml:"max_message_bytes"`
	ReportFormat    string `toml:"report_format"`
	LogLevel        string `toml:"log_level"`
	MetricsFile     string `toml:"metrics_file"`
}

func Default() Config {
	return Config{
		VarintOrder:     protosort.VarintLegacy.String(),
		Framing:         frame.ModeRaw.String(),
		Compression:     compress.CodecAuto.String(),
		MaxMessageBytes: frame.DefaultLimits().MaxMessageBytes,
		ReportFormat:    report.FormatText.String(),
		LogLevel:        "info",
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("varint_order") {
		cfg.VarintOrder = strings.TrimSpace(raw.VarintOrder)
	}
	if meta.IsDefined("lenient_varint") {
		cfg.LenientVarint = raw.LenientVarint
	}
	if meta.IsDefined("framing") {
		cfg.Framing = strings.TrimSpace(raw.Framing)
	}
	if meta.IsDefined("compression") {
		cfg.Compression = strings.TrimSpace(raw.Compression)
	}
	if meta.IsDefined("max_message_bytes") {
		if raw.MaxMessageBytes <= 0 {
			return Config{}, fmt.Errorf("config invalid (%s): max_message_bytes must be positive", path)
		}
		cfg.MaxMessageBytes = uint64(raw.MaxMessageBytes)
	}
	if meta.IsDefined("report_format") {
		cfg.ReportFormat = strings.TrimSpace(raw.ReportFormat)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, err := protosort.ParseVarintOrder(cfg.VarintOrder); err != nil {
		return err
	}
	if _, err := frame.ParseMode(cfg.Framing); err != nil {
		return err
	}
	if _, err := compress.Parse(cfg.Compression); err != nil {
		return err
	}
	if _, err := report.ParseFormat(cfg.ReportFormat); err != nil {
		return err
	}
	if cfg.MaxMessageBytes == 0 || cfg.MaxMessageBytes > maxMessageBytesCeiling {
		return fmt.Errorf("max_message_bytes must be in 1..%d, got %d", maxMessageBytesCeiling, cfg.MaxMessageBytes)
	}
	return nil
}

// SorterOptions converts the varint settings for protosort.New.
func (c Config) SorterOptions() (protosort.Options, error) {
	order, err := protosort.ParseVarintOrder(c.VarintOrder)
	if err != nil {
		return protosort.Options{}, err
	}
	return protosort.Options{VarintOrder: order, Lenient: c.LenientVarint}, nil
}

func (c Config) Limits() frame.Limits {
	return frame.Limits{MaxMessageBytes: c.MaxMessageBytes}
}
