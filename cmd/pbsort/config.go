package main

import (
	"os"

	"github.com/danmuck/pbsort/internal/config"
	"github.com/danmuck/pbsort/internal/logging"
	"github.com/danmuck/pbsort/internal/protocol/compress"
	"github.com/danmuck/pbsort/internal/protocol/frame"
	"github.com/danmuck/pbsort/internal/report"
	"github.com/danmuck/pbsort/pkg/protosort"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

type cliOptions struct {
	configPath  string
	output      string
	inPlace     bool
	framing     string
	compression string
	varintOrder string
	lenient     bool
	format      string
	metricsFile string
	logLevel    string
	help        bool
}

func (o *cliOptions) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.configPath, "config", "", "TOML config file")
	flagSet.StringVarP(&o.output, "output", "o", "", "write output to this file instead of stdout")
	flagSet.BoolVar(&o.inPlace, "in-place", false, "sort: rewrite the input file")
	flagSet.StringVar(&o.framing, "framing", "", "raw | delimited")
	flagSet.StringVar(&o.compression, "compression", "", "none | zstd | lz4 | auto")
	flagSet.StringVar(&o.varintOrder, "varint-order", "", "legacy | canonical")
	flagSet.BoolVar(&o.lenient, "lenient", false, "accept a varint left unterminated at the end of a message")
	flagSet.StringVar(&o.format, "format", "", "inspect output: text | json | cbor")
	flagSet.StringVar(&o.metricsFile, "metrics-file", "", "write prometheus textfile metrics here")
	flagSet.StringVar(&o.logLevel, "log-level", "", "trace | debug | info | warn | error | off")
	flagSet.BoolVarP(&o.help, "help", "h", false, "show help")
}

// settings is the config after flag overrides, with every enum parsed.
type settings struct {
	cfg          config.Config
	sorter       *protosort.Sorter
	framing      frame.Mode
	compression  compress.Codec
	reportFormat report.Format
}

func resolveSettings(flagSet *pflag.FlagSet, opts cliOptions) (settings, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return settings{}, err
		}
		cfg = loaded
	}

	if flagSet.Changed("framing") {
		cfg.Framing = opts.framing
	}
	if flagSet.Changed("compression") {
		cfg.Compression = opts.compression
	}
	if flagSet.Changed("varint-order") {
		cfg.VarintOrder = opts.varintOrder
	}
	if flagSet.Changed("lenient") {
		cfg.LenientVarint = opts.lenient
	}
	if flagSet.Changed("format") {
		cfg.ReportFormat = opts.format
	}
	if flagSet.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return settings{}, err
	}

	sorterOpts, err := cfg.SorterOptions()
	if err != nil {
		return settings{}, err
	}
	framing, err := frame.ParseMode(cfg.Framing)
	if err != nil {
		return settings{}, err
	}
	codec, err := compress.Parse(cfg.Compression)
	if err != nil {
		return settings{}, err
	}
	format, err := report.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return settings{}, err
	}
	return settings{
		cfg:          cfg,
		sorter:       protosort.New(sorterOpts),
		framing:      framing,
		compression:  codec,
		reportFormat: format,
	}, nil
}

// applyLogLevel gives the --log-level flag priority, then the environment,
// then the config file.
func applyLogLevel(flagSet *pflag.FlagSet, opts cliOptions, configured string) {
	level := configured
	switch {
	case flagSet.Changed("log-level"):
		level = opts.logLevel
	case os.Getenv(logging.EnvLogLevel) != "":
		return
	}
	if level == "" {
		return
	}
	if !logging.SetLevel(level) {
		log.Warn().Str("level", level).Msg("pbsort unknown log level ignored")
	}
}
