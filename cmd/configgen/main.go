package main

import (
	"fmt"
	"os"

	"github.com/danmuck/pbsort/internal/config"
	"github.com/spf13/pflag"
)

const defaultPath = "pbsort.toml"

func main() {
	output := pflag.String("output", defaultPath, "output path for config template")
	validate := pflag.Bool("validate", false, "validate an existing config file")
	input := pflag.String("input", defaultPath, "config path for validation")
	force := pflag.Bool("force", false, "overwrite existing config file")
	pflag.Parse()

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Validated config at %s (varint_order=%s framing=%s compression=%s)\n",
			*input, cfg.VarintOrder, cfg.Framing, cfg.Compression)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote config template to %s\n", *output)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
	os.Exit(1)
}
