package config

import (
	"fmt"
	"os"
)

func Template() string {
	return template
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o644)
}

const template = `# varint group order used to read keys and lengths: legacy | canonical
varint_order = "legacy"
# accept a varint left unterminated at the end of a message
lenient_varint = false
# raw: whole input is one message; delimited: varint length before each message
framing = "raw"
# none | zstd | lz4 | auto (auto detects on input, writes uncompressed)
compression = "auto"
max_message_bytes = 67108864
# inspect output: text | json | cbor
report_format = "text"
log_level = "info"
# write prometheus textfile metrics here after each run; empty disables
metrics_file = ""
`
