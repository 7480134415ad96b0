package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/booknest/internal/flagx"
	"github.com/dmitrijs2005/booknest/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "15s" style strings or integer nanoseconds.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	StateDSN       string         `json:"state_dsn"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	SealPassphrase string         `json:"seal_passphrase"`
	LogLevel       string         `json:"log_level"`
	LogFile        string         `json:"log_file"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. Keys that
// are missing from the file leave the current value alone. Read and decode
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.StateDSN != "" {
		cfg.StateDSN = jc.StateDSN
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SealPassphrase != "" {
		cfg.SealPassphrase = jc.SealPassphrase
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
}
