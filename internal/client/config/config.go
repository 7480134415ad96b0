package config

import (
	"time"

	"github.com/dmitrijs2005/booknest/internal/common"
)

// Config holds runtime settings for the BookNest client.
//
// Fields:
//   - APIBaseURL: root of the storefront REST API, e.g. http://localhost:8081/api.
//   - StateDSN: SQLite DSN of the local session database.
//   - RequestTimeout: upper bound for one interactive command.
//   - SealPassphrase: when set, the persisted session is encrypted at rest.
//   - LogLevel: debug, info, warn or error.
//   - LogFile: when set, logs go to this rotated file instead of stderr.
type Config struct {
	APIBaseURL     string
	StateDSN       string
	RequestTimeout time.Duration
	SealPassphrase string
	LogLevel       string
	LogFile        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = common.DefaultAPIBaseURL
	c.StateDSN = "file:booknest.db"
	c.RequestTimeout = 15 * time.Second
	c.SealPassphrase = ""
	c.LogLevel = "info"
	c.LogFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
