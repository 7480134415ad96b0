package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/booknest/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   storefront API base URL
//	-s string   local state database DSN
//	-t int      per-command request timeout (seconds)
//	-k string   passphrase sealing the persisted session
//	-l string   log level
//	-f string   log file (rotated); stderr when empty
//
// os.Args is filtered with flagx.FilterArgs so that -c/-config and anything
// else meant for other parsers is ignored here.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-k", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "storefront API base URL")
	fs.StringVar(&cfg.StateDSN, "s", cfg.StateDSN, "local state database DSN")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SealPassphrase, "k", cfg.SealPassphrase, "passphrase used to seal the stored session")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "f", cfg.LogFile, "log file, rotated by size")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
