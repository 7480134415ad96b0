// Package config loads runtime configuration for the BookNest client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   storefront API base URL
//	-s string   local state database DSN
//	-t int      per-command request timeout (seconds)
//	-k string   passphrase sealing the persisted session
//	-l string   log level
//	-f string   log file, rotated by size (stderr when empty)
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8081/api",
//	  "state_dsn": "file:booknest.db",
//	  "request_timeout": "15s",
//	  "seal_passphrase": "",
//	  "log_level": "info",
//	  "log_file": ""
//	}
//
// The package does not read environment variables.
package config
