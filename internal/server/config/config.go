// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the formdesk server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DatabaseDriver: storage adapter, one of "sqlite3", "mysql", "pgx".
//   - DatabaseDSN: driver-specific DSN.
//   - SecretKey: HMAC secret for signing the session cookie. Do not use the
//     development default in production.
//   - MinSubmitInterval: minimum gap between two successful submissions from
//     one session.
//   - ArchiveDir: when non-empty, accepted submissions are also appended to
//     per-day JSONL files in this directory.
type Config struct {
	Addr              string
	DatabaseDriver    string
	DatabaseDSN       string
	SecretKey         string
	MinSubmitInterval time.Duration
	ArchiveDir        string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDriver = "sqlite3"
	c.DatabaseDSN = "file:formdesk.sqlite?_busy_timeout=5000"
	c.SecretKey = "secretKey"
	c.MinSubmitInterval = 5 * time.Second
	c.ArchiveDir = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
