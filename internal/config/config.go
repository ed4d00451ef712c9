// Package config builds the runtime configuration of the vault from
// defaults, an optional JSON file, and command-line flags, in that order.
package config

import "time"

// Config holds runtime settings for the vault.
//
// Fields:
//   - DBPath: path of the SQLite database file holding the encrypted vault.
//   - SessionTTL: how long an unlocked session lives; 0 disables expiry.
//   - ExpiryPolicy: "inactivity" restarts the TTL on use, "continuous"
//     locks a fixed duration after unlock.
//   - AddressPrefix: prefix rendered onto public keys.
//   - ApprovalTimeout: how long a pending signing approval waits before
//     it is treated as rejected.
type Config struct {
	DBPath          string
	SessionTTL      time.Duration
	ExpiryPolicy    string
	AddressPrefix   string
	ApprovalTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "oratr-vault.db"
	c.SessionTTL = 15 * time.Minute
	c.ExpiryPolicy = "inactivity"
	c.AddressPrefix = "STM"
	c.ApprovalTimeout = 60 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
