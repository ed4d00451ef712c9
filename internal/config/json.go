package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spknetwork/oratr-vault/internal/flagx"
	"github.com/spknetwork/oratr-vault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify durations either as strings like
// "15m" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config.
type JsonConfig struct {
	DBPath          string         `json:"db_path"`
	SessionTTL      timex.Duration `json:"session_ttl"`
	ExpiryPolicy    string         `json:"expiry_policy"`
	AddressPrefix   string         `json:"address_prefix"`
	ApprovalTimeout timex.Duration `json:"approval_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flag via flagx.JsonConfigFlags; when
// no path is given the function returns without touching cfg. Read or
// unmarshal errors panic (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later
// stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
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

	cfg.DBPath = jc.DBPath
	cfg.SessionTTL = time.Duration(jc.SessionTTL.Duration)
	cfg.ExpiryPolicy = jc.ExpiryPolicy
	cfg.AddressPrefix = jc.AddressPrefix
	cfg.ApprovalTimeout = time.Duration(jc.ApprovalTimeout.Duration)
}
