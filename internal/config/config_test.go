package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "oratr-vault.db", c.DBPath)
	assert.Equal(t, 15*time.Minute, c.SessionTTL)
	assert.Equal(t, "inactivity", c.ExpiryPolicy)
	assert.Equal(t, "STM", c.AddressPrefix)
	assert.Equal(t, 60*time.Second, c.ApprovalTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "oratr-vault.db", cfg.DBPath)
	assert.Equal(t, "inactivity", cfg.ExpiryPolicy)
}
