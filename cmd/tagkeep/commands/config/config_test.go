package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tagkeep/pkg/config"
)

func TestWarnings(t *testing.T) {
	t.Parallel()

	t.Run("clean config", func(t *testing.T) {
		t.Parallel()
		cfg := config.GetDefaultConfig()
		cfg.ControlPlane.JWT.Secret = "0123456789abcdef0123456789abcdef"
		assert.Empty(t, Warnings(cfg))
	})

	t.Run("missing secret and dry run", func(t *testing.T) {
		t.Parallel()
		cfg := config.GetDefaultConfig()
		cfg.ControlPlane.JWT.Secret = ""
		cfg.Housekeeping.DryRun = true
		cfg.Housekeeping.RunRetention = -time.Hour

		warnings := Warnings(cfg)
		require.Len(t, warnings, 3)
		assert.Contains(t, warnings[0], "JWT secret")
		assert.Contains(t, warnings[1], "dry_run")
		assert.Contains(t, warnings[2], "kept forever")
	})
}

func TestHousekeepingSummary(t *testing.T) {
	t.Parallel()

	disabled := false
	assert.Equal(t, "manual only", housekeepingSummary(config.HousekeepingConfig{Enabled: &disabled}))
	assert.Equal(t, "every 24h0m0s", housekeepingSummary(config.HousekeepingConfig{Interval: 24 * time.Hour}))
	assert.Equal(t, "every 1h0m0s (dry run)", housekeepingSummary(config.HousekeepingConfig{Interval: time.Hour, DryRun: true}))
}

func TestSchema(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Schema())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "tagkeep Configuration", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has properties")
	for _, key := range []string{"logging", "database", "controlplane", "housekeeping", "metrics"} {
		assert.Contains(t, props, key)
	}
}
