package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.Nil(t, err)
		assert.Equal(t, "runs", cfg.RunsDir)
		assert.Equal(t, ":8081", cfg.ListenAddr)
	})

	t.Run("Reads overrides from the environment", func(t *testing.T) {
		t.Setenv("REWEAVE_RUNS_DIR", "/var/lib/reweave/runs")
		t.Setenv("REWEAVE_LISTEN_ADDR", ":9000")

		cfg, err := FromEnv()
		require.Nil(t, err)
		assert.Equal(t, "/var/lib/reweave/runs", cfg.RunsDir)
		assert.Equal(t, ":9000", cfg.ListenAddr)
	})
}
