package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("REELFORGE_HTTP_ADDR", ":8080")
	t.Setenv("REELFORGE_STORAGE_DRIVER", "sqlite")
	t.Setenv("REELFORGE_DB_MAX_CONNS", "8")
	t.Setenv("REELFORGE_RP_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("REELFORGE_CEREMONY_TTL", "90s")
	t.Setenv("REELFORGE_REAP_INTERVAL", "0s")

	cfg := defaults()
	parseEnv(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, 8, cfg.DBMaxConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.RPOrigins)
	assert.Equal(t, 90*time.Second, cfg.CeremonyTTL)
	assert.Zero(t, cfg.ReapInterval)
	assert.Equal(t, "localhost", cfg.RPID, "unset variables keep their value")
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Setenv("REELFORGE_CEREMONY_TTL", "soon")

	require.Panics(t, func() { parseEnv(defaults()) })
}
