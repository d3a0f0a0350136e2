package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOLIO_API_URL", "https://api.folio.example")
	t.Setenv("FOLIO_STATE_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://api.folio.example", cfg.APIURL)
	require.Equal(t, 30*time.Minute, cfg.TokenMargin)
	require.Equal(t, 5*time.Minute, cfg.RevalidateInterval)
	require.Equal(t, 15*time.Second, cfg.ExchangeTimeout)
	require.Equal(t, "dev", cfg.Env)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FOLIO_API_URL", "https://api.folio.example")
	t.Setenv("FOLIO_STATE_DIR", t.TempDir())
	t.Setenv("FOLIO_TOKEN_MARGIN", "1h")
	t.Setenv("FOLIO_REVALIDATE_INTERVAL", "10m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, time.Hour, cfg.TokenMargin)
	require.Equal(t, 10*time.Minute, cfg.RevalidateInterval)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsIntervalNotUnderMargin(t *testing.T) {
	t.Setenv("FOLIO_API_URL", "https://api.folio.example")
	t.Setenv("FOLIO_STATE_DIR", t.TempDir())
	t.Setenv("FOLIO_TOKEN_MARGIN", "5m")
	t.Setenv("FOLIO_REVALIDATE_INTERVAL", "5m")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "shorter than")
}
