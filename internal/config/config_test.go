package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ORYO_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "oryo", "oryo.db"), cfg.Database.Path)
	require.Equal(t, "dev", cfg.Wallet.Backend)
	require.Equal(t, 1500*time.Millisecond, cfg.Wallet.Latency)
	require.Equal(t, 2*time.Second, cfg.Tip.AutoClose)
	require.Equal(t, []string{"1", "5", "10", "25"}, cfg.Tip.Presets)
	require.Equal(t, "/feed", cfg.UI.StartView)
	require.Equal(t, 2*time.Minute, cfg.OAuth.Timeout)
	require.False(t, cfg.UI.StaticCursor)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "oryo.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[wallet]
backend = "evm"
rpc_url = "http://localhost:8545"
chain_id = 31337

[tip]
variant = "compact"
auto_close = "3s"
presets = ["2", "nope", "20"]
`), 0o644))
	t.Setenv("ORYO_CONFIG", path)
	t.Setenv("ORYO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "evm", cfg.Wallet.Backend)
	require.Equal(t, int64(31337), cfg.Wallet.ChainID)
	require.Equal(t, "debug", cfg.Log.Level)

	wc := cfg.WizardConfig()
	require.True(t, wc.CombinedAmountAsset)
	require.Equal(t, 200, wc.MessageLimit)
	require.Equal(t, 3*time.Second, wc.AutoClose)
	require.Equal(t, []string{"2", "20"}, wc.Presets)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ORYO_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err := Load()
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "conf", "config.toml")
	t.Setenv("ORYO_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Tip.Variant = "compact"
	cfg.Tip.MessageLimit = 150
	cfg.UI.CurrencySymbol = "₦"

	t.Setenv("ORYO_CONFIG", path)
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "compact", got.Tip.Variant)
	require.Equal(t, 150, got.WizardConfig().MessageLimit)
	require.Equal(t, "₦", got.UI.CurrencySymbol)
	require.Equal(t, cfg.Wallet.Latency, got.Wallet.Latency)
}

func TestWizardConfigDropsBadPresets(t *testing.T) {
	c := Config{Tip: TipConfig{Presets: []string{"1", "abc", "1e-200000000", " 5 "}}}
	require.Equal(t, []string{"1", "5"}, c.WizardConfig().Presets)
}
