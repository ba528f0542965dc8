package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ekene/oryo/internal/tip"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Wallet   WalletConfig
	Tip      TipConfig
	OAuth    OAuthConfig
	Log      LogConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// WalletConfig selects and configures the wallet backend.
// Backend is "dev" or "evm"; Latency and FailRate apply to the dev wallet.
type WalletConfig struct {
	Backend       string        `mapstructure:"backend"`
	RPCURL        string        `mapstructure:"rpc_url"`
	ChainID       int64         `mapstructure:"chain_id"`
	PrivateKeyEnv string        `mapstructure:"private_key_env"`
	Symbol        string        `mapstructure:"symbol"`
	USDPrice      string        `mapstructure:"usd_price"`
	Latency       time.Duration `mapstructure:"latency"`
	FailRate      float64       `mapstructure:"fail_rate"`
}

// TipConfig tunes the tip wizard.
// Variant is "full" or "compact".
type TipConfig struct {
	Variant      string        `mapstructure:"variant"`
	MessageLimit int           `mapstructure:"message_limit"`
	Presets      []string      `mapstructure:"presets"`
	AutoClose    time.Duration `mapstructure:"auto_close"`
}

// OAuthConfig holds identity provider settings.
type OAuthConfig struct {
	ClientID        string   `mapstructure:"client_id"`
	ClientSecretEnv string   `mapstructure:"client_secret_env"`
	AuthURL         string   `mapstructure:"auth_url"`
	TokenURL        string   `mapstructure:"token_url"`
	UserInfoURL     string   `mapstructure:"userinfo_url"`
	RedirectURL     string   `mapstructure:"redirect_url"`
	Scopes          []string `mapstructure:"scopes"`
	// Timeout bounds one sign-in attempt, from opening the browser to the
	// userinfo fetch.
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateFormat     string `mapstructure:"date_format"`
	StartView      string `mapstructure:"start_view"`
	StaticCursor   bool   `mapstructure:"static_cursor"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "oryo")
}

func defaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "oryo", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(dataDir(), "oryo.db"))
	v.SetDefault("wallet.backend", "dev")
	v.SetDefault("wallet.rpc_url", "")
	v.SetDefault("wallet.chain_id", 1)
	v.SetDefault("wallet.private_key_env", "ORYO_WALLET_KEY")
	v.SetDefault("wallet.symbol", "ETH")
	v.SetDefault("wallet.usd_price", "0")
	v.SetDefault("wallet.latency", "1500ms")
	v.SetDefault("wallet.fail_rate", 0)
	v.SetDefault("tip.variant", "full")
	v.SetDefault("tip.message_limit", 0)
	v.SetDefault("tip.presets", []string{"1", "5", "10", "25"})
	v.SetDefault("tip.auto_close", "2s")
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret_env", "ORYO_OAUTH_SECRET")
	v.SetDefault("oauth.auth_url", "https://accounts.google.com/o/oauth2/auth")
	v.SetDefault("oauth.token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("oauth.userinfo_url", "https://www.googleapis.com/oauth2/v2/userinfo")
	v.SetDefault("oauth.redirect_url", "http://127.0.0.1:8765/callback")
	v.SetDefault("oauth.scopes", []string{"openid", "profile", "email"})
	v.SetDefault("oauth.timeout", "2m")
	v.SetDefault("log.path", filepath.Join(dataDir(), "oryo.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.date_format", "02 Jan 15:04")
	v.SetDefault("ui.start_view", "/feed")
	v.SetDefault("ui.static_cursor", false)
}

// Load reads configuration from file and env. Env var overrides use prefix ORYO_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ORYO_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "oryo"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ORYO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the non-secret settings the TUI can change.
func Save(cfg Config) error {
	path := os.Getenv("ORYO_CONFIG")
	if path == "" {
		path = defaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("wallet.backend", cfg.Wallet.Backend)
	v.Set("wallet.rpc_url", cfg.Wallet.RPCURL)
	v.Set("wallet.chain_id", cfg.Wallet.ChainID)
	v.Set("wallet.private_key_env", cfg.Wallet.PrivateKeyEnv)
	v.Set("wallet.symbol", cfg.Wallet.Symbol)
	v.Set("wallet.usd_price", cfg.Wallet.USDPrice)
	v.Set("wallet.latency", cfg.Wallet.Latency.String())
	v.Set("wallet.fail_rate", cfg.Wallet.FailRate)
	v.Set("tip.variant", cfg.Tip.Variant)
	v.Set("tip.message_limit", cfg.Tip.MessageLimit)
	v.Set("tip.presets", cfg.Tip.Presets)
	v.Set("tip.auto_close", cfg.Tip.AutoClose.String())
	v.Set("oauth.client_id", cfg.OAuth.ClientID)
	v.Set("oauth.client_secret_env", cfg.OAuth.ClientSecretEnv)
	v.Set("oauth.auth_url", cfg.OAuth.AuthURL)
	v.Set("oauth.token_url", cfg.OAuth.TokenURL)
	v.Set("oauth.userinfo_url", cfg.OAuth.UserInfoURL)
	v.Set("oauth.redirect_url", cfg.OAuth.RedirectURL)
	v.Set("oauth.scopes", cfg.OAuth.Scopes)
	v.Set("oauth.timeout", cfg.OAuth.Timeout.String())
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.start_view", cfg.UI.StartView)
	v.Set("ui.static_cursor", cfg.UI.StaticCursor)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// WizardConfig builds the tip wizard configuration from the tip section.
func (c Config) WizardConfig() tip.Config {
	var out tip.Config
	switch strings.ToLower(strings.TrimSpace(c.Tip.Variant)) {
	case "compact":
		out = tip.CompactConfig()
	default:
		out = tip.DefaultConfig()
	}
	if c.Tip.MessageLimit > 0 {
		out.MessageLimit = c.Tip.MessageLimit
	}
	var presets []string
	for _, p := range c.Tip.Presets {
		if _, err := tip.ParseAmount(p); err == nil {
			presets = append(presets, strings.TrimSpace(p))
		}
	}
	if len(presets) > 0 {
		out.Presets = presets
	}
	if c.Tip.AutoClose > 0 {
		out.AutoClose = c.Tip.AutoClose
	}
	return out
}
