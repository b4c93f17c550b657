package config

import "time"

// Provider holds the federated identity provider endpoints. Defaults point
// at Google; a private OIDC deployment overrides them.
type Provider struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RevokeURL    string
	UserInfoURL  string
}

// Config holds runtime settings for the wallet CLI.
//
// Fields:
//   - DatabasePath: sqlite file holding secrets and per-user wallet data.
//   - RedirectAddr: loopback address the sign-in flow listens on.
//   - HTTPTimeout: timeout applied to provider HTTP calls.
type Config struct {
	DatabasePath string
	RedirectAddr string
	HTTPTimeout  time.Duration
	Provider     Provider
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "wallet.db"
	c.RedirectAddr = "127.0.0.1:49817"
	c.HTTPTimeout = 10 * time.Second
	c.Provider = Provider{
		Issuer:      "https://accounts.google.com",
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		RevokeURL:   "https://oauth2.googleapis.com/revoke",
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
