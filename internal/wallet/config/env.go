package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig holds raw environment values. Zero values mean "not set" and
// leave the earlier stages untouched.
type envConfig struct {
	DatabasePath string        `env:"DW_DATABASE_PATH"`
	RedirectAddr string        `env:"DW_REDIRECT_ADDR"`
	HTTPTimeout  time.Duration `env:"DW_HTTP_TIMEOUT"`

	Issuer       string `env:"DW_PROVIDER_ISSUER"`
	ClientID     string `env:"DW_PROVIDER_CLIENT_ID"`
	ClientSecret string `env:"DW_PROVIDER_CLIENT_SECRET"`
	AuthURL      string `env:"DW_PROVIDER_AUTH_URL"`
	TokenURL     string `env:"DW_PROVIDER_TOKEN_URL"`
	RevokeURL    string `env:"DW_PROVIDER_REVOKE_URL"`
	UserInfoURL  string `env:"DW_PROVIDER_USERINFO_URL"`
}

// parseEnv overlays cfg with DW_* environment variables.
func parseEnv(cfg *Config) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		panic(err)
	}

	if raw.DatabasePath != "" {
		cfg.DatabasePath = raw.DatabasePath
	}
	if raw.RedirectAddr != "" {
		cfg.RedirectAddr = raw.RedirectAddr
	}
	if raw.HTTPTimeout != 0 {
		cfg.HTTPTimeout = raw.HTTPTimeout
	}
	overlayProvider(&cfg.Provider, Provider{
		Issuer:       raw.Issuer,
		ClientID:     raw.ClientID,
		ClientSecret: raw.ClientSecret,
		AuthURL:      raw.AuthURL,
		TokenURL:     raw.TokenURL,
		RevokeURL:    raw.RevokeURL,
		UserInfoURL:  raw.UserInfoURL,
	})
}
