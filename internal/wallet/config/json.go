package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/flagx"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "10s" or as integer nanoseconds.
type jsonConfig struct {
	DatabasePath string         `json:"database_path"`
	RedirectAddr string         `json:"redirect_addr"`
	HTTPTimeout  timex.Duration `json:"http_timeout"`
	Provider     struct {
		Issuer       string `json:"issuer"`
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
		AuthURL      string `json:"auth_url"`
		TokenURL     string `json:"token_url"`
		RevokeURL    string `json:"revoke_url"`
		UserInfoURL  string `json:"userinfo_url"`
	} `json:"provider"`
}

// parseJSON overlays cfg with values from the JSON file named by -c/-config.
// Without the flag nothing is loaded. Only fields present in the file
// override; panics on read or unmarshal errors.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RedirectAddr != "" {
		cfg.RedirectAddr = jc.RedirectAddr
	}
	if jc.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = time.Duration(jc.HTTPTimeout.Duration)
	}
	overlayProvider(&cfg.Provider, Provider(jc.Provider))
}

func overlayProvider(dst *Provider, src Provider) {
	if src.Issuer != "" {
		dst.Issuer = src.Issuer
	}
	if src.ClientID != "" {
		dst.ClientID = src.ClientID
	}
	if src.ClientSecret != "" {
		dst.ClientSecret = src.ClientSecret
	}
	if src.AuthURL != "" {
		dst.AuthURL = src.AuthURL
	}
	if src.TokenURL != "" {
		dst.TokenURL = src.TokenURL
	}
	if src.RevokeURL != "" {
		dst.RevokeURL = src.RevokeURL
	}
	if src.UserInfoURL != "" {
		dst.UserInfoURL = src.UserInfoURL
	}
}
