package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR points the suite at a running gateway, e.g.
	// http://localhost:8080. Empty skips the suite.
	RelayAddr    string `envconfig:"RELAY_ADDR"`
	AccountsAddr string `envconfig:"ACCOUNTS_ADDR"`
	Interchat    string `envconfig:"E2E_INTERCHAT" default:"es"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
