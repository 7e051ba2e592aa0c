package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/pelletier/go-toml"

	"github.com/sig-0/fxboard/dash"
	"github.com/sig-0/fxboard/provider/exchangerate"
	"github.com/sig-0/fxboard/rates/types"
)

const (
	DefaultListenAddress  = "0.0.0.0:8545"
	DefaultProviderURL    = exchangerate.DefaultBaseURL
	DefaultTimeoutSeconds = 15
)

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidProviderURL   = errors.New("invalid provider URL")
	ErrInvalidTimeout       = errors.New("invalid provider timeout")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Config defines the base-level server configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The remote rate provider settings
	Provider *Provider `toml:"provider"`

	// The dashboard defaults (base, target, basket, lookback)
	Defaults *Defaults `toml:"defaults"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`
}

// CORS defines the server CORS configuration
type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods"`
	AllowedHeaders []string `toml:"allowed_headers"`
}

// Provider defines the remote rate provider configuration
type Provider struct {
	// The provider API base URL
	URL string `toml:"url"`

	// The fixed per-call timeout, in seconds
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Defaults defines the dashboard configuration defaults
type Defaults struct {
	// The default base currency code
	Base string `toml:"base"`

	// The default target currency code
	Target string `toml:"target"`

	// The overview basket of currency codes
	Basket []string `toml:"basket"`

	// The maximum historical lookback window, in days
	LookbackDays int `toml:"lookback_days"`
}

// DefaultCORSConfig returns the default server CORS configuration
func DefaultCORSConfig() *CORS {
	return &CORS{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	dashDefaults := dash.DefaultConfig()

	basket := make([]string, 0, len(dashDefaults.Basket))
	for _, c := range dashDefaults.Basket {
		basket = append(basket, c.String())
	}

	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
		Provider: &Provider{
			URL:            DefaultProviderURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Defaults: &Defaults{
			Base:         dashDefaults.DefaultBase.String(),
			Target:       dashDefaults.DefaultTarget.String(),
			Basket:       basket,
			LookbackDays: dashDefaults.MaxLookback,
		},
	}
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	// Validate the listen address
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	// Validate the provider settings
	if config.Provider != nil {
		if config.Provider.URL == "" {
			return ErrInvalidProviderURL
		}

		if config.Provider.TimeoutSeconds <= 0 {
			return ErrInvalidTimeout
		}
	}

	// Validate the dashboard defaults
	if config.Defaults != nil {
		if _, err := config.Defaults.DashConfig(); err != nil {
			return err
		}
	}

	return nil
}

// DashConfig converts the TOML defaults into a dashboard configuration
func (d *Defaults) DashConfig() (*dash.Config, error) {
	cfg := dash.DefaultConfig()

	if d.Base != "" {
		base, err := types.ParseCurrency(d.Base)
		if err != nil {
			return nil, fmt.Errorf("invalid default base: %w", err)
		}

		cfg.DefaultBase = base
	}

	if d.Target != "" {
		target, err := types.ParseCurrency(d.Target)
		if err != nil {
			return nil, fmt.Errorf("invalid default target: %w", err)
		}

		cfg.DefaultTarget = target
	}

	if len(d.Basket) > 0 {
		basket := make([]types.Currency, 0, len(d.Basket))

		for _, raw := range d.Basket {
			c, err := types.ParseCurrency(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid basket currency %q: %w", raw, err)
			}

			basket = append(basket, c)
		}

		cfg.Basket = basket
	}

	if d.LookbackDays != 0 {
		cfg.MaxLookback = d.LookbackDays
	}

	return cfg, dash.ValidateConfig(cfg)
}

// Read reads the configuration from the given path
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
