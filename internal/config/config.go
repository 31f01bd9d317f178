// Package config loads the appraiser configuration from an optional TOML
// file with environment-variable overrides for deployment secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Server contains listener and CORS configuration.
type Server struct {
	Port        string   `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Providers contains upstream catalog endpoints and credentials. Base URLs
// are overridable for tests and proxies.
type Providers struct {
	ScryfallBaseURL   string `toml:"scryfall_base_url"`
	PokemonTCGBaseURL string `toml:"pokemontcg_base_url"`
	PokemonTCGAPIKey  string `toml:"pokemontcg_api_key"`
	TCGdexBaseURL     string `toml:"tcgdex_base_url"`
	YGOProDeckBaseURL string `toml:"ygoprodeck_base_url"`
	JustTCGBaseURL    string `toml:"justtcg_base_url"`
	JustTCGAPIKey     string `toml:"justtcg_api_key"`
	JustTCGDailyLimit int    `toml:"justtcg_daily_limit"`
}

// Pricing contains valuation defaults.
type Pricing struct {
	// DefaultCurrency is assumed for provider prices that carry no currency.
	DefaultCurrency string  `toml:"default_currency"`
	DefaultFeeGBP   float64 `toml:"default_fee_gbp"`
}

// FX contains exchange-rate feed configuration. When both fallback rates
// are set, a feed outage degrades to them instead of dropping conversions.
type FX struct {
	RatesURL    string  `toml:"rates_url"`
	FallbackUSD float64 `toml:"fallback_usd"`
	FallbackGBP float64 `toml:"fallback_gbp"`
}

// Config is the root configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Providers Providers `toml:"providers"`
	Pricing   Pricing   `toml:"pricing"`
	FX        FX        `toml:"fx"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Providers: Providers{
			JustTCGDailyLimit: 100,
		},
		Pricing: Pricing{
			DefaultCurrency: "USD",
			DefaultFeeGBP:   15,
		},
	}
}

// Load reads the TOML file at path over the defaults and applies environment
// overrides. A missing file is fine; the defaults plus environment stand.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No file is a valid deployment; env vars carry the secrets.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("POKEMONTCG_API_KEY"); v != "" {
		cfg.Providers.PokemonTCGAPIKey = v
	}
	if v := os.Getenv("JUSTTCG_API_KEY"); v != "" {
		cfg.Providers.JustTCGAPIKey = v
	}
	if v := os.Getenv("JUSTTCG_DAILY_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.Providers.JustTCGDailyLimit = limit
		}
	}
	if v := os.Getenv("PRICING_DEFAULT_CURRENCY"); v != "" {
		cfg.Pricing.DefaultCurrency = strings.ToUpper(v)
	}
}

func (c *Config) validate() error {
	switch c.Pricing.DefaultCurrency {
	case "EUR", "GBP", "USD":
	default:
		return fmt.Errorf("pricing.default_currency must be EUR, GBP or USD, got %q", c.Pricing.DefaultCurrency)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	return nil
}
