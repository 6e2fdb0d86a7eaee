package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in providers.stats / providers.history.
const (
	ProviderDexScreener   = "dexscreener"
	ProviderGeckoTerminal = "geckoterminal"
	ProviderAggregator    = "aggregator"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Token struct {
		Address  string `yaml:"address" validate:"required"`
		Platform string `yaml:"platform" default:"eth" validate:"required"`
		ChainID  string `yaml:"chain_id" default:"1"`
	} `yaml:"token"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Projection ProjectionConfig `yaml:"projection"`
	Cache      struct {
		Backend  string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered none"`
		TTL      time.Duration `yaml:"ttl" default:"30s"`
		LocalTTL time.Duration `yaml:"local_ttl" default:"5s"`
		Redis    struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"yieldprojector"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	API struct {
		RatePerSecond float64       `yaml:"rate_per_second" default:"5"`
		Burst         int           `yaml:"burst" default:"10"`
		// IdleTTL is how long a client bucket survives without requests. Zero keeps buckets forever.
		IdleTTL       time.Duration `yaml:"idle_ttl" default:"10m" validate:"gte=0"`
		SweepEvery    time.Duration `yaml:"sweep_every" default:"1m" validate:"gte=0"`
	} `yaml:"api"`
	Refresh struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule" default:"@every 1m"`
	} `yaml:"refresh"`
}

type ProvidersConfig struct {
	Stats         []string      `yaml:"stats" default:"[\"dexscreener\",\"geckoterminal\"]" validate:"min=1,dive,oneof=dexscreener geckoterminal aggregator"`
	History       []string      `yaml:"history" default:"[\"geckoterminal\"]" validate:"min=1,dive,oneof=dexscreener geckoterminal aggregator"`
	Timeout       time.Duration `yaml:"timeout" default:"10s"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" default:"8388608" validate:"gte=1024"`
	DexScreener   Upstream      `yaml:"dexscreener"`
	GeckoTerminal struct {
		Upstream   `yaml:",inline"`
		OHLCVLimit int `yaml:"ohlcv_limit" default:"365" validate:"gte=1,lte=1000"`
	} `yaml:"geckoterminal"`
	Aggregator Upstream `yaml:"aggregator"`
}

// Upstream is the per-provider endpoint and quota.
type Upstream struct {
	BaseURL       string  `yaml:"base_url"`
	APIKey        string  `yaml:"api_key"`
	RatePerSecond float64 `yaml:"rate_per_second" default:"2"`
	Burst         int     `yaml:"burst" default:"4"`
}

type ProjectionConfig struct {
	DefaultAPR     float64 `yaml:"default_apr" default:"20" validate:"gte=0"`
	FallbackWindow int     `yaml:"fallback_window" default:"30" validate:"gte=0"`
	Compounding    string  `yaml:"compounding" default:"point" validate:"oneof=point calendar"`
	Timezone       string  `yaml:"timezone" default:"Local"`
}

var validate = validator.New()

// Default returns a config populated only from default tags and the public upstream URLs.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	c.applyUpstreamDefaults()
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func readFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(b)
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyUpstreamDefaults()
	return &c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := readFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// No file: run purely on defaults + environment.
		c = Default()
	}

	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("TOKEN_ADDRESS"); v != "" {
		c.Token.Address = v
	}
	if v := getenv("PLATFORM_ID"); v != "" {
		c.Token.Platform = v
	}
	if v := getenv("CHAIN_ID"); v != "" {
		c.Token.ChainID = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("STATS_PROVIDERS"); v != "" {
		c.Providers.Stats = splitList(v)
	}
	if v := getenv("HISTORY_PROVIDERS"); v != "" {
		c.Providers.History = splitList(v)
	}
	if v := getenv("AGGREGATOR_API_KEY"); v != "" {
		c.Providers.Aggregator.APIKey = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if (c.Cache.Backend == "redis" || c.Cache.Backend == "layered") && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for %s backend", c.Cache.Backend)
	}
	if _, err := c.Projection.Location(); err != nil {
		return fmt.Errorf("projection.timezone: %w", err)
	}
	return nil
}

// Location resolves the configured timezone used for start-date midnight and labels.
func (p ProjectionConfig) Location() (*time.Location, error) {
	switch p.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(p.Timezone)
}

func (c *Config) applyUpstreamDefaults() {
	if c.Providers.DexScreener.BaseURL == "" {
		c.Providers.DexScreener.BaseURL = "https://api.dexscreener.com/latest/dex"
	}
	if c.Providers.GeckoTerminal.BaseURL == "" {
		c.Providers.GeckoTerminal.BaseURL = "https://api.geckoterminal.com/api/v2"
	}
	if c.Providers.Aggregator.BaseURL == "" {
		c.Providers.Aggregator.BaseURL = "https://www.okx.com/api/v5/dex/market/price-info"
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
