// Package config provides configuration loading and validation for fxswap.
// It uses Viper to load a YAML file with support for environment variable
// overrides prefixed with FXSWAP_, for example FXSWAP_FEE_BPS or
// FXSWAP_APP_LOG_LEVEL.
package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/govalues/decimal"
	"github.com/spf13/viper"

	"github.com/govalues/fxswap"
	"github.com/govalues/fxswap/rates"
)

// Config is the root configuration structure.
type Config struct {
	// App contains application-level settings.
	App AppConfig `mapstructure:"app"`
	// FeeBps is the conversion fee in basis points, added on top of the output.
	FeeBps int64 `mapstructure:"fee_bps"`
	// OutputDigits is the number of fractional digits written into the
	// computed field, -1 keeps all significant digits.
	OutputDigits int `mapstructure:"output_digits"`
	// Assets lists the known assets. Empty means the built-in list.
	Assets []AssetConfig `mapstructure:"assets"`
	// Pools lists liquidity pools priced by their reserves.
	Pools []PoolConfig `mapstructure:"pools"`
	// Rates lists scalar exchange rates.
	Rates []RateConfig `mapstructure:"rates"`
	// Cache configures how long fetched quotes are kept.
	Cache CacheConfig `mapstructure:"cache"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	// Name is the application name used in logs.
	Name string `mapstructure:"name"`
	// LogLevel sets logging verbosity: "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level"`
}

// AssetConfig describes a single asset.
type AssetConfig struct {
	ID       string `mapstructure:"id"`
	Decimals int    `mapstructure:"decimals"`
}

// PoolConfig describes a liquidity pool.
// Reserves are decimal amounts, e.g. "1.5" for 1.5 BTC.
type PoolConfig struct {
	A        string `mapstructure:"a"`
	ReserveA string `mapstructure:"reserve_a"`
	B        string `mapstructure:"b"`
	ReserveB string `mapstructure:"reserve_b"`
}

// RateConfig describes a scalar exchange rate: one unit of Base buys Rate
// units of Quote.
type RateConfig struct {
	Base  string `mapstructure:"base"`
	Quote string `mapstructure:"quote"`
	Rate  string `mapstructure:"rate"`
}

// CacheConfig contains quote cache settings.
type CacheConfig struct {
	// TTL is how long a fetched quote is reused.
	TTL time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fxswap")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("fee_bps", 50)
	v.SetDefault("output_digits", fxswap.TrimZeros)
	v.SetDefault("cache.ttl", rates.DefaultTTL)
}

// Load reads configuration from a YAML file at the given path.
// An empty path skips the file and uses defaults and environment variables only.
// Returns an error if the file cannot be read, parsed, or fails validation.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FXSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is valid.
// Pool reserves are checked when the pools are built, since they depend on
// asset decimals.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.FeeBps < 0 || c.FeeBps > fxswap.MaxFeeBps {
		return fmt.Errorf("fee_bps must be in range [0, %d], got %d", fxswap.MaxFeeBps, c.FeeBps)
	}

	if c.OutputDigits < fxswap.TrimZeros {
		return fmt.Errorf("output_digits must be -1 or greater, got %d", c.OutputDigits)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}

	seen := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		if a.ID == "" {
			return fmt.Errorf("assets[%d]: id is required", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("assets[%d]: duplicate id %s", i, a.ID)
		}
		seen[a.ID] = true
		if a.Decimals < 0 || a.Decimals > fxswap.Scale {
			return fmt.Errorf("asset %s: decimals must be in range [0, %d]", a.ID, fxswap.Scale)
		}
	}

	for i, p := range c.Pools {
		if p.A == "" || p.B == "" || p.A == p.B {
			return fmt.Errorf("pools[%d]: two distinct assets are required", i)
		}
		if p.ReserveA == "" || p.ReserveB == "" {
			return fmt.Errorf("pool %s/%s: reserve_a and reserve_b are required", p.A, p.B)
		}
	}

	for i, r := range c.Rates {
		if r.Base == "" || r.Quote == "" {
			return fmt.Errorf("rates[%d]: base and quote are required", i)
		}
		if _, err := decimal.Parse(r.Rate); err != nil {
			return fmt.Errorf("rate %s/%s: %w", r.Base, r.Quote, err)
		}
	}

	return nil
}

// Registry builds the asset registry.
// If no assets are configured, it contains [fxswap.KnownAssets].
func (c *Config) Registry() (*fxswap.Registry, error) {
	if len(c.Assets) == 0 {
		return fxswap.NewRegistry(fxswap.KnownAssets()...)
	}
	assets := make([]fxswap.Asset, 0, len(c.Assets))
	for _, a := range c.Assets {
		asset, err := fxswap.NewAsset(a.ID, a.Decimals)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return fxswap.NewRegistry(assets...)
}

// PoolSet builds the liquidity pools, reading reserves at the decimals of
// the assets in reg.
func (c *Config) PoolSet(reg *fxswap.Registry) (*rates.Pools, error) {
	pools := rates.NewPools()
	for _, p := range c.Pools {
		ra, err := parseReserve(reg, p.A, p.ReserveA)
		if err != nil {
			return nil, err
		}
		rb, err := parseReserve(reg, p.B, p.ReserveB)
		if err != nil {
			return nil, err
		}
		if err := pools.Add(p.A, ra, p.B, rb); err != nil {
			return nil, err
		}
	}
	return pools, nil
}

func parseReserve(reg *fxswap.Registry, id, s string) (*big.Int, error) {
	a, err := reg.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("pool reserve: %w", err)
	}
	r, err := a.ParseAmount(s)
	if err != nil {
		return nil, fmt.Errorf("pool reserve: %w", err)
	}
	return r, nil
}

// RateTable builds the scalar rate table.
func (c *Config) RateTable() (*rates.Table, error) {
	tbl := rates.NewTable()
	for _, r := range c.Rates {
		d, err := decimal.Parse(r.Rate)
		if err != nil {
			return nil, fmt.Errorf("rate %s/%s: %w", r.Base, r.Quote, err)
		}
		if err := tbl.Set(r.Base, r.Quote, d); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// Calculator builds the conversion calculator charging FeeBps.
func (c *Config) Calculator() (*fxswap.Calculator, error) {
	return fxswap.NewCalculator(c.FeeBps)
}
