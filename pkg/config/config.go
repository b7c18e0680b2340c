// Package config loads amplify's settings.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (unknown keys are rejected)
//  3. environment variables prefixed with AMPLIFY_
//  4. command-line flags, applied by the caller
//
// Example file:
//
//	[synth]
//	noise_fraction = 0.2
//	swap_probability = 0.3
//
//	[augment]
//	max_rotation = 10
//	fill = "#ffffff"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/amplify/pkg/augment"
	"github.com/matzehuels/amplify/pkg/cache"
	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/synth"
)

const (
	appName   = "amplify"
	envPrefix = "AMPLIFY_"
	fileName  = "config.toml"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full set of settings.
type Config struct {
	Synth   SynthConfig   `toml:"synth"`
	Augment AugmentConfig `toml:"augment"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
}

// SynthConfig mirrors synth.Options.
type SynthConfig struct {
	NoiseFraction   float64 `toml:"noise_fraction"   env:"SYNTH_NOISE_FRACTION"`
	SwapProbability float64 `toml:"swap_probability" env:"SYNTH_SWAP_PROBABILITY"`
}

// AugmentConfig mirrors augment.Params plus batch and output settings.
type AugmentConfig struct {
	RotateProbability float64 `toml:"rotate_probability" env:"AUGMENT_ROTATE_PROBABILITY"`
	MaxRotation       int     `toml:"max_rotation"       env:"AUGMENT_MAX_ROTATION"`
	FlipProbability   float64 `toml:"flip_probability"   env:"AUGMENT_FLIP_PROBABILITY"`
	BrightnessMin     float64 `toml:"brightness_min"     env:"AUGMENT_BRIGHTNESS_MIN"`
	BrightnessMax     float64 `toml:"brightness_max"     env:"AUGMENT_BRIGHTNESS_MAX"`
	ContrastMin       float64 `toml:"contrast_min"       env:"AUGMENT_CONTRAST_MIN"`
	ContrastMax       float64 `toml:"contrast_max"       env:"AUGMENT_CONTRAST_MAX"`
	Fill              string  `toml:"fill"               env:"AUGMENT_FILL"` // #rrggbb
	Workers           int     `toml:"workers"            env:"AUGMENT_WORKERS"`
	Format            string  `toml:"format"             env:"AUGMENT_FORMAT"`
	Quality           int     `toml:"quality"            env:"AUGMENT_QUALITY"`
	WorkDir           string  `toml:"work_dir"           env:"AUGMENT_WORK_DIR"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"        env:"CACHE_BACKEND"`
	Dir           string        `toml:"dir"            env:"CACHE_DIR"`
	ExpandTTL     time.Duration `toml:"expand_ttl"     env:"CACHE_EXPAND_TTL"`
	AugmentTTL    time.Duration `toml:"augment_ttl"    env:"CACHE_AUGMENT_TTL"`
	RedisAddr     string        `toml:"redis_addr"     env:"CACHE_REDIS_ADDR"`
	RedisPassword string        `toml:"redis_password" env:"CACHE_REDIS_PASSWORD"`
	RedisDB       int           `toml:"redis_db"       env:"CACHE_REDIS_DB"`
	Prefix        string        `toml:"prefix"         env:"CACHE_PREFIX"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() *Config {
	so := synth.DefaultOptions()
	ap := augment.DefaultParams()
	return &Config{
		Synth: SynthConfig{
			NoiseFraction:   so.NoiseFraction,
			SwapProbability: so.SwapProbability,
		},
		Augment: AugmentConfig{
			RotateProbability: ap.RotateProbability,
			MaxRotation:       ap.MaxRotation,
			FlipProbability:   ap.FlipProbability,
			BrightnessMin:     ap.BrightnessMin,
			BrightnessMax:     ap.BrightnessMax,
			ContrastMin:       ap.ContrastMin,
			ContrastMax:       ap.ContrastMax,
			Fill:              FormatColor(ap.Fill),
			Format:            "jpeg",
			Quality:           95,
		},
		Cache: CacheConfig{
			Backend:    BackendFile,
			ExpandTTL:  cache.TTLExpand,
			AugmentTTL: cache.TTLAugment,
			Prefix:     "amplify:",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path reads DefaultPath if it exists; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.SynthOptions().Validate(); err != nil {
		return err
	}
	p, err := c.AugmentParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Augment.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be non-negative, got %d", c.Augment.Workers)
	}
	switch strings.ToLower(c.Augment.Format) {
	case "", "jpg", "jpeg", "png":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "format must be jpeg or png, got %q", c.Augment.Format)
	}
	if c.Augment.Quality < 0 || c.Augment.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "quality must be within [0, 100], got %d", c.Augment.Quality)
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis backend requires redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.ExpandTTL < 0 || c.Cache.AugmentTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache TTLs must be non-negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "log level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// SynthOptions converts the synth section.
func (c *Config) SynthOptions() synth.Options {
	return synth.Options{
		NoiseFraction:   c.Synth.NoiseFraction,
		SwapProbability: c.Synth.SwapProbability,
	}
}

// AugmentParams converts the augment section. It fails only on a malformed
// fill colour.
func (c *Config) AugmentParams() (augment.Params, error) {
	fill, err := ParseColor(c.Augment.Fill)
	if err != nil {
		return augment.Params{}, err
	}
	return augment.Params{
		RotateProbability: c.Augment.RotateProbability,
		MaxRotation:       c.Augment.MaxRotation,
		FlipProbability:   c.Augment.FlipProbability,
		BrightnessMin:     c.Augment.BrightnessMin,
		BrightnessMax:     c.Augment.BrightnessMax,
		ContrastMin:       c.Augment.ContrastMin,
		ContrastMax:       c.Augment.ContrastMax,
		Fill:              fill,
	}, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ParseColor parses "#rrggbb" (the '#' is optional) into an opaque colour.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidConfig, "colour %q must be #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// FormatColor renders c as "#rrggbb".
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// DefaultPath returns $XDG_CONFIG_HOME/amplify/config.toml, falling back to
// ~/.config/amplify/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// CacheDir returns the configured cache directory, or the XDG default
// ($XDG_CACHE_HOME/amplify, falling back to ~/.cache/amplify).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return expandHome(c.Cache.Dir)
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
