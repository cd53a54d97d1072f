// Package config provides the configuration structure for the pinyin tools and service.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/ieee0824/pinyin-go/decoder"
	"github.com/ieee0824/pinyin-go/language"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a configuration value outside its allowed range.
var ErrInvalid = errors.New("invalid configuration")

// ModelConfig holds the paths of the persisted model documents.
type ModelConfig struct {
	UnigramPath string `toml:"unigram_path" yaml:"unigram_path"`
	BigramPath  string `toml:"bigram_path"  yaml:"bigram_path"`
}

// DecoderConfig holds the decoding parameters.
type DecoderConfig struct {
	Policy string `toml:"policy" yaml:"policy"`
	// BackoffPenalty overrides the tuned default of the policy when set.
	BackoffPenalty *float64 `toml:"backoff_penalty,omitempty" yaml:"backoff_penalty,omitempty"`
	Workers        int      `toml:"workers"                   yaml:"workers"`
}

// BuildConfig holds the model build parameters.
type BuildConfig struct {
	UnigramThreshold int64   `toml:"unigram_threshold" yaml:"unigram_threshold"`
	BigramThreshold  int64   `toml:"bigram_threshold"  yaml:"bigram_threshold"`
	FallbackCount    float64 `toml:"fallback_count"    yaml:"fallback_count"`
	// FallbackPath replaces the embedded fallback table when set.
	FallbackPath string `toml:"fallback_path" yaml:"fallback_path"`
}

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL              string `toml:"url"                 yaml:"url"`
	DecodeSubject    string `toml:"decode_subject"      yaml:"decode_subject"`
	ModelStoreBucket string `toml:"model_store_bucket"  yaml:"model_store_bucket"`
	UnigramKey       string `toml:"unigram_key"         yaml:"unigram_key"`
	BigramKey        string `toml:"bigram_key"          yaml:"bigram_key"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir" yaml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Model   ModelConfig   `toml:"model"   yaml:"model"`
	Decoder DecoderConfig `toml:"decoder" yaml:"decoder"`
	Build   BuildConfig   `toml:"build"   yaml:"build"`
	NATS    NATSConfig    `toml:"nats"    yaml:"nats"`
	Paths   PathsConfig   `toml:"paths"   yaml:"paths"`
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			UnigramPath: "unigrams.json",
			BigramPath:  "bigrams.json",
		},
		Decoder: DecoderConfig{
			Policy: decoder.DictionaryWord.String(),
		},
		Build: BuildConfig{
			UnigramThreshold: language.DefaultUnigramThreshold,
			BigramThreshold:  language.DefaultBigramThreshold,
			FallbackCount:    language.DefaultFallbackCount,
		},
		NATS: NATSConfig{
			URL:              "nats://127.0.0.1:4222",
			DecodeSubject:    "pinyin.decode",
			ModelStoreBucket: "PINYIN_MODELS",
			UnigramKey:       "unigrams.json",
			BigramKey:        "bigrams.json",
		},
		Paths: PathsConfig{
			BaseLogsDir: os.TempDir(),
		},
	}
}

// Load loads the configuration through the central configurator and applies defaults.
func Load(log *logger.Logger) (*Config, error) {
	cfg := Default()

	err := configurator.Load(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads a TOML (.toml) or YAML (.yaml, .yml) file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a build or decode.
func (c *Config) Validate() error {
	if _, err := c.DecoderConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Decoder.Workers < 0 {
		return fmt.Errorf("%w: decoder.workers must be non-negative, got %d", ErrInvalid, c.Decoder.Workers)
	}
	if c.Build.UnigramThreshold < 0 || c.Build.BigramThreshold < 0 {
		return fmt.Errorf("%w: build thresholds must be non-negative", ErrInvalid)
	}
	if c.Build.FallbackCount <= 0 || c.Build.FallbackCount >= 1 {
		return fmt.Errorf("%w: build.fallback_count must be in (0, 1), got %g", ErrInvalid, c.Build.FallbackCount)
	}
	return nil
}

// DecoderConfig returns the decoder parameters described by the configuration.
func (c *Config) DecoderConfig() (decoder.Config, error) {
	p, err := decoder.ParsePolicy(c.Decoder.Policy)
	if err != nil {
		return decoder.Config{}, err
	}

	cfg := decoder.DefaultConfig(p)
	if c.Decoder.BackoffPenalty != nil {
		cfg.BackoffPenalty = *c.Decoder.BackoffPenalty
	}

	if err := cfg.Validate(); err != nil {
		return decoder.Config{}, err
	}

	return cfg, nil
}

// BuildConfig returns the model build parameters described by the configuration.
func (c *Config) BuildConfig() language.BuildConfig {
	return language.BuildConfig{
		UnigramThreshold: c.Build.UnigramThreshold,
		BigramThreshold:  c.Build.BigramThreshold,
		FallbackCount:    c.Build.FallbackCount,
	}
}
