// Package config provides configuration management for the application. It
// handles loading, validation, and access to configuration values from YAML
// files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/scheduler"
	"github.com/jonesrussell/chatscrape/internal/target"
)

// Server defaults.
const (
	defaultServerAddress      = ":8085"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
)

// envPrefix namespaces environment variable overrides (CHATSCRAPE_*).
const envPrefix = "CHATSCRAPE"

// ServerConfig holds the ingest API server configuration.
type ServerConfig struct {
	// Address is the listen address.
	Address string `mapstructure:"address"`
	// ReadTimeout bounds request reads.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return errors.New("address is required")
	}
	return nil
}

// RedisConfig holds the persistence relay's Redis connection settings.
type RedisConfig struct {
	// Enabled selects the Redis relay; disabled runs use the in-memory store.
	Enabled bool `mapstructure:"enabled"`
	// Addr is the Redis address.
	Addr string `mapstructure:"addr"`
	// Password is the Redis password, if any.
	Password string `mapstructure:"password"`
	// DB is the Redis database number.
	DB int `mapstructure:"db"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return errors.New("addr is required when redis is enabled")
	}
	return nil
}

// Config represents the application configuration.
type Config struct {
	// Server holds the ingest API configuration.
	Server ServerConfig `mapstructure:"server"`
	// Logging holds the logger configuration.
	Logging logger.Config `mapstructure:"logging"`
	// Redis holds the persistence relay connection settings.
	Redis RedisConfig `mapstructure:"redis"`
	// Scheduler holds scan-scheduling settings and per-target timing
	// overrides.
	Scheduler scheduler.Config `mapstructure:"scheduler"`
	// Heuristics holds the turn-inference tuning constants. These are
	// empirical; confirm against current target layouts before changing.
	Heuristics target.Heuristics `mapstructure:"heuristics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if c.Heuristics.MaxAscentDepth <= 0 {
		return errors.New("heuristics: max_ascent_depth must be positive")
	}
	if c.Heuristics.SiblingWindow <= 0 {
		return errors.New("heuristics: sibling_window must be positive")
	}
	return nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      defaultServerAddress,
			ReadTimeout:  defaultServerReadTimeout,
			WriteTimeout: defaultServerWriteTimeout,
		},
		Logging: logger.Config{
			Level:    logger.DefaultLevel,
			Encoding: logger.DefaultEncoding,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Scheduler: scheduler.Config{
			MaxSettleRetries: scheduler.DefaultMaxSettleRetries,
		},
		Heuristics: target.DefaultHeuristics(),
	}
}

// Load loads configuration from the given path (optional) with environment
// overrides applied on top of defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.chatscrape")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit path or a
		// malformed file is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)

	v.SetDefault("logging.level", string(defaults.Logging.Level))
	v.SetDefault("logging.encoding", defaults.Logging.Encoding)

	v.SetDefault("redis.enabled", defaults.Redis.Enabled)
	v.SetDefault("redis.addr", defaults.Redis.Addr)
	v.SetDefault("redis.db", defaults.Redis.DB)

	v.SetDefault("scheduler.max_settle_retries", defaults.Scheduler.MaxSettleRetries)
	v.SetDefault("scheduler.rescan_cron", defaults.Scheduler.RescanCron)

	h := defaults.Heuristics
	v.SetDefault("heuristics.max_ascent_depth", h.MaxAscentDepth)
	v.SetDefault("heuristics.sibling_window", h.SiblingWindow)
	v.SetDefault("heuristics.min_assistant_text_len", h.MinAssistantTextLen)
	v.SetDefault("heuristics.min_block_height", h.MinBlockHeight)
	v.SetDefault("heuristics.min_gap", h.MinGap)
	v.SetDefault("heuristics.substring_dedup_ratio", h.SubstringDedupRatio)
	v.SetDefault("heuristics.sentence_keep_ratio", h.SentenceKeepRatio)
	v.SetDefault("heuristics.disclaimer_dominance_ratio", h.DisclaimerDominanceRatio)
	v.SetDefault("heuristics.progress_dominance_ratio", h.ProgressDominanceRatio)
	v.SetDefault("heuristics.short_turn_length", h.ShortTurnLength)
}
