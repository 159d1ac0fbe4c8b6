// Package config loads directory-cli configuration from config.yaml and the
// environment and initializes the global logger.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Ranking RankingConfig `yaml:"ranking" mapstructure:"ranking"`
	Dedupe  DedupeConfig  `yaml:"dedupe" mapstructure:"dedupe"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Import  ImportConfig  `yaml:"import" mapstructure:"import"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RankingConfig holds the listing score weights. Tier weight keys are lower
// case tier names.
type RankingConfig struct {
	TierWeights       map[string]float64 `yaml:"tier_weights" mapstructure:"tier_weights"`
	TierPoints        float64            `yaml:"tier_points" mapstructure:"tier_points"`
	ReviewMultiplier  float64            `yaml:"review_multiplier" mapstructure:"review_multiplier"`
	PhotoPoints       float64            `yaml:"photo_points" mapstructure:"photo_points"`
	PhotoCap          int                `yaml:"photo_cap" mapstructure:"photo_cap"`
	RecencyWindowDays int                `yaml:"recency_window_days" mapstructure:"recency_window_days"`
}

// DedupeConfig configures company/contact duplicate detection.
type DedupeConfig struct {
	// EmailScope is "global" (an email match anywhere is a duplicate) or
	// "company" (email matches only count within the candidate's company).
	EmailScope    string `yaml:"email_scope" mapstructure:"email_scope"`
	MaxCandidates int    `yaml:"max_candidates" mapstructure:"max_candidates"`
	PrefixLen     int    `yaml:"prefix_len" mapstructure:"prefix_len"`
	MaxAttempts   int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// CacheConfig configures the optional Redis cache for ranked listing pages.
// An empty RedisAddr disables caching.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	TTLSecs       int    `yaml:"ttl_secs" mapstructure:"ttl_secs"`
}

// ImportConfig configures bulk imports.
type ImportConfig struct {
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DIRECTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("ranking.tier_weights", map[string]float64{
		"bronze":   1,
		"silver":   2,
		"gold":     3,
		"platinum": 4,
	})
	v.SetDefault("ranking.tier_points", 100.0)
	v.SetDefault("ranking.review_multiplier", 20.0)
	v.SetDefault("ranking.photo_points", 5.0)
	v.SetDefault("ranking.photo_cap", 8)
	v.SetDefault("ranking.recency_window_days", 30)
	v.SetDefault("dedupe.email_scope", "global")
	v.SetDefault("dedupe.max_candidates", 25)
	v.SetDefault("dedupe.prefix_len", 3)
	v.SetDefault("dedupe.max_attempts", 3)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl_secs", 300)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		fallthrough
	case "import", "rank", "dedupe", "migrate":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Dedupe.EmailScope {
	case "global", "company":
	default:
		errs = append(errs, fmt.Sprintf("dedupe.email_scope must be \"global\" or \"company\", got %q", c.Dedupe.EmailScope))
	}
	if c.Dedupe.MaxCandidates < 1 || c.Dedupe.MaxCandidates > 500 {
		errs = append(errs, "dedupe.max_candidates must be between 1 and 500")
	}
	if c.Dedupe.PrefixLen < 1 {
		errs = append(errs, "dedupe.prefix_len must be >= 1")
	}
	if c.Dedupe.MaxAttempts < 1 {
		errs = append(errs, "dedupe.max_attempts must be >= 1")
	}
	if c.Cache.TTLSecs < 0 {
		errs = append(errs, "cache.ttl_secs must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
