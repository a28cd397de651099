package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Trending  TrendingConfig  `mapstructure:"trending"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MongoConfig contains document store configuration
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig contains cache store configuration. The cache is optional:
// when the connection fails the service runs store-only.
type RedisConfig struct {
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

// CacheConfig contains the TTLs of the cache-aside layer.
type CacheConfig struct {
	ListingTTL         time.Duration `mapstructure:"listing_ttl"`
	DetailTTL          time.Duration `mapstructure:"detail_ttl"`
	DetailWithViewsTTL time.Duration `mapstructure:"detail_with_views_ttl"`
	TrendingTTL        time.Duration `mapstructure:"trending_ttl"`
	EnglishTrendingTTL time.Duration `mapstructure:"english_trending_ttl"`
	CounterTTL         time.Duration `mapstructure:"counter_ttl"`
	RelatedTTL         time.Duration `mapstructure:"related_ttl"`
	LocationsTTL       time.Duration `mapstructure:"locations_ttl"`
	FreshWindow        time.Duration `mapstructure:"fresh_window"`
}

// TrendingConfig contains trending-list configuration per article variant.
type TrendingConfig struct {
	Size            int           `mapstructure:"size"`
	EnglishSize     int           `mapstructure:"english_size"`
	EnglishMaxViews int64         `mapstructure:"english_max_views"` // 0 disables the upper bound
	RefreshWindow   time.Duration `mapstructure:"refresh_window"`
}

// SchedulerConfig contains the scheduled-publish job configuration.
type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// CORSConfig contains CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load loads configuration from file and environment variables
// Priority: ENV vars > config.yaml > defaults
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("EVEREST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file is optional, env vars and defaults carry the rest
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "everestnews")
	viper.SetDefault("mongo.connect_timeout", "10s")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.connect_timeout", "5s")
	viper.SetDefault("redis.health_interval", "5s")

	viper.SetDefault("cache.listing_ttl", "300s")
	viper.SetDefault("cache.detail_ttl", "600s")
	viper.SetDefault("cache.detail_with_views_ttl", "300s")
	viper.SetDefault("cache.trending_ttl", "3600s")
	viper.SetDefault("cache.english_trending_ttl", "1800s")
	viper.SetDefault("cache.counter_ttl", "120s")
	viper.SetDefault("cache.related_ttl", "600s")
	viper.SetDefault("cache.locations_ttl", "3600s")
	viper.SetDefault("cache.fresh_window", "60s")

	viper.SetDefault("trending.size", 9)
	viper.SetDefault("trending.english_size", 10)
	viper.SetDefault("trending.english_max_views", 1000)
	viper.SetDefault("trending.refresh_window", "168h") // 7 days

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.interval", "1m")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.Mode != "debug" && cfg.Server.Mode != "release" {
		return fmt.Errorf("server.mode must be 'debug' or 'release', got: %s", cfg.Server.Mode)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}

	if cfg.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if cfg.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required")
	}

	if cfg.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}

	if cfg.Trending.Size < 1 {
		return fmt.Errorf("trending.size must be at least 1, got: %d", cfg.Trending.Size)
	}
	if cfg.Trending.EnglishSize < 1 {
		return fmt.Errorf("trending.english_size must be at least 1, got: %d", cfg.Trending.EnglishSize)
	}
	if cfg.Trending.RefreshWindow <= 0 {
		return fmt.Errorf("trending.refresh_window must be positive")
	}

	if cfg.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got: %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text', got: %s", cfg.Logging.Format)
	}

	return nil
}
