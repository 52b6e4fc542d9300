package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	JWT        JWTConfig
	Backend    BackendConfig    `mapstructure:"backend"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Social     SocialConfig     `mapstructure:"social"`
	Completion CompletionConfig `mapstructure:"completion"`
	Redis      RedisConfig
	Mongo      MongoConfig     `mapstructure:"mongo"`
	Tracing    TracingConfig   `mapstructure:"tracing"`
	CORS       CORSConfig      `mapstructure:"cors"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

// BackendConfig selects which remote goal schema the adapter speaks.
// Type is "mongo" (document/query store) or "rest" (resource API).
type BackendConfig struct {
	Type       string `mapstructure:"type"`
	Collection string `mapstructure:"collection"`
	BaseURL    string `mapstructure:"base_url"`
	APIToken   string `mapstructure:"api_token"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	PublicBase    string `mapstructure:"public_base"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
	Thumbnails    bool   `mapstructure:"thumbnails"`
	ThumbnailEdge int    `mapstructure:"thumbnail_edge"`
}

// SocialConfig selects the key-value store holding the social snapshots.
// Type is "redis" or "local" (JSON files under Path).
type SocialConfig struct {
	Storage      string `mapstructure:"storage"`
	Path         string `mapstructure:"path"`
	DirectoryURL string `mapstructure:"directory_url"`
}

type CompletionConfig struct {
	FanoutDelayMS int `mapstructure:"fanout_delay_ms"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("GOALSHARE")
	viper.AutomaticEnv()

	// Backend
	viper.BindEnv("backend.type", "BACKEND_TYPE")
	viper.BindEnv("backend.base_url", "BACKEND_BASE_URL")
	viper.BindEnv("backend.api_token", "BACKEND_API_TOKEN")

	// Mongo
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.database", "MONGO_DATABASE")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Social
	viper.BindEnv("social.storage", "SOCIAL_STORAGE")
	viper.BindEnv("social.directory_url", "SOCIAL_DIRECTORY_URL")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Completion.FanoutDelayMS == 0 {
		cfg.Completion.FanoutDelayMS = 800
	}
	if cfg.Storage.ThumbnailEdge == 0 {
		cfg.Storage.ThumbnailEdge = 512
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
