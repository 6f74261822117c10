// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Side-effect execution modes.
const (
	SideEffectsInline = "inline"
	SideEffectsStream = "stream"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	RedisURL    string `env:"REDIS_URL"`
	MongoDBURL  string `env:"MONGODB_URL"`
	MongoDBName string `env:"MONGODB_DATABASE" envDefault:"talent"`

	// Supabase
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	JWTSecret              string `env:"SUPABASE_JWT_SECRET"`

	// Storage
	CVBucket       string `env:"CV_BUCKET" envDefault:"consultant-cvs"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	UploadMaxBytes int    `env:"UPLOAD_MAX_BYTES" envDefault:"20971520"`

	// CORS
	FrontendURL    string   `env:"FRONTEND_URL"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Side effects and realtime
	SideEffectMode  string        `env:"SIDE_EFFECT_MODE" envDefault:"inline"`
	EffectStream    string        `env:"EFFECT_STREAM" envDefault:"consultant:effects"`
	RealtimeChannel string        `env:"REALTIME_CHANNEL" envDefault:"talent:realtime"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	// Stream consumer
	WorkerID          string `env:"WORKER_ID"`
	ConsumerBatchSize int64  `env:"CONSUMER_BATCH_SIZE" envDefault:"10"`
	ConsumerBlockMS   int    `env:"CONSUMER_BLOCK_MS" envDefault:"5000"`

	// Rate limiting of write endpoints, per actor
	WriteRateLimit  int           `env:"WRITE_RATE_LIMIT" envDefault:"60"`
	WriteRateWindow time.Duration `env:"WRITE_RATE_WINDOW" envDefault:"1m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.WorkerID == "" {
		cfg.WorkerID = generateWorkerID()
	}
	if cfg.FrontendURL != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, cfg.FrontendURL)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.SideEffectMode {
	case SideEffectsInline:
	case SideEffectsStream:
		if c.RedisURL == "" {
			return fmt.Errorf("SIDE_EFFECT_MODE=stream requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown SIDE_EFFECT_MODE %q", c.SideEffectMode)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SupabaseStorageEnabled is false when CVs should go to GridFS instead.
func (c *Config) SupabaseStorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

func (c *Config) ConsumerBlock() time.Duration {
	return time.Duration(c.ConsumerBlockMS) * time.Millisecond
}

// generateWorkerID names this process as a stream consumer.
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "talent"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
