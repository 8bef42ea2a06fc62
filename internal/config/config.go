package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Media backend selection. ExternalHost wins when its config is present,
// otherwise S3; startup fails when neither is configured.
const (
	MediaBackendS3       = "s3"
	MediaBackendExternal = "external"
)

// Config holds all runtime configuration, read once at startup
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	JWTSecret string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	// S3 backend
	S3Bucket   string
	S3Region   string
	CDNBaseURL string

	// External media host backend
	ExternalMediaURL    string
	ExternalMediaAPIKey string
	ExternalMediaPreset string
}

// Load reads configuration from the environment (.env honored when present)
func Load() (*Config, error) {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "server.log"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Region:   getEnv("AWS_REGION", "us-east-1"),
		CDNBaseURL: os.Getenv("CDN_BASE_URL"),

		ExternalMediaURL:    os.Getenv("EXTERNAL_MEDIA_URL"),
		ExternalMediaAPIKey: os.Getenv("EXTERNAL_MEDIA_API_KEY"),
		ExternalMediaPreset: os.Getenv("EXTERNAL_MEDIA_PRESET"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-secret-do-not-use-in-prod"
	}

	return cfg, nil
}

// MediaBackend decides which upload backend the server runs with.
// The choice is made once here; the rest of the code only sees the
// MediaSink interface.
func (c *Config) MediaBackend() (string, error) {
	if c.ExternalMediaURL != "" {
		return MediaBackendExternal, nil
	}
	if c.S3Bucket != "" {
		return MediaBackendS3, nil
	}
	return "", fmt.Errorf("no media backend configured: set S3_BUCKET or EXTERNAL_MEDIA_URL")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
