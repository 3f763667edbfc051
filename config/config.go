// File: /config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	// Database
	DBDriver      string
	DatabaseURL   string
	DBReplicaURLs []string
	SeedData      bool

	// Auth
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// HTTP
	AllowedOrigins     []string
	PageSize           int
	RateLimitPerMinute int
	RateLimitBurst     int
	// TrustProxyHeaders honours X-Forwarded-Proto when building absolute URLs.
	TrustProxyHeaders bool

	// File storage
	StorageDriver string
	MediaRoot     string
	MediaURL      string
	S3Bucket      string
	S3Region      string
	S3PublicURL   string
	MaxUploadMB   int

	// ImageStrictTarget rejects images attached to both or neither of route/location.
	ImageStrictTarget bool
}

func Load() *Config {
	if getEnv("APP_ENV", "development") != "production" {
		// A missing .env is fine; real environments set variables directly.
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}
	}

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DatabaseURL:   getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/motoroutes?charset=utf8mb4&parseTime=True&loc=Local"),
		DBReplicaURLs: getList("DB_REPLICA_URLS"),
		SeedData:      getBool("SEED_DATA", false),

		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 24*time.Hour),

		AllowedOrigins:     getListDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		PageSize:           getInt("PAGE_SIZE", 20),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 50),
		TrustProxyHeaders:  getBool("TRUST_PROXY_HEADERS", false),

		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		MediaRoot:     getEnv("MEDIA_ROOT", "./media"),
		MediaURL:      getEnv("MEDIA_URL", "/media/"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3PublicURL:   getEnv("S3_PUBLIC_URL", ""),
		MaxUploadMB:   getInt("MAX_UPLOAD_MB", 10),

		ImageStrictTarget: getBool("IMAGE_STRICT_TARGET", false),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getList(key string) []string {
	return getListDefault(key, nil)
}

func getListDefault(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
