package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "regsync/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	LogFormat     string
	JWTSigningKey string
	JWTIssuer     string
	AdminToken    string
	DatabaseURL   string

	Sources   SourcesConfig
	Status    StatusConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

// SourcesConfig configures the upstream registration services.
type SourcesConfig struct {
	BaseURL      string
	AuthToken    string
	FetchTimeout time.Duration
	// File is an optional YAML source table, see LoadSourcesFile.
	File string
}

// StatusConfig configures the status mutation side channel.
type StatusConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// RedisConfig configures the Redis connection. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit stream. No brokers disables streaming.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RateLimitConfig configures per-user request limits.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	sourcesBase := getEnv("SOURCES_BASE_URL", "http://localhost:4000")
	sourcesToken := os.Getenv("SOURCES_AUTH_TOKEN")

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          getEnv("REGSYNC_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     getEnv("JWT_ISSUER", "regsync"),
		AdminToken:    getEnv("ADMIN_API_TOKEN", "dev-admin-token"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Sources: SourcesConfig{
			BaseURL:      sourcesBase,
			AuthToken:    sourcesToken,
			FetchTimeout: getDuration("SOURCES_FETCH_TIMEOUT", 10*time.Second),
			File:         os.Getenv("SOURCES_FILE"),
		},
		Status: StatusConfig{
			BaseURL:   getEnv("STATUS_BASE_URL", sourcesBase),
			AuthToken: getEnv("STATUS_AUTH_TOKEN", sourcesToken),
			Timeout:   getDuration("STATUS_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "regsync.audit"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  os.Getenv("DISABLE_RATE_LIMITING") != "true",
			Requests: getInt("RATELIMIT_REQUESTS", 60),
			Window:   getDuration("RATELIMIT_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getList(key string) []string {
	return platformstrings.SplitList(os.Getenv(key), ",")
}
