// Package config builds runtime configuration from environment variables so
// main stays lean. Empty Postgres and Redis URLs select the in-memory
// stores, which keeps local development dependency-free.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "medtrack/pkg/platform/strings"
)

// Server is the top-level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	SessionTTL      time.Duration
	BackfillWindow  int
	ShutdownTimeout time.Duration
	Postgres        PostgresConfig
	Redis           RedisConfig
	Kafka           KafkaConfig
}

// PostgresConfig selects and tunes the relational store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig selects and tunes the session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the audit sink when brokers are set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:            envString("MEDTRACK_ADDR", ":8080"),
		JWTSigningKey:   envString("MEDTRACK_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envString("MEDTRACK_JWT_ISSUER", "medtrack"),
		JWTAudience:     envString("MEDTRACK_JWT_AUDIENCE", "medtrack-api"),
		SessionTTL:      envDuration("MEDTRACK_SESSION_TTL", 24*time.Hour),
		BackfillWindow:  envInt("MEDTRACK_BACKFILL_WINDOW_DAYS", 29),
		ShutdownTimeout: envDuration("MEDTRACK_SHUTDOWN_TIMEOUT", 10*time.Second),
		Postgres: PostgresConfig{
			URL:             os.Getenv("MEDTRACK_POSTGRES_URL"),
			MaxOpenConns:    envInt("MEDTRACK_POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("MEDTRACK_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("MEDTRACK_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("MEDTRACK_REDIS_URL"),
			PoolSize:     envInt("MEDTRACK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("MEDTRACK_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("MEDTRACK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("MEDTRACK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("MEDTRACK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("MEDTRACK_KAFKA_BROKERS"),
			Topic:   envString("MEDTRACK_KAFKA_AUDIT_TOPIC", "medtrack.audit"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	// A broker listed twice is a config typo, not two brokers.
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}
