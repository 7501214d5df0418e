package config

import (
	"os"
	"strconv"
	"strings"
)

// Config captures process-level configuration.
type Config struct {
	Addr              string
	RedisURL          string
	PostgresDSN       string
	KafkaBrokers      []string
	KafkaTopic        string
	MasterSecret      string
	WithdrawalBaseURL string

	// ConsentRetentionYears overrides the consent retention window.
	// Jurisdiction-specific retention periods may differ from the default.
	ConsentRetentionYears int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("PROOFGUARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	masterSecret := os.Getenv("PROOFGUARD_MASTER_SECRET")
	if masterSecret == "" {
		// Development default - must be overridden in production.
		masterSecret = "dev-secret-key-change-in-production"
	}

	baseURL := os.Getenv("PROOFGUARD_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	retentionYears := 0
	if v := os.Getenv("PROOFGUARD_CONSENT_RETENTION_YEARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			retentionYears = n
		}
	}

	var brokers []string
	if v := os.Getenv("PROOFGUARD_KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	return Config{
		Addr:                  addr,
		RedisURL:              os.Getenv("PROOFGUARD_REDIS_URL"),
		PostgresDSN:           os.Getenv("PROOFGUARD_POSTGRES_DSN"),
		KafkaBrokers:          brokers,
		KafkaTopic:            os.Getenv("PROOFGUARD_KAFKA_TOPIC"),
		MasterSecret:          masterSecret,
		WithdrawalBaseURL:     baseURL,
		ConsentRetentionYears: retentionYears,
	}
}
