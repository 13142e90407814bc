package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"magis-site/internal/status"
)

type Config struct {
	// Server configuration
	Environment string
	SiteName    string

	// Backend configuration
	BackendURL string
	BackendKey string

	// Admin allow-list
	AdminEmails []string

	// Redis configuration
	RedisURL string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	ContentChannel     string

	// Mail configuration
	ResendAPIKey string
	MailFrom     string

	// Security
	CSRFKey       []byte
	SecureCookies bool

	// Clock
	Location *time.Location

	// Heartbeat configuration
	HeartbeatInterval  time.Duration
	HeartbeatIdleAfter time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

// LoadConfig reads the environment (and a .env file when present) and
// fails when the backend URL or key is missing.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),
		SiteName:    getEnv("SITE_NAME", "Academia MAGIS"),

		// Backend
		BackendURL: strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		BackendKey: getEnv("BACKEND_KEY", ""),

		AdminEmails: ParseEmailList(getEnv("ADMIN_EMAILS", "")),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		ContentChannel:     getEnv("CONTENT_CHANNEL", "magis-content"),

		// Mail
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		MailFrom:     getEnv("MAIL_FROM", "Academia MAGIS <contato@academiamagis.com.br>"),

		SecureCookies: getEnvAsBool("SECURE_COOKIES", false),

		// Heartbeat
		HeartbeatInterval:  getEnvAsDuration("HEARTBEAT_INTERVAL", "12h"),
		HeartbeatIdleAfter: getEnvAsDuration("HEARTBEAT_IDLE_AFTER", "6h"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("%w: BACKEND_URL", status.ErrMissingConfig)
	}
	if cfg.BackendKey == "" {
		return nil, fmt.Errorf("%w: BACKEND_KEY", status.ErrMissingConfig)
	}

	key, err := loadCSRFKey(getEnv("CSRF_KEY", ""), cfg.Environment)
	if err != nil {
		return nil, err
	}
	cfg.CSRFKey = key

	cfg.Location = loadLocation(getEnv("TIMEZONE", "America/Sao_Paulo"))

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ParseEmailList splits a comma separated list, trimming and lower-casing
// each entry and dropping empty ones.
func ParseEmailList(raw string) []string {
	emails := []string{}
	for _, part := range strings.Split(raw, ",") {
		email := strings.ToLower(strings.TrimSpace(part))
		if email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}

func loadCSRFKey(keyHex, environment string) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%w: CSRF_KEY must be 64 hex characters", status.ErrMissingConfig)
		}
		return key, nil
	}
	if environment != "development" {
		return nil, fmt.Errorf("%w: CSRF_KEY", status.ErrMissingConfig)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func loadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	// Brazil has had no daylight saving time since 2019.
	return time.FixedZone("BRT", -3*60*60)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
