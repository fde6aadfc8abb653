package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// External n8n workflow endpoints
	TriageWebhookURL           string
	LabWebhookURL              string
	BookingWebhookURL          string
	AdminRefreshWebhookURL     string
	ComplaintsWebhookURL       string
	ManageComplaintsWebhookURL string

	// Webhook client behavior
	WebhookTimeout    time.Duration
	WebhookMaxRetries int
	WebhookBackoff    time.Duration

	// Gemini AI extraction layer
	GeminiAPIKey  string
	GeminiModelID string
	GeminiTTSID   string

	// User directory
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	AuthJWTSecret string
	AuthTokenTTL  time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		TriageWebhookURL:           getEnv("TRIAGE_WEBHOOK_URL", ""),
		LabWebhookURL:              getEnv("LAB_WEBHOOK_URL", ""),
		BookingWebhookURL:          getEnv("BOOKING_WEBHOOK_URL", ""),
		AdminRefreshWebhookURL:     getEnv("ADMIN_REFRESH_WEBHOOK_URL", ""),
		ComplaintsWebhookURL:       getEnv("COMPLAINTS_WEBHOOK_URL", ""),
		ManageComplaintsWebhookURL: getEnv("MANAGE_COMPLAINTS_WEBHOOK_URL", ""),

		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 90*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBackoff:    getEnvAsDuration("WEBHOOK_BACKOFF", time.Second),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		GeminiTTSID:   getEnv("GEMINI_TTS_MODEL_ID", "gemini-2.5-flash-preview-tts"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		AuthTokenTTL:  getEnvAsDuration("AUTH_TOKEN_TTL", 12*time.Hour),
	}
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
