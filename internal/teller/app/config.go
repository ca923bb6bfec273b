package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer    string // Required: issuer claim for tokens
	JWTSecret string // Required in prod: HS256 signing secret (min 32 bytes)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 2h)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 24h)
	Leeway     time.Duration // Optional: clock skew tolerance for exp/nbf (default: 1h)

	RateLimitRequests int           // Optional: gateway sliding window size (default: 60)
	RateLimitWindow   time.Duration // Optional: gateway sliding window span (default: 1m)
	MaxStringLength   int           // Optional: sanitizer string truncation length (default: 512)
	AccountPattern    string        // Optional: account number format
	AmountPattern     string        // Optional: amount format
	ToolTimeout       time.Duration // Optional: per-tool execution deadline (default: 10s)

	ModelURL    string // Optional: OpenAI-compatible chat endpoint; chat degrades gracefully without it
	ModelAPIKey string // Optional: bearer key for the model endpoint
	ModelName   string // Optional: model name sent with each chat call

	DevMode     bool     // Optional: honour the development identity claim at issuance
	DevSubjects []string // Optional: user ids granted the development claim (requires DevMode)

	BootstrapTenant   string // Optional: tenant for the bootstrap admin (default: "default")
	BootstrapUsername string // Optional: bootstrap admin username (default: "admin")
	BootstrapPassword string // Optional: bootstrap admin password; generated when empty

	AllowedOrigins       []string      // Optional: CORS allow list
	DatabaseFile         string        // Optional: path to SQLite database file (default: ./teller.db)
	PepperFile           string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:    getEnvOrDefault("TELLER_ISSUER", "tellerdesk"),
		JWTSecret: os.Getenv("TELLER_JWT_SECRET"),

		AccessTTL:  getEnvDurationOrDefault("TELLER_ACCESS_TTL", 2*time.Hour),
		RefreshTTL: getEnvDurationOrDefault("TELLER_REFRESH_TTL", 24*time.Hour),
		Leeway:     getEnvDurationOrDefault("TELLER_LEEWAY", time.Hour),

		RateLimitRequests: getEnvIntOrDefault("TELLER_RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getEnvDurationOrDefault("TELLER_RATE_LIMIT_WINDOW", time.Minute),
		MaxStringLength:   getEnvIntOrDefault("TELLER_MAX_STRING_LENGTH", 512),
		AccountPattern: getEnvOrDefault(
			"TELLER_ACCOUNT_NUMBER_PATTERN",
			`^(Acc[0-9]+|[0-9]{10,20})$`,
		),
		AmountPattern: getEnvOrDefault(
			"TELLER_AMOUNT_PATTERN",
			`^[0-9]+(\.[0-9]{1,2})?$`,
		),
		ToolTimeout: getEnvDurationOrDefault("TELLER_TOOL_TIMEOUT", 10*time.Second),

		ModelURL:    os.Getenv("TELLER_MODEL_URL"),
		ModelAPIKey: os.Getenv("TELLER_MODEL_API_KEY"),
		ModelName:   getEnvOrDefault("TELLER_MODEL_NAME", "gpt-4o-mini"),

		DevMode:     getEnvOrDefault("TELLER_DEV_MODE", "") == "true",
		DevSubjects: splitCommaList(os.Getenv("TELLER_DEV_SUBJECTS")),

		BootstrapTenant:   getEnvOrDefault("TELLER_BOOTSTRAP_TENANT", "default"),
		BootstrapUsername: getEnvOrDefault("TELLER_BOOTSTRAP_USERNAME", "admin"),
		BootstrapPassword: os.Getenv("TELLER_BOOTSTRAP_PASSWORD"),

		AllowedOrigins:       splitCommaList(os.Getenv("TELLER_ALLOWED_ORIGINS")),
		DatabaseFile:         getEnvOrDefault("TELLER_DATABASE_FILE", "teller.db"),
		PepperFile:           getEnvOrDefault("TELLER_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func splitCommaList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
