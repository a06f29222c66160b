package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	// LedgerMode selects the ledger client: "gateway" (default) talks to the
	// HTTP contract gateway, "memory" runs an in-process ledger for
	// development.
	LedgerMode          string
	LedgerGatewayURL    string
	LedgerGatewayAPIKey string
	LedgerTimeout       time.Duration
	// LedgerCompareFields is a comma-separated list of donation fields checked
	// during verification (blood_group, units, hospital). Empty keeps the
	// default of blood_group only.
	LedgerCompareFields string

	GeoIPDBPath      string
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTTTL:              time.Hour * time.Duration(getEnvInt("JWT_TTL_HOURS", 24)),
		LedgerMode:          getEnv("LEDGER_MODE", "gateway"),
		LedgerGatewayURL:    os.Getenv("LEDGER_GATEWAY_URL"),
		LedgerGatewayAPIKey: os.Getenv("LEDGER_GATEWAY_API_KEY"),
		LedgerTimeout:       time.Second * time.Duration(getEnvInt("LEDGER_TIMEOUT_SECONDS", 15)),
		LedgerCompareFields: os.Getenv("LEDGER_COMPARE_FIELDS"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		CORSOrigins:         splitNonEmpty(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.LedgerMode != "gateway" && cfg.LedgerMode != "memory" {
		return nil, fmt.Errorf("LEDGER_MODE must be gateway or memory, got %q", cfg.LedgerMode)
	}

	if cfg.LedgerMode == "gateway" && cfg.LedgerGatewayURL == "" {
		return nil, fmt.Errorf("LEDGER_GATEWAY_URL is required when LEDGER_MODE=gateway")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
