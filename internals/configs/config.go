package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ghg_inventory_backend/internals/helpers/logger"
)

var (
	Port             string
	JWTSecret        string
	RedisURL         string
	SummaryCacheTTL  time.Duration
	AutoMigrate      bool
	SeedOnStart      bool
	LogLevel         string
	LogFormat        string
	CorsAllowOrigins string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	// Managed platforms inject env directly; .env is only for local runs.
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			logger.Sugar.Warn(".env not found, using system environment")
		} else {
			logger.Sugar.Info(".env loaded")
		}
	}

	Port = GetEnv("PORT", "3000")
	JWTSecret = GetEnv("JWT_SECRET")
	RedisURL = GetEnv("REDIS_URL")
	SummaryCacheTTL = GetEnvDuration("SUMMARY_CACHE_TTL", 30*time.Second)
	AutoMigrate = GetEnvBool("DB_AUTO_MIGRATE", true)
	SeedOnStart = GetEnvBool("DB_SEED", false)
	LogLevel = GetEnv("LOG_LEVEL", "info")
	LogFormat = GetEnv("LOG_FORMAT", "console")
	CorsAllowOrigins = GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")

	if JWTSecret == "" {
		logger.Sugar.Error("JWT_SECRET is not set")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || value == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Sugar.Warnf("invalid int for %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func GetEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Sugar.Warnf("invalid bool for %s=%q, using %v", key, v, def)
		return def
	}
	return b
}

// GetEnvDuration accepts Go durations ("45s") or plain seconds ("45").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	logger.Sugar.Warnf("invalid duration for %s=%q, using %s", key, v, def)
	return def
}
