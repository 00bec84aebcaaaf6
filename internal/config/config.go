package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Redis
	RedisURL string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// Prayer times
	PrayerAPIURL          string
	PrayerLatitude        float64
	PrayerLongitude       float64
	PrayerMethod          int
	PrayerRefreshInterval time.Duration

	// Assistant
	AssistantSessionTTL time.Duration
	AssistantRateLimit  int

	// Logging & telemetry
	LogLevel    string
	LogFile     string
	MetricsFile string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		RedisURL: mustGetEnv("REDIS_URL"),
		// An empty key is allowed: the assistant answers with the unavailable notice.
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrentReqs:  getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		PrayerAPIURL:          getEnvOrDefault("PRAYER_API_URL", "https://api.aladhan.com"),
		PrayerLatitude:        getEnvAsFloatOrDefault("PRAYER_LATITUDE", 50.9848),
		PrayerLongitude:       getEnvAsFloatOrDefault("PRAYER_LONGITUDE", 11.0299),
		PrayerMethod:          getEnvAsIntOrDefault("PRAYER_METHOD", 3),
		PrayerRefreshInterval: getEnvAsDurationOrDefault("PRAYER_REFRESH_INTERVAL", 6*time.Hour),
		AssistantSessionTTL:   getEnvAsDurationOrDefault("ASSISTANT_SESSION_TTL", 2*time.Hour),
		AssistantRateLimit:    getEnvAsIntOrDefault("ASSISTANT_RATE_LIMIT", 20),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:               getEnvOrDefault("LOG_FILE", ""),
		MetricsFile:           getEnvOrDefault("METRICS_FILE", "logs/moschee_metrics.log"),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// AssistantEnabled reports whether a Gemini credential is configured.
func (c *Config) AssistantEnabled() bool {
	return c.GeminiAPIKey != ""
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

// getEnvAsDurationOrDefault accepts Go duration strings ("90m", "6h").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
