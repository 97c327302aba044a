package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CAUSAL_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CAUSAL_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// APIKey returns the bearer token required on /v1 routes.
// Empty disables authentication.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// SeedGraphPath returns a YAML graph file loaded at startup, if any.
func SeedGraphPath() string {
	return os.Getenv("SEED_GRAPH_PATH")
}

// CacheSize returns the number of entries kept in the trace and
// visualization caches. Defaults to 256 if not set.
func CacheSize() int {
	n, err := strconv.Atoi(os.Getenv("CACHE_SIZE"))
	if err != nil || n <= 0 {
		return 256
	}
	return n
}

// StatsInterval returns how often graph statistics are refreshed.
// Defaults to 5m if not set.
func StatsInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("STATS_INTERVAL"))
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// OTLPEndpoint returns the OTLP gRPC collector address.
// Empty disables tracing.
func OTLPEndpoint() string {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

func OTLPInsecure() bool {
	v, err := strconv.ParseBool(os.Getenv("OTEL_INSECURE"))
	if err != nil {
		return true
	}
	return v
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
