// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/andes-trip-manager/backend/internal/retry"
)

// Config holds all configuration values for the API server and tripctl.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret verifies HS256 bearer tokens. Required by the server.
	JWTSecret string

	// BackupDir receives the backups taken before imports. Defaults to "backups".
	BackupDir string

	// ExportLocale is the BCP 47 tag used for local date format exports.
	// Defaults to "pt-BR".
	ExportLocale string

	// MaxImportBytes caps import and restore bodies. Defaults to 50 MiB.
	MaxImportBytes int64

	// ImportConcurrency bounds the record writes in flight per category.
	ImportConcurrency int

	// Retry configures the retry runner used for every store operation.
	Retry retry.Config

	// RetryLogSize is how many attempts the diagnostics log keeps.
	RetryLogSize int

	// RateLimitRPS and RateLimitBurst throttle the import routes per user.
	RateLimitRPS   float64
	RateLimitBurst int

	// KafkaBrokers enables trip events when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool
}

// Load reads the server configuration from environment variables.
// Returns an error listing any required variables that are not set and any
// values that do not parse.
func Load() (Config, error) {
	return load("DATABASE_URL", "JWT_SECRET")
}

// LoadCLI is Load for tripctl, which talks to the database directly and
// needs no token secret.
func LoadCLI() (Config, error) {
	return load("DATABASE_URL")
}

// LoadFile adds the variables of a .env file to the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config.LoadFile: %w", err)
	}
	return nil
}

func load(required ...string) (Config, error) {
	p := &parser{}
	defaults := retry.DefaultConfig()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		BackupDir:         getEnv("BACKUP_DIR", "backups"),
		ExportLocale:      getEnv("EXPORT_LOCALE", "pt-BR"),
		MaxImportBytes:    p.int64("MAX_IMPORT_BYTES", 50<<20),
		ImportConcurrency: p.int("IMPORT_CONCURRENCY", 8),
		Retry: retry.Config{
			MaxAttempts:     p.int("RETRY_MAX_ATTEMPTS", defaults.MaxAttempts),
			InitialDelay:    p.duration("RETRY_INITIAL_DELAY", defaults.InitialDelay),
			DelayMultiplier: p.float("RETRY_DELAY_MULTIPLIER", defaults.DelayMultiplier),
			MaxDelay:        p.duration("RETRY_MAX_DELAY", defaults.MaxDelay),
		},
		RetryLogSize:   p.int("RETRY_LOG_SIZE", 1000),
		RateLimitRPS:   p.float("RATE_LIMIT_RPS", 1),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", 5),
		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "andes.trips"),
		MigrateOnStart: p.bool("MIGRATE_ON_START", false),
	}

	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(p.invalid) > 0 {
		problems = append(problems, "invalid values: "+strings.Join(p.invalid, ", "))
	}
	if err := cfg.Retry.Validate(); err != nil && len(p.invalid) == 0 {
		problems = append(problems, "retry settings: "+err.Error())
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parser reads typed variables, collecting the names of those that do not
// parse instead of failing on the first.
type parser struct {
	invalid []string
}

func (p *parser) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (p *parser) int(key string, fallback int) int {
	v, ok := p.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return n
}

func (p *parser) int64(key string, fallback int64) int64 {
	v, ok := p.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v, ok := p.lookup(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return f
}

// duration accepts Go durations ("1500ms", "2s") or a bare number of milliseconds.
func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v, ok := p.lookup(key)
	if !ok {
		return fallback
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return d
}

func (p *parser) bool(key string, fallback bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return b
}
