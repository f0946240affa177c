package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gridironhq/gridiron/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service. All values come from
// the environment; Load fails loudly on unparseable input.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// DBURL empty means in-memory repositories with demo seed data.
	DBURL                   string
	DBDisablePreparedBinary bool

	CacheEnabled bool
	CacheTTL     time.Duration

	CORSAllowedOrigins []string

	SeasonWeeks         int
	UsageCap            int
	ReconcileMaxWorkers int

	InternalJobToken string

	StatsFeedEnabled               bool
	StatsFeedBaseURL               string
	StatsFeedToken                 string
	StatsFeedTimeout               time.Duration
	StatsFeedMaxRetries            int
	StatsFeedCircuitEnabled        bool
	StatsFeedCircuitFailureCount   int
	StatsFeedCircuitOpenTimeout    time.Duration
	StatsFeedCircuitHalfOpenMaxReq int

	AccountBaseURL               string
	AccountIntrospectPath        string
	AccountTimeout               time.Duration
	AccountCacheTTL              time.Duration
	AccountCircuitEnabled        bool
	AccountCircuitFailureCount   int
	AccountCircuitOpenTimeout    time.Duration
	AccountCircuitHalfOpenMaxReq int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	PprofEnabled bool
	PprofAddr    string

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "gridiron-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true"); err != nil {
		return Config{}, err
	}

	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	if cfg.SeasonWeeks, err = getEnvAsInt("SEASON_WEEKS", 18); err != nil {
		return Config{}, fmt.Errorf("parse SEASON_WEEKS: %w", err)
	}
	if cfg.SeasonWeeks < 1 {
		return Config{}, fmt.Errorf("SEASON_WEEKS must be >= 1")
	}
	if cfg.UsageCap, err = getEnvAsInt("USAGE_CAP", 5); err != nil {
		return Config{}, fmt.Errorf("parse USAGE_CAP: %w", err)
	}
	if cfg.UsageCap < 1 {
		return Config{}, fmt.Errorf("USAGE_CAP must be >= 1")
	}
	if cfg.ReconcileMaxWorkers, err = getEnvAsInt("RECONCILE_MAX_WORKERS", 128); err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_MAX_WORKERS: %w", err)
	}
	if cfg.ReconcileMaxWorkers < 1 {
		return Config{}, fmt.Errorf("RECONCILE_MAX_WORKERS must be >= 1")
	}

	if err := loadStatsFeed(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadAccount(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadStatsFeed(cfg *Config) error {
	var err error
	if cfg.StatsFeedEnabled, err = getEnvAsBool("STATSFEED_ENABLED", "false"); err != nil {
		return err
	}
	cfg.StatsFeedBaseURL = strings.TrimSpace(getEnv("STATSFEED_BASE_URL", ""))
	cfg.StatsFeedToken = strings.TrimSpace(getEnv("STATSFEED_TOKEN", ""))
	if cfg.StatsFeedTimeout, err = getEnvAsDuration("STATSFEED_TIMEOUT", "20s"); err != nil {
		return err
	}
	if cfg.StatsFeedTimeout <= 0 {
		return fmt.Errorf("STATSFEED_TIMEOUT must be > 0")
	}
	if cfg.StatsFeedMaxRetries, err = getEnvAsInt("STATSFEED_MAX_RETRIES", 2); err != nil {
		return fmt.Errorf("parse STATSFEED_MAX_RETRIES: %w", err)
	}
	if cfg.StatsFeedMaxRetries < 0 {
		return fmt.Errorf("STATSFEED_MAX_RETRIES must be >= 0")
	}
	if cfg.StatsFeedCircuitEnabled, err = getEnvAsBool("STATSFEED_CIRCUIT_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.StatsFeedCircuitFailureCount, err = getEnvAsInt("STATSFEED_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse STATSFEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.StatsFeedCircuitFailureCount < 1 {
		return fmt.Errorf("STATSFEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.StatsFeedCircuitOpenTimeout, err = getEnvAsDuration("STATSFEED_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.StatsFeedCircuitOpenTimeout <= 0 {
		return fmt.Errorf("STATSFEED_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.StatsFeedCircuitHalfOpenMaxReq, err = getEnvAsInt("STATSFEED_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse STATSFEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.StatsFeedCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("STATSFEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.StatsFeedEnabled {
		if cfg.StatsFeedBaseURL == "" {
			return fmt.Errorf("STATSFEED_BASE_URL is required when STATSFEED_ENABLED=true")
		}
		if cfg.StatsFeedToken == "" {
			return fmt.Errorf("STATSFEED_TOKEN is required when STATSFEED_ENABLED=true")
		}
	}

	return nil
}

func loadAccount(cfg *Config) error {
	var err error
	cfg.AccountBaseURL = getEnv("ACCOUNT_BASE_URL", "http://localhost:8081")
	cfg.AccountIntrospectPath = getEnv("ACCOUNT_INTROSPECT_PATH", "/v1/auth/introspect")
	if cfg.AccountTimeout, err = getEnvAsDuration("ACCOUNT_TIMEOUT", "3s"); err != nil {
		return err
	}
	if cfg.AccountTimeout <= 0 {
		return fmt.Errorf("ACCOUNT_TIMEOUT must be > 0")
	}
	if cfg.AccountCacheTTL, err = getEnvAsDuration("ACCOUNT_CACHE_TTL", "60s"); err != nil {
		return err
	}
	if cfg.AccountCircuitEnabled, err = getEnvAsBool("ACCOUNT_CIRCUIT_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.AccountCircuitFailureCount, err = getEnvAsInt("ACCOUNT_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse ACCOUNT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.AccountCircuitFailureCount < 1 {
		return fmt.Errorf("ACCOUNT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.AccountCircuitOpenTimeout, err = getEnvAsDuration("ACCOUNT_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.AccountCircuitOpenTimeout <= 0 {
		return fmt.Errorf("ACCOUNT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.AccountCircuitHalfOpenMaxReq, err = getEnvAsInt("ACCOUNT_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse ACCOUNT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.AccountCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("ACCOUNT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", "false"); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", "false"); err != nil {
		return err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
