package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName          = "NirvistaOnboard"
	defaultAppEnv           = "development"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultAPIBaseURL       = "https://nirv-ico.onrender.com"
	defaultAPITimeout       = 15 * time.Second
	defaultSessionCookie    = "onboard_sid"
	defaultSessionTTL       = 30 * 24 * time.Hour
	defaultPollInterval     = 5 * time.Second
	defaultStreamMaxAge     = 10 * time.Minute
	defaultSubmitGuardTTL   = 30 * time.Second
	defaultResendPerMinute  = 3
	defaultWorkspaceIdleTTL = 2 * time.Hour
	defaultShutdownDelay    = 10 * time.Second
	defaultAppDownloadURL   = "https://nirvista.io/app-release.apk"
	defaultPortalURL        = "https://portal.nirvista.io"
	defaultDialCode         = "+91"
	shutdownSecondsEnvVar   = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar  = "SHUTDOWN_TIMEOUT"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	APIBaseURL string
	APITimeout time.Duration

	StoreBackend string
	DatabaseURL  string
	RedisURL     string

	SessionCookie string
	SessionTTL    time.Duration
	CookieSecure  bool

	PollInterval       time.Duration
	StatusStreamMaxAge time.Duration
	SubmitGuardTTL     time.Duration
	ResendPerMinute    int
	WorkspaceIdleTTL   time.Duration
	ShutdownPeriod     time.Duration

	AppDownloadURL string
	PortalURL      string
	DialCode       string
}

// Load reads configuration values from the environment (and a local .env
// file when present) and populates a Config instance.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBaseURL), "/"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SessionCookie:  getEnv("SESSION_COOKIE", defaultSessionCookie),
		AppDownloadURL: getEnv("APP_DOWNLOAD_URL", defaultAppDownloadURL),
		PortalURL:      getEnv("PORTAL_URL", defaultPortalURL),
		DialCode:       getEnv("DIAL_CODE", defaultDialCode),
		ShutdownPeriod: defaultShutdownDelay,
	}

	var err error
	if cfg.APITimeout, err = durationEnv("API_TIMEOUT", defaultAPITimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", defaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.StatusStreamMaxAge, err = durationEnv("STATUS_STREAM_MAX_AGE", defaultStreamMaxAge); err != nil {
		return Config{}, err
	}
	if cfg.SubmitGuardTTL, err = durationEnv("SUBMIT_GUARD_TTL", defaultSubmitGuardTTL); err != nil {
		return Config{}, err
	}
	if cfg.WorkspaceIdleTTL, err = durationEnv("WORKSPACE_IDLE_TTL", defaultWorkspaceIdleTTL); err != nil {
		return Config{}, err
	}
	if cfg.ResendPerMinute, err = intEnv("RESEND_PER_MINUTE", defaultResendPerMinute); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolEnv("COOKIE_SECURE", !cfg.IsDev()); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL must be positive")
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}

	defaultBackend := BackendRedis
	if cfg.IsDev() {
		defaultBackend = BackendMemory
	}
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", defaultBackend))
	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when STORE_BACKEND=redis")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when STORE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local/development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
