package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads .env files into the environment. A missing file is returned as an
// error that callers may ignore. With no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the environment variable named by key, or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

// Record store backends.
const (
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	TemporalHost      string
	TemporalNamespace string
	TemporalAPIKey    string
	TaskQueue         string

	RecordBackend string
	RedisURL      string
	DatabaseDSN   string

	ArtifactDir    string
	ArtifactPrefix string

	FeedBaseURL string
	FeedTimeout time.Duration

	PollInterval time.Duration
	TickBudget   time.Duration
	KickoffLead  time.Duration

	SlackWebhookURL string
	PublishUpdates  bool

	MetricsAddr string
	Port        string
	LogLevel    string
	LogFormat   string
}

// FromEnv builds a Config from the environment, applying defaults.
func FromEnv() Config {
	return Config{
		TemporalHost:      GetEnv("TEMPORAL_HOST", "localhost:7233"),
		TemporalNamespace: GetEnv("TEMPORAL_NAMESPACE", "default"),
		TemporalAPIKey:    os.Getenv("TEMPORAL_API_KEY"),
		TaskQueue:         GetEnv("TASK_QUEUE", "nba-game-poller-task-queue"),

		RecordBackend: strings.ToLower(GetEnv("RECORD_BACKEND", BackendRedis)),
		RedisURL:      GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),

		ArtifactDir:    GetEnv("ARTIFACT_DIR", "./artifacts"),
		ArtifactPrefix: GetEnv("ARTIFACT_PREFIX", "data/"),

		FeedBaseURL: GetEnv("FEED_BASE_URL", "https://cdn.nba.com/static/json/liveData"),
		FeedTimeout: GetEnvDuration("FEED_TIMEOUT", 5*time.Second),

		PollInterval: GetEnvDuration("POLL_INTERVAL", time.Minute),
		TickBudget:   GetEnvDuration("TICK_BUDGET", 55*time.Second),
		KickoffLead:  GetEnvDuration("KICKOFF_LEAD", 15*time.Minute),

		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		PublishUpdates:  GetEnvBool("PUBLISH_UPDATES", false),

		MetricsAddr: os.Getenv("METRICS_ADDR"),
		Port:        GetEnv("PORT", "8080"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		LogFormat:   GetEnv("LOG_FORMAT", "text"),
	}
}

// IsLocalTemporal reports whether the Temporal host is a local dev server,
// which runs without TLS or an API key.
func (c Config) IsLocalTemporal() bool {
	return c.TemporalHost == "localhost:7233" || c.TemporalHost == "host.docker.internal:7233"
}

// Validate reports every missing or inconsistent setting.
func (c Config) Validate() error {
	var errs []error
	if c.TemporalHost == "" {
		errs = append(errs, errors.New("TEMPORAL_HOST is not set"))
	}
	if c.TemporalNamespace == "" {
		errs = append(errs, errors.New("TEMPORAL_NAMESPACE is not set"))
	}
	if !c.IsLocalTemporal() && c.TemporalAPIKey == "" {
		errs = append(errs, errors.New("TEMPORAL_API_KEY is not set"))
	}
	switch c.RecordBackend {
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is not set"))
		}
	case BackendSQLite, BackendPostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("DATABASE_DSN is required for %s", c.RecordBackend))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown RECORD_BACKEND %q", c.RecordBackend))
	}
	if c.TickBudget <= 0 {
		errs = append(errs, errors.New("TICK_BUDGET must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}
