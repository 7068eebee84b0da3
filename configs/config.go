package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// Enabled reports whether generated media can be hosted on R2.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != "" && r.PublicURL != ""
}

type OpenAI struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Scheduler struct {
	Timezone        string
	RefreshInterval time.Duration
	Workers         int
	MaxInstances    int
	MisfireGrace    time.Duration
}

type Publisher struct {
	Timeout     time.Duration
	TelegramURL string
	LinkedInURL string
	GraphURL    string
}

type Config struct {
	HTTPPort         string
	PostgresURI      string
	RedisURI         string
	FrontendURL      string
	SecretKey        string
	CookieName       string
	LogLevel         slog.Level
	QueueConcurrency int
	ShutdownTimeout  time.Duration
	R2               R2
	OpenAI           OpenAI
	Scheduler        Scheduler
	Publisher        Publisher
}

func LoadConfig() *Config {
	return &Config{
		HTTPPort:         getEnv("HTTP_PORT", "3000"),
		PostgresURI:      getEnv("POSTGRES_URI", ""),
		RedisURI:         getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:        getEnv("SECRET_KEY", ""),
		CookieName:       getEnv("COOKIE_NAME", "marketing_agent_session"),
		LogLevel:         getLogLevel("LOG_LEVEL", slog.LevelInfo),
		QueueConcurrency: getInt("QUEUE_CONCURRENCY", 10),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		OpenAI: OpenAI{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Timeout: getDuration("OPENAI_TIMEOUT", time.Minute),
		},
		Scheduler: Scheduler{
			Timezone:        getEnv("SCHEDULER_TIMEZONE", "Europe/Berlin"),
			RefreshInterval: getDuration("SCHEDULER_REFRESH_INTERVAL", time.Minute),
			Workers:         getInt("SCHEDULER_WORKERS", 20),
			MaxInstances:    getInt("SCHEDULER_MAX_INSTANCES", 3),
			MisfireGrace:    getDuration("SCHEDULER_MISFIRE_GRACE", 5*time.Minute),
		},
		Publisher: Publisher{
			Timeout:     getDuration("PUBLISHER_TIMEOUT", 30*time.Second),
			TelegramURL: getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			LinkedInURL: getEnv("LINKEDIN_API_URL", "https://api.linkedin.com/v2"),
			GraphURL:    getEnv("GRAPH_API_URL", "https://graph.facebook.com/v20.0"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}

func getLogLevel(key string, defaultValue slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv(key)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultValue
	}
}
