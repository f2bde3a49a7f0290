package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                   string
	DatabaseURL            string
	JWTSecret              string
	DataEncryptionKey      string
	Environment            string
	LogLevel               string
	SeedHREmail            string
	SeedHRPassword         string
	SeedManagers           []string
	SeedManagerPassword    string
	EmailFrom              string
	EmailEnabled           bool
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPassword           string
	SMTPUseTLS             bool
	KafkaBrokers           []string
	KafkaNotificationTopic string
	RunMigrations          bool
	RunSeed                bool
	MaxBodyBytes           int64
	RateLimitPerMinute     int
	CORSAllowedOrigins     []string
	MetricsEnabled         bool
	LeaveDefaultAllocation float64
	CompanyEmailDomain     string
	NotifyWorkers          int
	NotifyQueueSize        int
	ShutdownTimeout        time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv load failed", "err", err)
	}

	return Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		DataEncryptionKey:      getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:            getEnv("APP_ENV", "development"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		SeedHREmail:            getEnv("SEED_HR_EMAIL", ""),
		SeedHRPassword:         getEnv("SEED_HR_PASSWORD", ""),
		SeedManagers:           getEnvList("SEED_MANAGERS"),
		SeedManagerPassword:    getEnv("SEED_MANAGER_PASSWORD", ""),
		EmailFrom:              getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:           getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:             getEnvBool("SMTP_USE_TLS", true),
		KafkaBrokers:           getEnvList("KAFKA_BROKERS"),
		KafkaNotificationTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "hrflow.notifications"),
		RunMigrations:          getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                getEnvBool("RUN_SEED", true),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS"),
		MetricsEnabled:         getEnvBool("METRICS_ENABLED", true),
		LeaveDefaultAllocation: getEnvFloat("LEAVE_DEFAULT_ALLOCATION", 27),
		CompanyEmailDomain:     getEnv("COMPANY_EMAIL_DOMAIN", ""),
		NotifyWorkers:          getEnvInt("NOTIFY_WORKERS", 2),
		NotifyQueueSize:        getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		ShutdownTimeout:        getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.IsProduction() && strings.TrimSpace(c.DataEncryptionKey) == "" {
		return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.LeaveDefaultAllocation <= 0 {
		return fmt.Errorf("LEAVE_DEFAULT_ALLOCATION must be positive")
	}
	if c.NotifyWorkers <= 0 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive")
	}
	return nil
}
