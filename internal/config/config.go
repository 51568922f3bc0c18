package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret = "hostel-dev-secret"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	RedisURL  string
	JWTSecret string

	// Uploads
	UploadDir      string
	UploadMaxBytes int64

	// Issue creations per student per 24h, 0 disables the limiter
	IssueRateLimit int

	// Policy for the two routes that were public in the legacy deployment
	PublicIssueListing  bool
	PublicStatusUpdates bool

	CORSOrigins []string

	// Optional admin account created at startup
	AdminName     string
	AdminEmail    string
	AdminPassword string

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	environment := getEnv("ENVIRONMENT", getEnv("NODE_ENV", EnvDevelopment))

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		Environment: environment,

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "hostel"),
		DBSSLMode:      os.Getenv("DB_SSLMODE"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		RedisURL:  os.Getenv("REDIS_URL"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 5*1024*1024)),

		IssueRateLimit: getEnvInt("ISSUE_RATE_LIMIT", 20),

		PublicIssueListing:  getEnvBool("PUBLIC_ISSUE_LISTING", true),
		PublicStatusUpdates: getEnvBool("PUBLIC_STATUS_UPDATES", true),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		Events: EventConfig{
			Broker:        getEnv("EVENTS_BROKER", BrokerGoChannel),
			KafkaBrokers:  getEnv("KAFKA_BROKERS", "localhost:9092"),
			RealtimeTopic: getEnv("REALTIME_TOPIC", "hostel.realtime"),
			ConsumerGroup: os.Getenv("KAFKA_CONSUMER_GROUP"),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = devJWTSecret
	}

	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", cfg.UploadMaxBytes)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// UsesDevSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

// DSN returns the postgres connection string. A DATABASE_URL wins over the
// discrete DB_* fields. TLS is required in production or when a URL is given,
// unless DB_SSLMODE says otherwise.
func (c *Config) DSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		if c.IsProduction() || c.DatabaseURL != "" {
			sslMode = "require"
		} else {
			sslMode = "disable"
		}
	}

	if c.DatabaseURL != "" {
		u, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return c.DatabaseURL
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", sslMode)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// LogPolicy records the access policy of the legacy public routes.
func (c *Config) LogPolicy(logger *slog.Logger) {
	logger.Info("Route access policy",
		"public_issue_listing", c.PublicIssueListing,
		"public_status_updates", c.PublicStatusUpdates)
	if c.UsesDevSecret() {
		logger.Warn("JWT_SECRET not set, using development secret")
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
