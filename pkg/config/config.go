package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
	// SiteURL is the root domain storefront sites live under, e.g. "convertlykit.com".
	SiteURL string
	// ClientOrigins is the CORS allowlist for the public storefront API.
	ClientOrigins []string
}

// JWTConfig holds JWT configuration for dashboard sessions
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// WebhookConfig holds inbound webhook verification settings
type WebhookConfig struct {
	// ClerkSigningSecret verifies identity-provider (svix) webhook signatures.
	ClerkSigningSecret string
}

// PaystackConfig holds payment provider settings. Secret keys are per-store
// and live on the stores table; only the API endpoint is configured globally.
type PaystackConfig struct {
	BaseURL string
}

// MailConfig holds the transactional email provider settings
type MailConfig struct {
	BaseURL string
	APIKey  string
	// Sender is the from-address domain used for outbound notifications.
	Sender string
}

// StorageConfig holds image storage settings
type StorageConfig struct {
	// PublicBaseURL is prepended to storage ids to resolve public image URLs.
	PublicBaseURL string
	// UploadBaseURL is where generated upload URLs point.
	UploadBaseURL string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Webhook     WebhookConfig
	Paystack    PaystackConfig
	Mail        MailConfig
	Storage     StorageConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", serviceName),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Info),
		},
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			Env:           getEnv("APP_ENV", "development"),
			SiteURL:       getEnv("SITE_URL", "localhost:3000"),
			ClientOrigins: getEnvAsSlice("CLIENT_ORIGINS", []string{"*"}),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Webhook: WebhookConfig{
			ClerkSigningSecret: getEnv("CLERK_SIGNING_SECRET", ""),
		},
		Paystack: PaystackConfig{
			BaseURL: getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		Mail: MailConfig{
			BaseURL: getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			APIKey:  getEnv("RESEND_API_KEY", ""),
			Sender:  getEnv("MAIL_SENDER", "onboarding@resend.dev"),
		},
		Storage: StorageConfig{
			PublicBaseURL: getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"),
			UploadBaseURL: getEnv("STORAGE_UPLOAD_URL", "http://localhost:8080/storage/upload"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("site_url", c.Server.SiteURL),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as comma-separated lists
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
