package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("convertlykit")
	require.NoError(t, err)

	assert.Equal(t, "convertlykit", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, []string{"*"}, cfg.Server.ClientOrigins)
	assert.Equal(t, "convertlykit", cfg.DB.DBName)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
	assert.Equal(t, "https://api.resend.com", cfg.Mail.BaseURL)
	assert.Equal(t, "convertlykit", cfg.Metrics.Prefix)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CLIENT_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DB_MAX_IDLE_CONNS", "5")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("JWT_EXPIRATION_HOURS", "48")

	cfg, err := Load("convertlykit")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.ClientOrigins)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 48, cfg.JWT.ExpirationHours)
}

func TestGetEnvAsSliceSkipsEmptyEntries(t *testing.T) {
	t.Setenv("CLIENT_ORIGINS", " https://a.example.com ,, ")

	cfg, err := Load("convertlykit")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com"}, cfg.Server.ClientOrigins)
}

func TestGetEnvAsLogLevel(t *testing.T) {
	t.Setenv("DB_LOG_LEVEL", "silent")

	cfg, err := Load("convertlykit")
	require.NoError(t, err)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
}

func TestGetEnvAsLogLevelFallback(t *testing.T) {
	t.Setenv("DB_LOG_LEVEL", "chatty")

	cfg, err := Load("convertlykit")
	require.NoError(t, err)
	assert.Equal(t, logger.Info, cfg.DB.LogLevel)
}

func TestGetEnvAsIntFallback(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load("convertlykit")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.DB.MaxOpenConns)
}

func TestGetDSN(t *testing.T) {
	cfg := DBConfig{
		Host:     "db.internal",
		Port:     "5433",
		User:     "app",
		Password: "secret",
		DBName:   "convertlykit",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=app password=secret dbname=convertlykit sslmode=require",
		cfg.GetDSN())
}
