// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	engine "github.com/CodeIngame/OceanOfCode/engine"
)

// ErrInvalidConfig is returned for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

// Transport names.
const (
	TransportStdio     = "stdio"
	TransportWebsocket = "websocket"
)

// Recorder backends. An empty Recorder disables recording.
const (
	RecorderNone     = ""
	RecorderSQLite   = "sqlite"
	RecorderPostgres = "postgres"
	RecorderRedis    = "redis"
)

// Config holds the process settings of the bot.
type Config struct {
	LogLevel  string
	LogFormat string

	Transport string
	WSURL     string

	Recorder    string
	RecorderDSN string
	RedisAddr   string
	RedisTTL    time.Duration

	TuningFile string
	Rules      engine.Rules
}

// Load reads an optional .env file, then the environment. A tuning file,
// when named, overrides the default rules.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Transport:   strings.ToLower(getEnv("BOT_TRANSPORT", TransportStdio)),
		WSURL:       getEnv("BOT_WS_URL", ""),
		Recorder:    strings.ToLower(getEnv("RECORDER", RecorderNone)),
		RecorderDSN: getEnv("RECORDER_DSN", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		TuningFile:  getEnv("BOT_TUNING_FILE", ""),
		Rules:       engine.DefaultRules(),
	}

	ttl, err := time.ParseDuration(getEnv("REDIS_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("%w: REDIS_TTL: %v", ErrInvalidConfig, err)
	}
	cfg.RedisTTL = ttl

	switch cfg.Transport {
	case TransportStdio:
	case TransportWebsocket:
		if cfg.WSURL == "" {
			return nil, fmt.Errorf("%w: BOT_WS_URL is required for the websocket transport", ErrInvalidConfig)
		}
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.Transport)
	}

	switch cfg.Recorder {
	case RecorderNone, RecorderRedis:
	case RecorderSQLite, RecorderPostgres:
		if cfg.RecorderDSN == "" {
			return nil, fmt.Errorf("%w: RECORDER_DSN is required for %s", ErrInvalidConfig, cfg.Recorder)
		}
	default:
		return nil, fmt.Errorf("%w: unknown recorder %q", ErrInvalidConfig, cfg.Recorder)
	}

	if cfg.TuningFile != "" {
		rules, err := LoadTuning(cfg.TuningFile, cfg.Rules)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
