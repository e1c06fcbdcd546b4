// Package config содержит логику чтения конфигурации терминала MotoSync.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/mmeshcher/motosync-terminal/internal/api"
)

const (
	defaultRunAddress = "localhost:8080"
	defaultLogLevel   = "info"
)

// Config содержит параметры конфигурации терминала.
type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS" validate:"required,hostname_port"`
	APIBaseURL     string        `env:"API_BASE_URL" validate:"required,url"`
	DatabaseURI    string        `env:"DATABASE_URI"`
	SessionFile    string        `env:"SESSION_FILE"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" validate:"gte=0"`
	LogLevel       string        `env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envAPIBaseURL := cfg.APIBaseURL
	envDatabaseURI := cfg.DatabaseURI
	envSessionFile := cfg.SessionFile
	envRequestTimeout := cfg.RequestTimeout
	_, envRequestTimeoutSet := os.LookupEnv("REQUEST_TIMEOUT")
	envLogLevel := cfg.LogLevel

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.APIBaseURL, "u", api.DefaultBaseURL, "MotoSync API base URL")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "checkout journal database URI")
	flag.StringVar(&cfg.SessionFile, "s", "", "file to keep session tokens between restarts")
	flag.DurationVar(&cfg.RequestTimeout, "t", 0, "API request timeout, 0 disables it")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envAPIBaseURL != "" {
		cfg.APIBaseURL = envAPIBaseURL
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envSessionFile != "" {
		cfg.SessionFile = envSessionFile
	}
	// Нулевой таймаут из окружения тоже перекрывает флаг.
	if envRequestTimeoutSet {
		cfg.RequestTimeout = envRequestTimeout
	}
	if envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = api.DefaultBaseURL
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Level возвращает уровень логирования.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
