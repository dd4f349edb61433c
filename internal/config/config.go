package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	envPrefix  = "CLASSBOOK_"
	envFileVar = "CLASSBOOK_CONFIG_FILE"
)

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Gateway   GatewayConfig   `koanf:"gateway"`
	Auth      AuthConfig      `koanf:"auth"`
	Redis     RedisConfig     `koanf:"redis"`
	Broker    BrokerConfig    `koanf:"broker"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Logger    LoggerConfig    `koanf:"logger"`
	Worker    WorkerConfig    `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

// DatabaseConfig points at the Postgres database behind the hosted backend.
// ServiceKey, when set, replaces the password embedded in URL.
type DatabaseConfig struct {
	URL             string        `koanf:"url" validate:"required"`
	ServiceKey      string        `koanf:"service_key"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

type GatewayConfig struct {
	SecretKey      string        `koanf:"secret_key" validate:"required"`
	WebhookSecret  string        `koanf:"webhook_secret" validate:"required"`
	Tolerance      time.Duration `koanf:"tolerance" validate:"required"`
	Currency       string        `koanf:"currency" validate:"required,len=3"`
	APIBaseURL     string        `koanf:"api_base_url"`
	MaxRetries     int           `koanf:"max_retries" validate:"min=1"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret" validate:"required"`
	CookieName    string        `koanf:"cookie_name" validate:"required"`
	SessionTTL    time.Duration `koanf:"session_ttl" validate:"required"`
	RefreshWindow time.Duration `koanf:"refresh_window" validate:"required"`
	SecureCookie  bool          `koanf:"secure_cookie"`
}

// RedisConfig is optional; an empty Addr disables the role cache.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	// RoleTTL bounds how long a role change takes to reach the guard.
	RoleTTL  time.Duration `koanf:"role_ttl"`
}

// BrokerConfig is optional; an empty URL makes the outbox relay log instead of publish.
type BrokerConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange" validate:"required"`
}

type TelemetryConfig struct {
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name" validate:"required"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=text json"`
}

type WorkerConfig struct {
	Interval  time.Duration `koanf:"interval" validate:"required"`
	BatchSize int           `koanf:"batch_size" validate:"required"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                 "development",
		"server.port":                 "8080",
		"server.read_timeout":         "15s",
		"server.write_timeout":        "15s",
		"server.idle_timeout":         "60s",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"gateway.tolerance":           "5m",
		"gateway.currency":            "aud",
		"gateway.max_retries":         3,
		"gateway.retry_base_delay":    "500ms",
		"auth.cookie_name":            "classbook-session",
		"auth.session_ttl":            "1h",
		"auth.refresh_window":         "10m",
		"redis.role_ttl":              "15s",
		"broker.exchange":             "classbook.events",
		"telemetry.service_name":      "classbook",
		"logger.level":                "info",
		"worker.interval":             "5s",
		"worker.batch_size":           50,
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			logger.Error("failed to load config file", "path", path, "error", err)
			return nil, err
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Primary.Env == "development" || c.Primary.Env == "dev"
}
