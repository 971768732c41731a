package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr  string `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log-format" env:"LOG_FORMAT" env-default:"text"`

	Redis   Redis   `yaml:"redis"`
	SQLite  SQLite  `yaml:"sqlite"`
	Otel    Otel    `yaml:"otel"`
	Game    Game    `yaml:"game"`
	Session Session `yaml:"session"`
}

type Redis struct {
	// ConnString is a redis:// URL or host:port. Empty keeps session mirrors in memory.
	ConnString string `yaml:"conn-string" env:"REDIS_CONNSTRING"`
}

type SQLite struct {
	DSN string `yaml:"dsn" env:"SQLITE_DSN" env-default:":memory:"`
}

type Otel struct {
	// Endpoint of the OTLP gRPC collector. Empty disables export.
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tictactoe"`
}

type Game struct {
	ComputerDelay   time.Duration `yaml:"computer-delay" env:"COMPUTER_DELAY" env-default:"400ms"`
	RoomIdleTimeout time.Duration `yaml:"room-idle-timeout" env:"ROOM_IDLE_TIMEOUT" env-default:"30m"`
}

type Session struct {
	TTL time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	// TokenSecret signs session tokens. Empty generates one per process.
	TokenSecret string        `yaml:"token-secret" env:"SESSION_TOKEN_SECRET"`
	TokenTTL    time.Duration `yaml:"token-ttl" env:"SESSION_TOKEN_TTL" env-default:"24h"`
}

// Load reads the YAML file at path, if any, and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if config.Game.ComputerDelay < 0 || config.Game.RoomIdleTimeout < 0 || config.Session.TTL < 0 {
		return nil, fmt.Errorf("unable to load config: durations must not be negative")
	}
	return config, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// Usage describes every environment variable.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}
