// Package config loads the application configuration from the environment
// and an optional .env file.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the whole application configuration.
type Config struct {
	AppEnv string       `env:"APP_ENV" env-default:"development"`
	Server ServerConfig `env-prefix:"SERVER_"`
	Logger LoggerConfig `env-prefix:"LOG_"`
	CORS   CORSConfig   `env-prefix:"CORS_"`
	AI     AIConfig     `env-prefix:"AI_"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            string        `env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level      string `env:"LEVEL" env-default:"info"`
	Encoding   string `env:"ENCODING" env-default:"json"`
	OutputPath string `env:"OUTPUT_PATH" env-default:""`
}

// CORSConfig lists the origins the browser client may call from.
type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

// AIConfig configures the model provider endpoint. The API key may be empty
// when the endpoint is an unauthenticated local proxy.
type AIConfig struct {
	Endpoint string        `env:"ENDPOINT" env-required:"true"`
	APIKey   string        `env:"API_KEY" env-default:""`
	Timeout  time.Duration `env:"TIMEOUT" env-default:"60s"`
}

// Load reads the configuration from environment variables and an optional
// .env file. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
