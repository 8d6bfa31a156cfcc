// Package config provides configuration management for the greeting service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Tracing TracingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port               string
	GreetingPath       string   // Route the greeting handler is bound to
	RateLimit          string   // ulule formatted rate, e.g. "100-M"
	CORSAllowedOrigins []string // Origins allowed by the CORS middleware
	Version            string   // Reported by the health endpoint
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // zerolog level name
	Format string // "json" or "console"
}

// TracingConfig holds OpenTelemetry tracing configuration.
// Exporter endpoints and headers are read by the exporters themselves
// from the standard OTEL_EXPORTER_OTLP_* variables.
type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	Protocol     string // "grpc" or "http/protobuf"
	SamplerRatio float64
}

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// OTLP protocols
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			GreetingPath:       getEnv("GREETING_PATH", "/hello"),
			RateLimit:          getEnv("RATE_LIMIT", "100-M"),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			Version:            getEnv("SERVICE_VERSION", "1.0.0"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", LogFormatJSON),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "greeting-service"),
			Protocol:     getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", ProtocolGRPC),
			SamplerRatio: getEnvAsFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if !strings.HasPrefix(c.Server.GreetingPath, "/") {
		return fmt.Errorf("GREETING_PATH must start with '/', got %q", c.Server.GreetingPath)
	}
	if _, err := limiter.NewRateFromFormatted(c.Server.RateLimit); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", c.Server.RateLimit, err)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Log.Level, err)
	}
	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatConsole {
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatConsole, c.Log.Format)
	}

	if c.Tracing.Enabled {
		if c.Tracing.Protocol != ProtocolGRPC && c.Tracing.Protocol != ProtocolHTTP {
			return fmt.Errorf("unsupported OTLP protocol: %s", c.Tracing.Protocol)
		}
		if c.Tracing.SamplerRatio < 0 || c.Tracing.SamplerRatio > 1 {
			return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be within [0, 1], got %v", c.Tracing.SamplerRatio)
		}
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated environment variable, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
