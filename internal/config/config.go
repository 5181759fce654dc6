package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Service information
	Service struct {
		Name        string `yaml:"name"`
		Version     string `yaml:"version"`
		Environment string `yaml:"environment"`
	} `yaml:"service"`

	HTTP       HTTPConfig       `yaml:"http"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	Log        LogConfig        `yaml:"log"`
	Transcoder TranscoderConfig `yaml:"transcoder"`
}

// HTTPConfig represents HTTP server configuration
type HTTPConfig struct {
	Address         string        `yaml:"address" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// WebSocketConfig represents WebSocket transport configuration
type WebSocketConfig struct {
	Path           string        `yaml:"path" validate:"required,startswith=/"`
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`
	PingPeriod     time.Duration `yaml:"ping_period"`
	MaxMessageSize int64         `yaml:"max_message_size" validate:"gt=0"`
	SendBuffer     int           `yaml:"send_buffer" validate:"gt=0"`
}

// GRPCConfig represents gRPC server configuration
type GRPCConfig struct {
	Address string `yaml:"address" validate:"required"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// TranscoderConfig represents the transcoding pipeline configuration
type TranscoderConfig struct {
	Enabled bool   `yaml:"enabled"`
	RTMPURL string `yaml:"rtmp_url" validate:"required_if=Enabled true"`
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		HTTP: HTTPConfig{
			Address:         ":8086",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingPeriod:     30 * time.Second,
			MaxMessageSize: 4096,
			SendBuffer:     256,
		},
		GRPC: GRPCConfig{
			Address: ":8088",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Transcoder: TranscoderConfig{
			Enabled: false,
			RTMPURL: "rtmp://localhost:1935/live/stream",
		},
	}
	cfg.Service.Name = "livesignal"
	return cfg
}

// Load loads the configuration from a file, applies environment overrides
// and validates the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvironmentOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvironmentOverrides applies environment overrides
func applyEnvironmentOverrides(config *Config) {
	// HTTP address
	if addr := os.Getenv("HTTP_ADDRESS"); addr != "" {
		config.HTTP.Address = addr
	}

	// gRPC address
	if addr := os.Getenv("GRPC_ADDRESS"); addr != "" {
		config.GRPC.Address = addr
	}

	// RTMP push target
	if url := os.Getenv("RTMP_URL"); url != "" {
		config.Transcoder.RTMPURL = url
	}

	// Log level
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}

	// Environment
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Service.Environment = env
	}
}
