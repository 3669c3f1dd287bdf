package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/salespulse.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR" default:"data/uploads"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// PipelineConfig contains forecasting pipeline configuration
type PipelineConfig struct {
	// MinTrainingDays is the minimum number of daily observations required
	// before a model fit is considered statistically meaningful.
	MinTrainingDays int `yaml:"min_training_days" envconfig:"MIN_TRAINING_DAYS" default:"100" validate:"min=2"`

	// ForecastHorizon is the default number of days projected forward.
	ForecastHorizon int `yaml:"forecast_horizon" envconfig:"FORECAST_HORIZON" default:"30" validate:"min=1"`

	// WarnHorizonDays is the horizon beyond which forecast accuracy degrades
	// enough to warrant a warning log.
	WarnHorizonDays int `yaml:"warn_horizon_days" envconfig:"WARN_HORIZON_DAYS" default:"365" validate:"min=1"`

	// NullPolicy controls how rows with a null sales value contribute to the
	// daily aggregation: "zero" sums them as 0, "exclude" skips them.
	NullPolicy string `yaml:"null_policy" envconfig:"NULL_POLICY" default:"zero" validate:"oneof=zero exclude"`

	// TestFraction is the tail share of the daily series held out for
	// accuracy evaluation. Zero disables the hold-out split.
	TestFraction float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" default:"0.2" validate:"max=0.5"`
}

// Load loads configuration from environment variables and an optional
// YAML config file. Environment variables take precedence.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SALESPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration, ignoring the environment
// and any config file. Tools fall back to it when Load fails.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  52428800,
			RateLimit:       RateLimitConfig{Enabled: true, RPS: 20, Burst: 10},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/salespulse.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			UploadsDir: "data/uploads",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Pipeline: PipelineConfig{
			MinTrainingDays: 100,
			ForecastHorizon: 30,
			WarnHorizonDays: 365,
			NullPolicy:      "zero",
			TestFraction:    0.2,
		},
	}
}

// Validate checks the configuration against struct-level constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Pipeline.TestFraction < 0 {
		return fmt.Errorf("test fraction must not be negative, got %.2f", c.Pipeline.TestFraction)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive when enabled, got %.2f", c.Server.RateLimit.RPS)
	}
	return nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// getConfigFilePath returns the config file path, honoring an override env var
func getConfigFilePath() string {
	if path := os.Getenv("SALESPULSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// mergeConfigs merges file config with env config. Env values win for any
// field the environment set away from its zero value.
func mergeConfigs(file, env Config) Config {
	merged := file

	if env.Server.Port != 0 {
		merged.Server.Port = env.Server.Port
	}
	if env.Server.ReadTimeout != 0 {
		merged.Server.ReadTimeout = env.Server.ReadTimeout
	}
	if env.Server.WriteTimeout != 0 {
		merged.Server.WriteTimeout = env.Server.WriteTimeout
	}
	if env.Server.IdleTimeout != 0 {
		merged.Server.IdleTimeout = env.Server.IdleTimeout
	}
	if env.Server.ShutdownTimeout != 0 {
		merged.Server.ShutdownTimeout = env.Server.ShutdownTimeout
	}
	if env.Server.MaxUploadBytes != 0 {
		merged.Server.MaxUploadBytes = env.Server.MaxUploadBytes
	}
	if env.Server.RateLimit.RPS != 0 {
		merged.Server.RateLimit = env.Server.RateLimit
	}
	if env.Logging.Level != "" {
		merged.Logging.Level = env.Logging.Level
	}
	if env.Logging.Output != "" {
		merged.Logging.Output = env.Logging.Output
	}
	if env.Logging.FilePath != "" {
		merged.Logging.FilePath = env.Logging.FilePath
	}
	if env.Paths.DataDir != "" {
		merged.Paths.DataDir = env.Paths.DataDir
	}
	if env.Paths.UploadsDir != "" {
		merged.Paths.UploadsDir = env.Paths.UploadsDir
	}
	if env.Paths.ReportsDir != "" {
		merged.Paths.ReportsDir = env.Paths.ReportsDir
	}
	if env.Paths.LogsDir != "" {
		merged.Paths.LogsDir = env.Paths.LogsDir
	}
	if env.Pipeline.MinTrainingDays != 0 {
		merged.Pipeline.MinTrainingDays = env.Pipeline.MinTrainingDays
	}
	if env.Pipeline.ForecastHorizon != 0 {
		merged.Pipeline.ForecastHorizon = env.Pipeline.ForecastHorizon
	}
	if env.Pipeline.WarnHorizonDays != 0 {
		merged.Pipeline.WarnHorizonDays = env.Pipeline.WarnHorizonDays
	}
	if env.Pipeline.NullPolicy != "" {
		merged.Pipeline.NullPolicy = env.Pipeline.NullPolicy
	}
	if env.Pipeline.TestFraction != 0 {
		merged.Pipeline.TestFraction = env.Pipeline.TestFraction
	}

	return merged
}
