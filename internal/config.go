package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBackendURL is where the analysis service listens by default
	DefaultBackendURL = "http://127.0.0.1:5000"

	// DefaultRequestTimeout bounds a single reset or analyze request
	DefaultRequestTimeout = 30 * time.Second

	// DefaultKDRThreshold is the reference rate drawn on the KDR chart
	DefaultKDRThreshold = 0.02

	envPrefix = "COMPLETION_"
)

// ChartConfig controls dashboard output
type ChartConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ServerConfig controls the HTTP host
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config holds all settings. Later sources override earlier ones:
// defaults, the YAML file, .env, COMPLETION_* variables, then flags.
type Config struct {
	BackendURL     string        `yaml:"backend_url"`
	ChunkSize      int           `yaml:"chunk_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	KDRThreshold   float64       `yaml:"kdr_threshold"`
	HistoryPath    string        `yaml:"history_path"`
	LogLevel       string        `yaml:"log_level"`
	Chart          ChartConfig   `yaml:"chart"`
	Server         ServerConfig  `yaml:"server"`
}

// ConfigDir returns ~/.config/completion-estimator
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "completion-estimator")
}

// DefaultConfigPath returns the config file read when --config is not given
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		BackendURL:     DefaultBackendURL,
		ChunkSize:      DefaultChunkSize,
		RequestTimeout: DefaultRequestTimeout,
		KDRThreshold:   DefaultKDRThreshold,
		HistoryPath:    filepath.Join(ConfigDir(), "history.db"),
		LogLevel:       "info",
		Chart: ChartConfig{
			Dir:    "charts",
			Format: "svg",
			Width:  600,
			Height: 300,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// LoadConfig reads the config file at path (or the default location when
// path is empty), then .env from the working directory, then the
// environment
func LoadConfig(path string) (*Config, error) {
	return loadConfig(path, ".env")
}

func loadConfig(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		LogDebug("Loaded config from %s", path)
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file is fine
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			LogDebug("Loaded environment from %s", envFile)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.BackendURL = getEnv("BACKEND_URL", c.BackendURL)
	c.ChunkSize = getEnvInt("CHUNK_SIZE", c.ChunkSize)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.KDRThreshold = getEnvFloat("KDR_THRESHOLD", c.KDRThreshold)
	c.HistoryPath = getEnv("HISTORY_PATH", c.HistoryPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Chart.Dir = getEnv("CHART_DIR", c.Chart.Dir)
	c.Chart.Format = getEnv("CHART_FORMAT", c.Chart.Format)
	c.Chart.Width = getEnvInt("CHART_WIDTH", c.Chart.Width)
	c.Chart.Height = getEnvInt("CHART_HEIGHT", c.Chart.Height)
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}
}

// Validate checks that the settings can be used
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	switch c.Chart.Format {
	case "svg", "png":
	default:
		return fmt.Errorf("unsupported chart format: %s (supported: svg, png)", c.Chart.Format)
	}
	return nil
}

// ParseLogLevel maps a level name onto a LogLevel
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		LogWarn("Ignoring %s%s=%q: not an integer", envPrefix, key, value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
		LogWarn("Ignoring %s%s=%q: not a number", envPrefix, key, value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		LogWarn("Ignoring %s%s=%q: not a duration", envPrefix, key, value)
	}
	return defaultValue
}
