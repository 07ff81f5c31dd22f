// Package config handles Spectra configuration loading.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. SPECTRA_SERVER_PORT.
const EnvPrefix = "SPECTRA"

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Processor ProcessorConfig `yaml:"processor"`
	Upload    UploadConfig    `yaml:"upload"`
	Chart     ChartConfig     `yaml:"chart"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	EnableLogging   bool          `yaml:"enable_logging"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ProcessorConfig holds the processing service settings.
// Target bounds are pointers to distinguish "not set" from "explicitly 0".
type ProcessorConfig struct {
	URL            string        `yaml:"url"`
	Timeout        time.Duration `yaml:"timeout"`
	TargetMin      *float64      `yaml:"target_min,omitempty"`
	TargetMax      *float64      `yaml:"target_max,omitempty"`
	TargetInterval *float64      `yaml:"target_interval,omitempty"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxBytes          int64    `yaml:"max_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// Allowed reports whether a file name carries an allowed extension.
func (u UploadConfig) Allowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range u.AllowedExtensions {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}

// ChartConfig holds default chart settings for rendered endpoints.
type ChartConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	MaxWidth  float64 `yaml:"max_width"`
	MaxHeight float64 `yaml:"max_height"`
	ZoomMin   float64 `yaml:"zoom_min"`
	ZoomMax   float64 `yaml:"zoom_max"`
	LineColor string  `yaml:"line_color"`
	FillColor string  `yaml:"fill_color"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // auto, console, json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8081,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			EnableLogging:   true,
		},
		Processor: ProcessorConfig{
			URL:     "http://127.0.0.1:5000",
			Timeout: 2 * time.Minute,
		},
		Upload: UploadConfig{
			MaxBytes:          64 << 20,
			AllowedExtensions: []string{".csv", ".zip", ".xlsx"},
		},
		Chart: ChartConfig{
			Width:     800,
			Height:    200,
			MaxWidth:  4096,
			MaxHeight: 4096,
			ZoomMin:   0.1,
			ZoomMax:   50,
			LineColor: "#82C4FF",
			FillColor: "#82C4FF99",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from a file, then applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.ConfigNotFound(path)
		}
		return nil, serrors.IOWrap(err, serrors.ErrIOReadFailed, "failed to read config").
			WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, serrors.ConfigParseError(path, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or falls back to the defaults when
// the file does not exist. Environment overrides apply either way.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKeys are the settings that may be overridden from the environment.
var envKeys = []string{
	"server.host",
	"server.port",
	"processor.url",
	"processor.timeout",
	"processor.target_min",
	"processor.target_max",
	"processor.target_interval",
	"upload.max_bytes",
	"chart.width",
	"chart.height",
	"chart.max_width",
	"chart.max_height",
	"log.level",
	"log.format",
}

// ApplyEnv overrides settings from SPECTRA_* environment variables.
func (c *Config) ApplyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return serrors.ConfigWrap(err, serrors.ErrConfigInvalid, "failed to bind environment").
				WithContext("key", key)
		}
	}

	if v.IsSet("server.host") {
		c.Server.Host = v.GetString("server.host")
	}
	if v.IsSet("server.port") {
		c.Server.Port = v.GetInt("server.port")
	}
	if v.IsSet("processor.url") {
		c.Processor.URL = v.GetString("processor.url")
	}
	if v.IsSet("processor.timeout") {
		c.Processor.Timeout = v.GetDuration("processor.timeout")
	}
	for key, dst := range map[string]**float64{
		"processor.target_min":      &c.Processor.TargetMin,
		"processor.target_max":      &c.Processor.TargetMax,
		"processor.target_interval": &c.Processor.TargetInterval,
	} {
		if v.IsSet(key) {
			f := v.GetFloat64(key)
			*dst = &f
		}
	}
	if v.IsSet("upload.max_bytes") {
		c.Upload.MaxBytes = v.GetInt64("upload.max_bytes")
	}
	if v.IsSet("chart.width") {
		c.Chart.Width = v.GetFloat64("chart.width")
	}
	if v.IsSet("chart.height") {
		c.Chart.Height = v.GetFloat64("chart.height")
	}
	if v.IsSet("chart.max_width") {
		c.Chart.MaxWidth = v.GetFloat64("chart.max_width")
	}
	if v.IsSet("chart.max_height") {
		c.Chart.MaxHeight = v.GetFloat64("chart.max_height")
	}
	if v.IsSet("log.level") {
		c.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.format") {
		c.Log.Format = v.GetString("log.format")
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return serrors.ConfigInvalid("server.port", fmt.Sprintf("%d is not a valid port", c.Server.Port))
	}
	u, err := url.Parse(c.Processor.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return serrors.ConfigInvalid("processor.url", fmt.Sprintf("%q is not an absolute URL", c.Processor.URL))
	}
	if c.Processor.Timeout <= 0 {
		return serrors.ConfigInvalid("processor.timeout", "must be positive")
	}
	if p := c.Processor; p.TargetMin != nil && p.TargetMax != nil && *p.TargetMin > *p.TargetMax {
		return serrors.ConfigInvalid("processor.target_min", "must not exceed target_max")
	}
	if c.Upload.MaxBytes <= 0 {
		return serrors.ConfigInvalid("upload.max_bytes", "must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return serrors.ConfigInvalid("upload.allowed_extensions", "must not be empty")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return serrors.ConfigInvalid("chart", "width and height must be positive")
	}
	if c.Chart.MaxWidth < c.Chart.Width || c.Chart.MaxHeight < c.Chart.Height {
		return serrors.ConfigInvalid("chart.max_width", "max_width and max_height must be at least width and height")
	}
	if c.Chart.ZoomMin <= 0 || c.Chart.ZoomMax < c.Chart.ZoomMin {
		return serrors.ConfigInvalid("chart.zoom_min", "zoom bounds must satisfy 0 < zoom_min <= zoom_max")
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return serrors.ConfigInvalid("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		return serrors.ConfigInvalid("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	return nil
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return serrors.ConfigWrap(err, serrors.ErrConfigWriteFailed, "failed to create config directory").
			WithContext("path", dir)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return serrors.InternalWrap(err, serrors.ErrInternalError, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return serrors.ConfigWrap(err, serrors.ErrConfigWriteFailed, "failed to write config file").
			WithContext("path", path)
	}
	return nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	if _, err := os.Stat("spectra.yaml"); err == nil {
		return "spectra.yaml"
	}
	if _, err := os.Stat("config/spectra.yaml"); err == nil {
		return "config/spectra.yaml"
	}
	return "spectra.yaml"
}

// InitConfig creates a default config file. An existing file is kept
// unless force is set.
func InitConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return nil
	}
	return Default().Save(path)
}
