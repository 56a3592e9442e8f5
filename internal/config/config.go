package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/vango-dev/bindvar/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "BINDVAR_"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultFrameRate is the default frame loop rate in frames per second.
	DefaultFrameRate = 60

	// DefaultServiceName is the default OpenTelemetry service name.
	DefaultServiceName = "bindvar"
)

// Config is the complete bindvar configuration.
type Config struct {
	// Log configures the process logger.
	Log LogConfig `json:"log" yaml:"log" envPrefix:"LOG_"`

	// Inspector configures the HTTP inspector.
	Inspector InspectorConfig `json:"inspector" yaml:"inspector" envPrefix:"INSPECTOR_"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" envPrefix:"METRICS_"`

	// Tracing configures the OpenTelemetry observer and exporter.
	Tracing TracingConfig `json:"tracing" yaml:"tracing" envPrefix:"TRACING_"`

	// Presence configures the presence publisher.
	Presence PresenceConfig `json:"presence" yaml:"presence" envPrefix:"PRESENCE_"`

	// Frame configures the frame loop that drives the demo graph.
	Frame FrameConfig `json:"frame" yaml:"frame" envPrefix:"FRAME_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level" yaml:"level" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" env:"FORMAT"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the listen address. Empty disables the inspector.
	Addr string `json:"addr" yaml:"addr" env:"ADDR"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	Namespace string `json:"namespace" yaml:"namespace" env:"NAMESPACE"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" env:"ENABLED"`

	// Endpoint is the OTLP/HTTP collector host:port.
	Endpoint string `json:"endpoint" yaml:"endpoint" env:"ENDPOINT"`

	// Insecure disables TLS to the collector.
	Insecure bool `json:"insecure" yaml:"insecure" env:"INSECURE"`

	ServiceName string `json:"serviceName" yaml:"serviceName" env:"SERVICE_NAME"`
}

// PresenceConfig contains presence publisher settings.
type PresenceConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled" env:"ENABLED"`
	Interval Duration `json:"interval" yaml:"interval" env:"INTERVAL"`
}

// FrameConfig contains frame loop settings.
type FrameConfig struct {
	// Rate is the number of frames per second.
	Rate int `json:"rate" yaml:"rate" env:"RATE"`
}

// Duration is a time.Duration written as a Go duration string ("250ms",
// "15s") in files and environment variables.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Inspector: InspectorConfig{
			Addr: DefaultInspectorAddr,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "bindvar",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Endpoint:    "localhost:4318",
			Insecure:    true,
			ServiceName: DefaultServiceName,
		},
		Presence: PresenceConfig{
			Enabled:  true,
			Interval: Duration(15 * time.Second),
		},
		Frame: FrameConfig{
			Rate: DefaultFrameRate,
		},
	}
}

// Load builds the configuration from defaults, then the file at path if
// path is not empty, then BINDVAR_* environment variables. Later sources
// override earlier ones field by field.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.CodeConfigRead).
			WithLocation(path, 0, 0).
			Wrap(err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		line, col := errorPosition(data, err)
		return errors.New(errors.CodeConfigParse).
			WithLocation(path, line, col).
			Wrap(err)
	}

	c.configPath = path
	return nil
}

// errorPosition locates a JSON syntax error in data. Other errors carry
// their position in the message, if at all.
func errorPosition(data []byte, err error) (line, col int) {
	syn, ok := err.(*json.SyntaxError)
	if !ok || syn.Offset <= 0 || int(syn.Offset) > len(data) {
		return 0, 0
	}
	before := data[:syn.Offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = len(before) - bytes.LastIndexByte(before, '\n') - 1
	return line, col
}

func (c *Config) loadEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New(errors.CodeConfigEnv).Wrap(fmt.Errorf("parse env: %w", err))
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path, as YAML for .yaml and .yml
// files and JSON otherwise.
func (c *Config) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Newf(errors.CategoryConfig, "cannot write %s", path).Wrap(err)
	}
	defer f.Close()

	format := "json"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		format = "yaml"
	}
	if err := c.Write(f, format); err != nil {
		return err
	}

	c.configPath = path
	return nil
}

// Write encodes the configuration to w as "json" or "yaml".
func (c *Config) Write(w io.Writer, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(c)
	case "json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	default:
		return errors.Newf(errors.CategoryConfig, "unknown config format %q", format)
	}
	if err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}
	_, err = w.Write(data)
	return err
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks every setting and reports all problems in one diagnostic.
func (c *Config) Validate() error {
	var problems []string

	if _, err := parseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		problems = append(problems, "metrics.namespace is required when metrics are enabled")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		problems = append(problems, "tracing.endpoint is required when tracing is enabled")
	}
	if c.Presence.Interval.Std() <= 0 {
		problems = append(problems, "presence.interval must be positive")
	}
	if c.Frame.Rate <= 0 || c.Frame.Rate > 1000 {
		problems = append(problems, fmt.Sprintf("frame.rate %d must be between 1 and 1000", c.Frame.Rate))
	}

	if len(problems) == 0 {
		return nil
	}
	d := errors.New(errors.CodeConfigInvalid).WithDetail(strings.Join(problems, "; "))
	if c.configPath != "" {
		d.WithLocation(c.configPath, 0, 0)
	}
	return d
}

// FrameInterval returns the duration of one frame.
func (c *Config) FrameInterval() time.Duration {
	if c.Frame.Rate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.Frame.Rate)
}

// Logger builds the process logger described by the Log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
