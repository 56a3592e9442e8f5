package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/bindvar/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func diagnosticCode(err error) string {
	var d *errors.Diagnostic
	if stderrors.As(err, &d) {
		return d.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if cfg.Frame.Rate != DefaultFrameRate {
		t.Errorf("Frame.Rate = %d, want %d", cfg.Frame.Rate, DefaultFrameRate)
	}
	if cfg.Presence.Interval.Std() != 15*time.Second {
		t.Errorf("Presence.Interval = %v, want 15s", cfg.Presence.Interval.Std())
	}
	if cfg.Tracing.ServiceName != DefaultServiceName {
		t.Errorf("Tracing.ServiceName = %q, want %q", cfg.Tracing.ServiceName, DefaultServiceName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "bindvar.json", `{
  "log": {"level": "debug", "format": "json"},
  "inspector": {"addr": ":9090"},
  "presence": {"interval": "250ms"},
  "frame": {"rate": 30}
}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Inspector.Addr != ":9090" {
		t.Errorf("Inspector.Addr = %q", cfg.Inspector.Addr)
	}
	if cfg.Presence.Interval.Std() != 250*time.Millisecond {
		t.Errorf("Presence.Interval = %v", cfg.Presence.Interval.Std())
	}
	if cfg.Frame.Rate != 30 {
		t.Errorf("Frame.Rate = %d", cfg.Frame.Rate)
	}
	// Untouched sections keep their defaults.
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != "bindvar" {
		t.Errorf("Metrics = %+v, want defaults", cfg.Metrics)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "bindvar.yaml", `
log:
  level: warn
tracing:
  enabled: true
  endpoint: collector:4318
  serviceName: hud
presence:
  enabled: false
  interval: 2s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "collector:4318" || cfg.Tracing.ServiceName != "hud" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Presence.Enabled {
		t.Error("Presence.Enabled should be false")
	}
	if cfg.Presence.Interval.Std() != 2*time.Second {
		t.Errorf("Presence.Interval = %v", cfg.Presence.Interval.Std())
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want default text", cfg.Log.Format)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "bindvar.yaml", `
inspector:
  addr: ":8000"
frame:
  rate: 30
`)
	t.Setenv("BINDVAR_INSPECTOR_ADDR", ":9000")
	t.Setenv("BINDVAR_PRESENCE_INTERVAL", "5s")
	t.Setenv("BINDVAR_METRICS_ENABLED", "false")
	t.Setenv("BINDVAR_TRACING_SERVICE_NAME", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Inspector.Addr != ":9000" {
		t.Errorf("Inspector.Addr = %q, want :9000", cfg.Inspector.Addr)
	}
	if cfg.Frame.Rate != 30 {
		t.Errorf("Frame.Rate = %d, want 30 from file", cfg.Frame.Rate)
	}
	if cfg.Presence.Interval.Std() != 5*time.Second {
		t.Errorf("Presence.Interval = %v, want 5s", cfg.Presence.Interval.Std())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be overridden to false")
	}
	if cfg.Tracing.ServiceName != "from-env" {
		t.Errorf("Tracing.ServiceName = %q", cfg.Tracing.ServiceName)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		if got := diagnosticCode(err); got != errors.CodeConfigRead {
			t.Errorf("expected %s, got %q (%v)", errors.CodeConfigRead, got, err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeFile(t, "bindvar.json", "{\n  \"log\": {\n    \"level\" \"debug\"\n  }\n}\n")
		_, err := Load(path)
		if got := diagnosticCode(err); got != errors.CodeConfigParse {
			t.Fatalf("expected %s, got %q (%v)", errors.CodeConfigParse, got, err)
		}
		var d *errors.Diagnostic
		stderrors.As(err, &d)
		if d.Location == nil || d.Location.Line != 3 {
			t.Errorf("expected the error on line 3, got %+v", d.Location)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		path := writeFile(t, "bindvar.yml", "log: [unterminated\n")
		_, err := Load(path)
		if got := diagnosticCode(err); got != errors.CodeConfigParse {
			t.Errorf("expected %s, got %q (%v)", errors.CodeConfigParse, got, err)
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeFile(t, "bindvar.json", `{"presence": {"interval": "soon"}}`)
		_, err := Load(path)
		if got := diagnosticCode(err); got != errors.CodeConfigParse {
			t.Errorf("expected %s, got %q (%v)", errors.CodeConfigParse, got, err)
		}
	})

	t.Run("invalid env", func(t *testing.T) {
		t.Setenv("BINDVAR_FRAME_RATE", "fast")
		_, err := Load("")
		if got := diagnosticCode(err); got != errors.CodeConfigEnv {
			t.Errorf("expected %s, got %q (%v)", errors.CodeConfigEnv, got, err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"missing namespace", func(c *Config) { c.Metrics.Namespace = "" }, "metrics.namespace"},
		{"missing endpoint", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Endpoint = "" }, "tracing.endpoint"},
		{"zero interval", func(c *Config) { c.Presence.Interval = 0 }, "presence.interval"},
		{"zero rate", func(c *Config) { c.Frame.Rate = 0 }, "frame.rate"},
		{"huge rate", func(c *Config) { c.Frame.Rate = 5000 }, "frame.rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if got := diagnosticCode(err); got != errors.CodeConfigInvalid {
				t.Fatalf("expected %s, got %q (%v)", errors.CodeConfigInvalid, got, err)
			}
			var d *errors.Diagnostic
			stderrors.As(err, &d)
			if !strings.Contains(d.Detail, tt.want) {
				t.Errorf("Detail = %q, want mention of %q", d.Detail, tt.want)
			}
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		cfg := New()
		cfg.Log.Format = "xml"
		cfg.Frame.Rate = -1
		var d *errors.Diagnostic
		if !stderrors.As(cfg.Validate(), &d) {
			t.Fatal("expected a diagnostic")
		}
		if !strings.Contains(d.Detail, "log.format") || !strings.Contains(d.Detail, "frame.rate") {
			t.Errorf("Detail = %q", d.Detail)
		}
	})
}

func TestSave(t *testing.T) {
	for _, name := range []string{"bindvar.json", "bindvar.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := New()
			if err := cfg.Save(); err == nil {
				t.Error("Expected error when saving without path")
			}

			cfg.Frame.Rate = 120
			cfg.Presence.Interval = Duration(3 * time.Second)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if loaded.Frame.Rate != 120 {
				t.Errorf("Frame.Rate = %d, want 120", loaded.Frame.Rate)
			}
			if loaded.Presence.Interval.Std() != 3*time.Second {
				t.Errorf("Presence.Interval = %v, want 3s", loaded.Presence.Interval.Std())
			}

			loaded.Frame.Rate = 24
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if reloaded.Frame.Rate != 24 {
				t.Errorf("Frame.Rate = %d, want 24", reloaded.Frame.Rate)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := New().Write(&buf, "yaml"); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "interval: 15s") {
		t.Errorf("expected durations as strings, got:\n%s", buf.String())
	}
	if err := New().Write(&buf, "toml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := New()
	cfg.Frame.Rate = 50
	if got := cfg.FrameInterval(); got != 20*time.Millisecond {
		t.Errorf("FrameInterval() = %v, want 20ms", got)
	}
	cfg.Frame.Rate = 0
	if got := cfg.FrameInterval(); got != time.Second/DefaultFrameRate {
		t.Errorf("FrameInterval() = %v, want default", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "cell", "label")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"cell":"label"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("warn should be enabled")
	}
}
