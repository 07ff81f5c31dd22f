package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr() != "0.0.0.0:8081" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr())
	}
	if cfg.Processor.URL != "http://127.0.0.1:5000" {
		t.Errorf("unexpected processor url %q", cfg.Processor.URL)
	}
	if cfg.Processor.TargetMin != nil || cfg.Processor.TargetMax != nil {
		t.Error("target bounds should be unset by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestUploadConfig_Allowed(t *testing.T) {
	u := Default().Upload
	tests := map[string]bool{
		"a.csv":       true,
		"B.CSV":       true,
		"bundle.zip":  true,
		"sheet.xlsx":  true,
		"notes.txt":   false,
		"no-extension": false,
	}
	for name, want := range tests {
		if got := u.Allowed(name); got != want {
			t.Errorf("Allowed(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spectra.yaml")
	data := `
server:
  port: 9000
processor:
  url: http://proc:2333
  target_min: 1000
  target_max: 1500
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("unset fields should keep defaults, got host %q", cfg.Server.Host)
	}
	if cfg.Processor.URL != "http://proc:2333" {
		t.Errorf("unexpected url %q", cfg.Processor.URL)
	}
	if cfg.Processor.TargetMin == nil || *cfg.Processor.TargetMin != 1000 {
		t.Errorf("unexpected target_min %v", cfg.Processor.TargetMin)
	}
	if cfg.Processor.TargetInterval != nil {
		t.Error("target_interval should stay unset")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected level %q", cfg.Log.Level)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !serrors.IsCode(err, serrors.ErrConfigNotFound) {
		t.Fatalf("expected CONFIG_NOT_FOUND, got %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !serrors.IsCode(err, serrors.ErrConfigParseFailed) {
		t.Fatalf("expected CONFIG_PARSE_FAILED, got %v", err)
	}
	se, _ := serrors.AsSpectraError(err)
	if se.Context["path"] != path {
		t.Errorf("expected path in context, got %v", se.Context)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectra.yaml")
	if err := os.WriteFile(path, []byte("log:\n  format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !serrors.IsCode(err, serrors.ErrConfigInvalid) {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SPECTRA_SERVER_PORT", "7001")
	t.Setenv("SPECTRA_PROCESSOR_URL", "http://env:5000")
	t.Setenv("SPECTRA_PROCESSOR_TIMEOUT", "5s")
	t.Setenv("SPECTRA_PROCESSOR_TARGET_MAX", "1700")
	t.Setenv("SPECTRA_LOG_FORMAT", "json")
	t.Setenv("SPECTRA_CHART_MAX_HEIGHT", "2048")

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("expected port 7001, got %d", cfg.Server.Port)
	}
	if cfg.Processor.URL != "http://env:5000" {
		t.Errorf("unexpected url %q", cfg.Processor.URL)
	}
	if cfg.Processor.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Processor.Timeout)
	}
	if cfg.Processor.TargetMax == nil || *cfg.Processor.TargetMax != 1700 {
		t.Errorf("unexpected target_max %v", cfg.Processor.TargetMax)
	}
	if cfg.Processor.TargetMin != nil {
		t.Error("target_min should stay unset")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("unexpected format %q", cfg.Log.Format)
	}
	if cfg.Chart.MaxHeight != 2048 {
		t.Errorf("unexpected max height %v", cfg.Chart.MaxHeight)
	}
}

func TestValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"url", func(c *Config) { c.Processor.URL = "not a url" }, "processor.url"},
		{"timeout", func(c *Config) { c.Processor.Timeout = 0 }, "processor.timeout"},
		{"target order", func(c *Config) {
			c.Processor.TargetMin = f(1700)
			c.Processor.TargetMax = f(900)
		}, "processor.target_min"},
		{"max bytes", func(c *Config) { c.Upload.MaxBytes = 0 }, "upload.max_bytes"},
		{"extensions", func(c *Config) { c.Upload.AllowedExtensions = nil }, "upload.allowed_extensions"},
		{"chart size", func(c *Config) { c.Chart.Height = 0 }, "chart"},
		{"max size", func(c *Config) { c.Chart.MaxWidth = 100 }, "chart.max_width"},
		{"zoom", func(c *Config) { c.Chart.ZoomMax = 0.01 }, "chart.zoom_min"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			se, ok := serrors.AsSpectraError(err)
			if !ok || se.Code != serrors.ErrConfigInvalid {
				t.Fatalf("expected CONFIG_INVALID, got %v", err)
			}
			if se.Context["field"] != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, se.Context["field"])
			}
		})
	}
}

func TestSaveAndInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "spectra.yaml")

	if err := InitConfig(path, false); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	loaded.Server.Port = 9999
	if err := loaded.Save(path); err != nil {
		t.Fatal(err)
	}
	if err := InitConfig(path, false); err != nil {
		t.Fatal(err)
	}
	kept, _ := Load(path)
	if kept.Server.Port != 9999 {
		t.Error("InitConfig without force must keep an existing file")
	}

	if err := InitConfig(path, true); err != nil {
		t.Fatal(err)
	}
	reset, _ := Load(path)
	if reset.Server.Port != 8081 {
		t.Error("InitConfig with force should rewrite defaults")
	}
}
