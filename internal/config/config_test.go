package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Listen != "127.0.0.1:8765" {
		t.Errorf("expected listen=127.0.0.1:8765, got %s", cfg.Server.Listen)
	}
	if cfg.Server.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("expected session_idle_timeout=30m, got %s", cfg.Server.SessionIdleTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NoPathUsesDefault(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "en" {
		t.Errorf("expected language=en, got %s", cfg.Language)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "goform.yaml")
	configContent := `
server:
  listen: ":9000"
  session_idle_timeout: 5m
language: ja
log:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(EnvVar, configPath)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":9000" || cfg.Server.SessionIdleTimeout != 5*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Language != "ja" {
		t.Errorf("language = %s", cfg.Language)
	}
	if lv, _ := cfg.Log.SlogLevel(); lv != slog.LevelDebug {
		t.Errorf("level = %v", lv)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "goform.yaml")
	if err := os.WriteFile(configPath, []byte("language: ja\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:8765" || cfg.Log.Format != "text" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"language":      "language: fr\n",
		"log.level":     "log: {level: loud}\n",
		"log.format":    "log: {format: xml}\n",
		"server.listen": "server: {listen: \"\"}\n",
	}
	for want, content := range cases {
		configPath := filepath.Join(t.TempDir(), "goform.yaml")
		if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		_, err := LoadFile(configPath)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("%s: expected error mentioning it, got %v", want, err)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
