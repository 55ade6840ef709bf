package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fedcmd/server"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"Warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"ERR":     slog.LevelError,
	}

	for input, want := range tests {
		got, err := parseLogLevel(input)
		if err != nil {
			t.Fatalf("parseLogLevel(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseLogLevelInvalid(t *testing.T) {
	if _, err := parseLogLevel("trace"); err == nil {
		t.Fatalf("expected error for unsupported level")
	}
}

func TestConfigInitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := runConfigInit(path); err != nil {
		t.Fatalf("runConfigInit returned error: %v", err)
	}

	cfg, err := server.LoadConfig(path)
	if err != nil {
		t.Fatalf("generated config should load cleanly: %v", err)
	}
	if cfg.Server.DevListenAddr != server.DefaultConfig().Server.DevListenAddr {
		t.Fatalf("generated config lost defaults: %q", cfg.Server.DevListenAddr)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: {}\n"), 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	err := runConfigInit(path)
	if err == nil {
		t.Fatalf("expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("error should mention the existing file, got: %v", err)
	}
}

func TestConfigInitCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	if err := runConfigInit(path); err != nil {
		t.Fatalf("runConfigInit returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing after init: %v", err)
	}
}

func TestLoadConfigDefaultsWhenFileAbsent(t *testing.T) {
	// The implicit ./config.yaml lookup happens relative to the working
	// directory, so run from an empty one.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg, err := loadConfig("", logger)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if !cfg.Server.DevMode {
		t.Fatalf("expected default dev mode")
	}
}

func TestLoadConfigExplicitMissingPathFails(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), logger)
	if err == nil {
		t.Fatalf("expected error for explicitly named missing file")
	}
	if !strings.Contains(err.Error(), "config-cmd=init") {
		t.Fatalf("error should point at config init, got: %v", err)
	}
}

func TestLoadConfigReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  public_host: idp.example.com
  dev_mode: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg, err := loadConfig(path, logger)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Server.PublicHost != "idp.example.com" {
		t.Fatalf("PublicHost mismatch: %q", cfg.Server.PublicHost)
	}
}
