package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgl-mirror.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_MissingDefaultFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFileName), false)
	if err != nil {
		t.Fatalf("expected defaults for the missing default file, got error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected Default() config, got %+v", cfg)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "logLevel: debug\nkeepExtra: true\narchiveExtra: removed.tar.gz\n")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected logLevel debug, got %q", cfg.LogLevel)
	}
	if !cfg.KeepExtra {
		t.Error("expected keepExtra true")
	}
	if cfg.ArchiveExtra != "removed.tar.gz" {
		t.Errorf("expected archiveExtra removed.tar.gz, got %q", cfg.ArchiveExtra)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "keepExtra: true\n")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default logLevel info, got %q", cfg.LogLevel)
	}
	if !cfg.KeepExtra {
		t.Error("expected keepExtra true")
	}
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := writeConfig(t, "logLevel: [not closed\n")

	if _, err := Load(path, true); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		cfg := Config{LogLevel: "loud"}
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "log level") {
			t.Errorf("expected log level error, got %v", err)
		}
	})

	t.Run("bad archive suffix", func(t *testing.T) {
		cfg := Config{LogLevel: "info", ArchiveExtra: "removed.rar"}
		if err := cfg.Validate(); err == nil {
			t.Error("expected archive format error")
		}
	})

	t.Run("valid", func(t *testing.T) {
		cfg := Config{LogLevel: "notice", ArchiveExtra: "removed.tar.zst"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})
}
