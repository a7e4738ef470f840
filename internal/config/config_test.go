package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("BACKLOG_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabasePath == "" {
		t.Error("Expected a default database path")
	}
	if !strings.HasSuffix(cfg.SocketPath, "backlog.sock") {
		t.Errorf("Expected default socket path, got %q", cfg.SocketPath)
	}
	if cfg.VelocityWindow != 3 {
		t.Errorf("Expected default velocity window 3, got %d", cfg.VelocityWindow)
	}
	if cfg.DefaultActor != "" {
		t.Errorf("Expected no default actor, got %q", cfg.DefaultActor)
	}
}

func TestLoad_ReadsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "database_path: /tmp/custom.db\ndefault_actor: robot\nvelocity_window: 5\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("BACKLOG_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabasePath != "/tmp/custom.db" {
		t.Errorf("Expected overridden database path, got %q", cfg.DatabasePath)
	}
	if cfg.DefaultActor != "robot" {
		t.Errorf("Expected actor from file, got %q", cfg.DefaultActor)
	}
	if cfg.VelocityWindow != 5 {
		t.Errorf("Expected velocity window 5, got %d", cfg.VelocityWindow)
	}
	if cfg.SocketPath == "" {
		t.Error("Expected the unset socket path filled with a default")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_actor: robot\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("BACKLOG_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VelocityWindow != 3 {
		t.Errorf("Expected default velocity window, got %d", cfg.VelocityWindow)
	}
	if cfg.DatabasePath == "" {
		t.Error("Expected default database path")
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database_path: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("BACKLOG_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("Expected a parse error for malformed YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv("BACKLOG_CONFIG", path)

	original := &Config{
		DatabasePath:   "/tmp/rt.db",
		SocketPath:     "/tmp/rt.sock",
		DefaultActor:   "carol",
		VelocityWindow: 7,
	}
	if err := original.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("Round trip mismatch: %+v != %+v", loaded, original)
	}
}
