package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr %q", cfg.Addr)
	}
	if cfg.SolverTimeLimitMs != 15000 {
		t.Fatalf("solver time limit %d", cfg.SolverTimeLimitMs)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("log defaults %+v", cfg.Log)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte("addr: \":9000\"\nrateLimitRps: 5\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7777")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("SOLVER_TIME_LIMIT_MS", "2500")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// Env wins over the file.
	if cfg.Addr != ":7777" {
		t.Fatalf("addr %q", cfg.Addr)
	}
	if cfg.RateLimitRPS != 5 {
		t.Fatalf("rps %v", cfg.RateLimitRPS)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Fatalf("log %+v", cfg.Log)
	}
	if cfg.SolverTimeLimitMs != 2500 {
		t.Fatalf("solver time limit %d", cfg.SolverTimeLimitMs)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
