package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadExpandsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "9090"
postgres:
  url: postgres://file
oss:
  bucket: ${TEST_OSS_BUCKET}
photo:
  max_dimension: 1024
catalog:
  ttl: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TEST_OSS_BUCKET", "cards")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("ADMIN_EMAILS", "a@example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.OSS.Bucket != "cards" || cfg.Photo.MaxDimension != 1024 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Postgres.URL != "postgres://env" {
		t.Fatalf("expected env to win, got %s", cfg.Postgres.URL)
	}
	if cfg.Auth.AdminEmails != "a@example.com" {
		t.Fatalf("expected admin emails from env, got %q", cfg.Auth.AdminEmails)
	}
	if TTLDuration(cfg.Catalog.TTL, time.Minute) != 30*time.Second {
		t.Fatalf("expected 30s catalog ttl")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Photo.MaxBytes != DefaultPhotoMaxBytes || cfg.Intake.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Redis.Channel != "submissions:events" || cfg.Server.AdminRedirect != "/admin" {
		t.Fatalf("expected default channel and redirect, got %+v", cfg)
	}
}

func TestTTLDuration(t *testing.T) {
	if TTLDuration("", time.Minute) != time.Minute {
		t.Fatalf("empty should fall back")
	}
	if TTLDuration("bogus", time.Minute) != time.Minute {
		t.Fatalf("invalid should fall back")
	}
	if TTLDuration("2h", time.Minute) != 2*time.Hour {
		t.Fatalf("expected 2h")
	}
}
