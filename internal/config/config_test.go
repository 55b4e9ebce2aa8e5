package config

import (
	"strings"
	"testing"
	"time"
)

func setCreds(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_ID", "cid")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("USER_AGENT", "harvester-test/0.1")
	t.Setenv("USER_ID", "")
	t.Setenv("USER_PASS", "")
}

func TestLoadDefaults(t *testing.T) {
	setCreds(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeedFile != "seeds.txt" {
		t.Fatalf("seed_file default %q", cfg.SeedFile)
	}
	if cfg.MaxPages != 0 {
		t.Fatalf("max_pages default %d, want 0 (unbounded)", cfg.MaxPages)
	}
	if cfg.MaxBytes != 500*1024*1024 {
		t.Fatalf("max_bytes default %d", cfg.MaxBytes)
	}
	if cfg.RotateSize != 10*1024*1024 {
		t.Fatalf("rotate_size default %d", cfg.RotateSize)
	}
	if cfg.Workers != 16 {
		t.Fatalf("workers default %d", cfg.Workers)
	}
	if cfg.HopLimit != 1 {
		t.Fatalf("hop_limit default %d", cfg.HopLimit)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Fatalf("idle timeout %v", cfg.IdleTimeout)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Fatalf("poll interval %v", cfg.PollInterval)
	}
	if cfg.VisitedStoreType != "memory" {
		t.Fatalf("visited_store_type default %q", cfg.VisitedStoreType)
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("CLIENT_ID", "")
	t.Setenv("CLIENT_SECRET", "")
	t.Setenv("USER_AGENT", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "missing credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestCredentialsValidate(t *testing.T) {
	creds := Credentials{ClientID: "a", ClientSecret: "b", UserAgent: "c"}
	if err := creds.Validate(); err != nil {
		t.Fatalf("app-only credentials should validate: %v", err)
	}

	creds.Username = "bot"
	if err := creds.Validate(); err == nil {
		t.Fatalf("expected error for username without password")
	}

	creds.Password = "pw"
	if err := creds.Validate(); err != nil {
		t.Fatalf("full credentials should validate: %v", err)
	}
}
