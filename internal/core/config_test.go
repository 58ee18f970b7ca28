package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(EnvUser, "")
	t.Setenv(EnvTimezone, "")
	t.Setenv(EnvLoadLimit, "")

	config, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if config.LoadLimit != DefaultLoadLimit {
		t.Fatalf("expected default limit, got %d", config.LoadLimit)
	}
	loc, err := config.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %s", loc)
	}
}

func TestLoadConfigLayering(t *testing.T) {
	t.Setenv(EnvUser, "")
	t.Setenv(EnvTimezone, "")
	t.Setenv(EnvLoadLimit, "")
	dir := t.TempDir()

	if err := WriteConfig(dir, Config{User: "alice", Timezone: "UTC", LoadLimit: 10, HideJoinLeave: true}); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SCROLLBACK_USER=bob\nSCROLLBACK_LIMIT=5\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvLoadLimit, "7")

	config, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if config.User != "bob" {
		t.Fatalf("expected .env to override user, got %q", config.User)
	}
	if config.LoadLimit != 7 {
		t.Fatalf("expected process env to win, got %d", config.LoadLimit)
	}
	if !config.HideJoinLeave {
		t.Fatal("expected hide_join_leave from file")
	}
}

func TestLoadConfigRejectsBadLimit(t *testing.T) {
	t.Setenv(EnvLoadLimit, "zero")
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for invalid limit")
	}
}

func TestConfigLocationInvalid(t *testing.T) {
	if _, err := (Config{Timezone: "Not/AZone"}).Location(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
