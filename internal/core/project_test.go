package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitAndDiscoverProject(t *testing.T) {
	root := t.TempDir()
	project, err := InitProject(root, false)
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	if err := os.WriteFile(project.DBPath, nil, 0o644); err != nil {
		t.Fatalf("touch db: %v", err)
	}

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := DiscoverProject(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if found.DBPath != project.DBPath {
		t.Fatalf("expected %s, got %s", project.DBPath, found.DBPath)
	}

	if _, err := InitProject(root, false); err == nil {
		t.Fatal("expected error when already initialized")
	}

	data, err := os.ReadFile(filepath.Join(project.Dir(), ".gitignore"))
	if err != nil {
		t.Fatalf("read gitignore: %v", err)
	}
	if !strings.Contains(string(data), "*.db") {
		t.Fatalf("expected sqlite ignores, got %q", data)
	}
}

func TestShortPostID(t *testing.T) {
	if got := ShortPostID("post-abcd1234"); got != "abcd" {
		t.Fatalf("expected abcd, got %q", got)
	}
	if got := ShortPostID("xy"); got != "xy" {
		t.Fatalf("expected xy, got %q", got)
	}
}
