package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DirName is the per-project state directory.
	DirName = ".scrollback"
	DBFile  = "scrollback.db"
)

// Project represents a scrollback project.
type Project struct {
	Root   string
	DBPath string
}

// Dir returns the project state directory.
func (p Project) Dir() string {
	return filepath.Dir(p.DBPath)
}

// DiscoverProject walks up from startDir to find a .scrollback directory.
func DiscoverProject(startDir string) (Project, error) {
	current := startDir
	if current == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		current = cwd
	}
	current, err := filepath.Abs(current)
	if err != nil {
		return Project{}, err
	}

	for {
		stateDir := filepath.Join(current, DirName)
		info, err := os.Stat(stateDir)
		if err == nil && info.IsDir() {
			dbPath := filepath.Join(stateDir, DBFile)
			if _, err := os.Stat(dbPath); err != nil {
				return Project{}, fmt.Errorf("scrollback database not found. Run 'scrollback init' first")
			}
			return Project{Root: current, DBPath: dbPath}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Project{}, fmt.Errorf("not initialized. Run 'scrollback init' first")
		}
		current = parent
	}
}

// InitProject initializes a new project at dir.
func InitProject(dir string, force bool) (Project, error) {
	root := dir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Project{}, err
	}

	stateDir := filepath.Join(root, DirName)
	dbPath := filepath.Join(stateDir, DBFile)

	if info, err := os.Stat(stateDir); err == nil && info.IsDir() && !force {
		return Project{}, fmt.Errorf("already initialized. Use --force to reinitialize")
	}

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return Project{}, err
	}
	EnsureGitignore(stateDir)

	if force {
		if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Project{}, err
		}
	}

	return Project{Root: root, DBPath: dbPath}, nil
}

// EnsureGitignore ensures the state dir ignores sqlite and env files.
func EnsureGitignore(stateDir string) {
	gitignore := filepath.Join(stateDir, ".gitignore")
	entries := []string{"*.db", "*.db-wal", "*.db-shm", ".env"}

	data, err := os.ReadFile(gitignore)
	if err != nil {
		_ = os.WriteFile(gitignore, []byte(strings.Join(entries, "\n")+"\n"), 0o644)
		return
	}
	content := string(data)

	lines := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		lines[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range entries {
		if !lines[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return
	}
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += strings.Join(missing, "\n") + "\n"
	_ = os.WriteFile(gitignore, []byte(content), 0o644)
}
