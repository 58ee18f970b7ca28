package db

import (
	"database/sql"

	"github.com/adamavenir/scrollback/internal/core"
)

// OpenDatabase opens the SQLite database for a project.
func OpenDatabase(project core.Project) (*sql.DB, error) {
	core.EnsureGitignore(project.Dir())

	conn, err := sql.Open("sqlite", project.DBPath)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return conn, nil
}
