package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/adamavenir/scrollback/internal/core"
	"modernc.org/sqlite"
)

const (
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func generateUniquePostID(db DBTX) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id, err := core.GenerateGUID("post")
		if err != nil {
			return "", err
		}
		row := db.QueryRow("SELECT 1 FROM sb_posts WHERE id = ?", id)
		var exists int
		err = row.Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to generate unique post id")
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqliteConstraint || code == sqliteConstraintPrimaryKey || code == sqliteConstraintUnique
	}
	return false
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
