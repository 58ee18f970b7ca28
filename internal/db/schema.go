package db

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
-- Channel posts: the full post log
CREATE TABLE IF NOT EXISTS sb_posts (
  id TEXT PRIMARY KEY,                 -- e.g., "post-a1b2c3d4"
  channel_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  message TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT '',       -- '', system_join, system_leave, system_ephemeral
  create_at INTEGER NOT NULL,          -- unix ms
  delete_at INTEGER NOT NULL DEFAULT 0 -- unix ms, 0 if live
);

CREATE INDEX IF NOT EXISTS idx_sb_posts_channel_create ON sb_posts(channel_id, create_at, id);

-- Loaded windows of a channel (the chunk cache)
CREATE TABLE IF NOT EXISTS sb_chunks (
  guid TEXT PRIMARY KEY,               -- uuid
  channel_id TEXT NOT NULL,
  position INTEGER NOT NULL,           -- 0 = newest chunk
  recent INTEGER NOT NULL DEFAULT 0,   -- nothing newer exists
  oldest INTEGER NOT NULL DEFAULT 0    -- nothing older exists
);

CREATE INDEX IF NOT EXISTS idx_sb_chunks_channel ON sb_chunks(channel_id, position);

CREATE TABLE IF NOT EXISTS sb_chunk_posts (
  chunk_guid TEXT NOT NULL,
  seq INTEGER NOT NULL,                -- 0 = newest post in chunk
  post_id TEXT NOT NULL,
  PRIMARY KEY (chunk_guid, seq),
  FOREIGN KEY (chunk_guid) REFERENCES sb_chunks(guid) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sb_chunk_posts_post ON sb_chunk_posts(post_id);

-- Per-channel view state
CREATE TABLE IF NOT EXISTS sb_channel_views (
  channel_id TEXT PRIMARY KEY,
  last_viewed_at INTEGER NOT NULL DEFAULT 0,
  prefetch_status TEXT NOT NULL DEFAULT 'not_started',
  updated_at INTEGER
);
`

// DBTX represents shared methods across sql.DB and sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitSchema initializes the scrollback schema.
func InitSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := initSchemaWith(tx); err != nil {
		_ = tx.Rollback()
		return &SchemaError{Err: err}
	}
	return tx.Commit()
}

// SchemaError reports that the database schema could not be created or
// migrated, usually because the file was written by an incompatible build.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return "schema: " + e.Err.Error() }

func (e *SchemaError) Unwrap() error { return e.Err }

func initSchemaWith(db DBTX) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return err
	}
	return migrateSchema(db)
}

// SchemaExists reports whether the scrollback schema is present.
func SchemaExists(db *sql.DB) (bool, error) {
	row := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='sb_posts'
	`)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type tableColumn struct {
	Name    string
	ColType string
	NotNull int
	PK      int
}

func getTableInfo(db DBTX, table string) ([]tableColumn, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []tableColumn
	for rows.Next() {
		var col tableColumn
		var cid int
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &col.Name, &col.ColType, &col.NotNull, &defaultValue, &col.PK); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

func hasColumn(columns []tableColumn, name string) bool {
	for _, col := range columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// migrateSchema upgrades databases created before later columns existed.
func migrateSchema(db DBTX) error {
	postCols, err := getTableInfo(db, "sb_posts")
	if err != nil {
		return err
	}
	if len(postCols) > 0 && !hasColumn(postCols, "delete_at") {
		if _, err := db.Exec("ALTER TABLE sb_posts ADD COLUMN delete_at INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}

	viewColumns, err := getTableInfo(db, "sb_channel_views")
	if err != nil {
		return err
	}
	if len(viewColumns) > 0 && !hasColumn(viewColumns, "prefetch_status") {
		if _, err := db.Exec("ALTER TABLE sb_channel_views ADD COLUMN prefetch_status TEXT NOT NULL DEFAULT 'not_started'"); err != nil {
			return err
		}
	}
	return nil
}
