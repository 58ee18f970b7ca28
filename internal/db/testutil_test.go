package db

import (
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/adamavenir/scrollback/internal/types"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func requireSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
}

// seedPosts creates posts in channel with create times ts..., ids "p<ts>".
func seedPosts(t *testing.T, db *sql.DB, channelID string, times ...int64) []types.Post {
	t.Helper()
	created := make([]types.Post, 0, len(times))
	for _, ts := range times {
		post, err := CreatePost(db, types.Post{
			ID:        postID(ts),
			ChannelID: channelID,
			UserID:    "alice",
			Message:   "hello",
			CreateAt:  ts,
		})
		if err != nil {
			t.Fatalf("create post %d: %v", ts, err)
		}
		created = append(created, post)
	}
	return created
}

func postID(ts int64) string {
	return "p" + strconv.FormatInt(ts, 10)
}
