package db

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adamavenir/scrollback/internal/posts"
	"github.com/adamavenir/scrollback/internal/types"
)

// ArchiveResult summarizes a post archive import.
type ArchiveResult struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// ExportPosts appends every post of a channel to a JSONL archive, oldest
// first, and returns the number written.
func ExportPosts(db DBTX, channelID, path string) (int, error) {
	rows, err := db.Query(fmt.Sprintf(`
		SELECT %s FROM sb_posts
		WHERE channel_id = ?
		ORDER BY create_at ASC, id ASC
	`, postColumns), channelID)
	if err != nil {
		return 0, err
	}
	exported, err := scanPosts(rows)
	if err != nil {
		return 0, err
	}
	for _, post := range exported {
		if err := appendJSONLine(path, post); err != nil {
			return 0, err
		}
	}
	return len(exported), nil
}

// ImportPosts adds the posts of a JSONL archive to the post log. Posts
// already in the log are counted as duplicates; unreadable lines and
// posts without a channel are skipped. Imported posts of loaded channels
// go through the chunk cache like new posts, so chunks claiming the
// latest or oldest post stay accurate.
func ImportPosts(db *sql.DB, path string) (ArchiveResult, error) {
	lines, truncated, err := readJSONLLines(path)
	if err != nil {
		return ArchiveResult{}, err
	}

	result := ArchiveResult{Skipped: truncated}
	err = withTx(db, func(tx *sql.Tx) error {
		states := map[string]*posts.State{}
		for _, line := range lines {
			var post types.Post
			if err := json.Unmarshal([]byte(line), &post); err != nil || post.ID == "" || post.ChannelID == "" || post.CreateAt == 0 {
				result.Skipped++
				continue
			}
			existing, err := GetPost(tx, post.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Duplicates++
				continue
			}
			created, err := CreatePost(tx, post)
			if err != nil {
				return err
			}
			result.Imported++

			state, ok := states[created.ChannelID]
			if !ok {
				state, err = LoadState(tx, created.ChannelID)
				if err != nil {
					return err
				}
				states[created.ChannelID] = state
			}
			state.ReceiveNewPost(created)
		}

		for channelID, state := range states {
			if !state.HasChannel(channelID) {
				continue
			}
			if err := SaveChannelChunks(tx, channelID, state.Chunks(channelID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ArchiveResult{}, err
	}
	return result, nil
}

func appendJSONLine(filePath string, record any) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return atomicAppend(filePath, data)
}

func atomicAppend(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}

	return f.Sync()
}

// readJSONLLines returns the non-empty lines of a JSONL file. A final line
// without a trailing newline is a partial write and is dropped; the count
// of dropped lines is returned.
func readJSONLLines(filePath string) ([]string, int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	truncated := false
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		buf := make([]byte, 1)
		if _, err := file.ReadAt(buf, info.Size()-1); err == nil {
			truncated = buf[0] != '\n'
		}
	}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	if truncated && len(lines) > 0 {
		return lines[:len(lines)-1], 1, nil
	}
	return lines, 0, nil
}
