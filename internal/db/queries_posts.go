package db

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/adamavenir/scrollback/internal/types"
)

// postColumns is the explicit column list for SELECT queries.
const postColumns = `id, channel_id, user_id, message, type, create_at, delete_at`

// ChannelWindow is one window of a channel's post log, newest first.
type ChannelWindow struct {
	Posts  []types.Post
	Recent bool
	Oldest bool
}

// Order returns the window's post ids, newest first.
func (w ChannelWindow) Order() []string {
	ids := make([]string, len(w.Posts))
	for i, post := range w.Posts {
		ids[i] = post.ID
	}
	return ids
}

// CreatePost inserts a post, assigning an id and create time when missing.
func CreatePost(db DBTX, post types.Post) (types.Post, error) {
	if strings.TrimSpace(post.ChannelID) == "" {
		return types.Post{}, fmt.Errorf("channel is required")
	}
	if post.CreateAt == 0 {
		post.CreateAt = time.Now().UnixMilli()
	}
	if post.ID == "" {
		id, err := generateUniquePostID(db)
		if err != nil {
			return types.Post{}, err
		}
		post.ID = id
	}

	_, err := db.Exec(`
		INSERT INTO sb_posts (id, channel_id, user_id, message, type, create_at, delete_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, post.ID, post.ChannelID, post.UserID, post.Message, string(post.Type), post.CreateAt, post.DeleteAt)
	if err != nil {
		if isConstraintError(err) {
			return types.Post{}, fmt.Errorf("post %s already exists", post.ID)
		}
		return types.Post{}, err
	}
	return post, nil
}

// GetPost returns a post by id, or nil when missing.
func GetPost(db DBTX, id string) (*types.Post, error) {
	row := db.QueryRow(fmt.Sprintf("SELECT %s FROM sb_posts WHERE id = ?", postColumns), id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post from the log and from every cached chunk.
func DeletePost(db DBTX, id string) (bool, error) {
	if _, err := db.Exec("DELETE FROM sb_chunk_posts WHERE post_id = ?", id); err != nil {
		return false, err
	}
	result, err := db.Exec("DELETE FROM sb_posts WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetPostsByIDs returns the posts that exist among ids, keyed by id.
func GetPostsByIDs(db DBTX, ids []string) (map[string]types.Post, error) {
	result := make(map[string]types.Post, len(ids))
	const batch = 500
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		chunk := ids[start:end]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		rows, err := db.Query(fmt.Sprintf("SELECT %s FROM sb_posts WHERE id IN (%s)", postColumns, placeholders), args...)
		if err != nil {
			return nil, err
		}
		posts, err := scanPosts(rows)
		if err != nil {
			return nil, err
		}
		for _, post := range posts {
			result[post.ID] = post
		}
	}
	return result, nil
}

// GetChannelPosts reads one window of a channel's post log. Windows
// anchored on a post include the anchor so they link up with the chunk
// that already holds it.
func GetChannelPosts(db DBTX, channelID string, options types.PostQueryOptions) (ChannelWindow, error) {
	limit := options.Limit
	if limit <= 0 {
		limit = 30
	}

	switch {
	case options.AroundID != "":
		return getPostsAround(db, channelID, options.AroundID, limit)
	case options.BeforeID != "":
		anchor, err := requireChannelPost(db, channelID, options.BeforeID)
		if err != nil {
			return ChannelWindow{}, err
		}
		older, hasMore, err := queryOlder(db, channelID, &anchor, limit)
		if err != nil {
			return ChannelWindow{}, err
		}
		return ChannelWindow{Posts: append([]types.Post{anchor}, older...), Oldest: !hasMore}, nil
	case options.AfterID != "":
		anchor, err := requireChannelPost(db, channelID, options.AfterID)
		if err != nil {
			return ChannelWindow{}, err
		}
		newer, hasMore, err := queryNewer(db, channelID, anchor, limit)
		if err != nil {
			return ChannelWindow{}, err
		}
		return ChannelWindow{Posts: append(newer, anchor), Recent: !hasMore}, nil
	default:
		latest, hasMore, err := queryOlder(db, channelID, nil, limit)
		if err != nil {
			return ChannelWindow{}, err
		}
		return ChannelWindow{Posts: latest, Recent: true, Oldest: !hasMore}, nil
	}
}

func getPostsAround(db DBTX, channelID, postID string, limit int) (ChannelWindow, error) {
	anchor, err := requireChannelPost(db, channelID, postID)
	if err != nil {
		return ChannelWindow{}, err
	}
	half := max(limit/2, 1)

	older, olderMore, err := queryOlder(db, channelID, &anchor, half)
	if err != nil {
		return ChannelWindow{}, err
	}
	newer, newerMore, err := queryNewer(db, channelID, anchor, half)
	if err != nil {
		return ChannelWindow{}, err
	}

	posts := make([]types.Post, 0, len(newer)+1+len(older))
	posts = append(posts, newer...)
	posts = append(posts, anchor)
	posts = append(posts, older...)
	return ChannelWindow{Posts: posts, Recent: !newerMore, Oldest: !olderMore}, nil
}

func requireChannelPost(db DBTX, channelID, postID string) (types.Post, error) {
	post, err := GetPost(db, postID)
	if err != nil {
		return types.Post{}, err
	}
	if post == nil || post.ChannelID != channelID {
		return types.Post{}, fmt.Errorf("post %s not found in channel %s", postID, channelID)
	}
	return *post, nil
}

// queryOlder returns up to limit posts older than anchor (or the newest
// posts when anchor is nil), newest first, and whether more exist.
func queryOlder(db DBTX, channelID string, anchor *types.Post, limit int) ([]types.Post, bool, error) {
	query := fmt.Sprintf("SELECT %s FROM sb_posts WHERE channel_id = ?", postColumns)
	args := []any{channelID}
	if anchor != nil {
		query += " AND (create_at < ? OR (create_at = ? AND id < ?))"
		args = append(args, anchor.CreateAt, anchor.CreateAt, anchor.ID)
	}
	query += " ORDER BY create_at DESC, id DESC LIMIT ?"
	args = append(args, limit+1)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, false, err
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, false, err
	}
	if len(posts) > limit {
		return posts[:limit], true, nil
	}
	return posts, false, nil
}

// queryNewer returns up to limit posts newer than anchor, newest first,
// and whether more exist.
func queryNewer(db DBTX, channelID string, anchor types.Post, limit int) ([]types.Post, bool, error) {
	rows, err := db.Query(fmt.Sprintf(`
		SELECT %s FROM sb_posts
		WHERE channel_id = ? AND (create_at > ? OR (create_at = ? AND id > ?))
		ORDER BY create_at ASC, id ASC
		LIMIT ?
	`, postColumns), channelID, anchor.CreateAt, anchor.CreateAt, anchor.ID, limit+1)
	if err != nil {
		return nil, false, err
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	slices.Reverse(posts)
	return posts, hasMore, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(scanner rowScanner) (types.Post, error) {
	var post types.Post
	var postType string
	if err := scanner.Scan(&post.ID, &post.ChannelID, &post.UserID, &post.Message, &postType, &post.CreateAt, &post.DeleteAt); err != nil {
		return types.Post{}, err
	}
	post.Type = types.PostType(postType)
	return post, nil
}

func scanPosts(rows *sql.Rows) ([]types.Post, error) {
	defer rows.Close()
	var posts []types.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
