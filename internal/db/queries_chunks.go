package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/adamavenir/scrollback/internal/posts"
	"github.com/adamavenir/scrollback/internal/types"
)

// LoadState restores the chunk cache of the given channels together with
// every post the chunks reference.
func LoadState(db DBTX, channelIDs ...string) (*posts.State, error) {
	state := posts.NewState()
	for _, channelID := range channelIDs {
		blocks, err := getChannelChunks(db, channelID)
		if err != nil {
			return nil, err
		}
		if blocks == nil {
			continue
		}

		var ids []string
		for _, block := range blocks {
			ids = append(ids, block.Order...)
		}
		byID, err := GetPostsByIDs(db, ids)
		if err != nil {
			return nil, err
		}
		for _, post := range byID {
			state.AddPosts(post)
		}
		state.SetChunks(channelID, blocks)
	}
	return state, nil
}

func getChannelChunks(db DBTX, channelID string) ([]types.PostOrderBlock, error) {
	rows, err := db.Query(`
		SELECT c.guid, c.recent, c.oldest, cp.post_id
		FROM sb_chunks c
		LEFT JOIN sb_chunk_posts cp ON cp.chunk_guid = c.guid
		WHERE c.channel_id = ?
		ORDER BY c.position ASC, cp.seq ASC
	`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []types.PostOrderBlock
	currentGUID := ""
	for rows.Next() {
		var guid string
		var recent, oldest int
		var postID sql.NullString
		if err := rows.Scan(&guid, &recent, &oldest, &postID); err != nil {
			return nil, err
		}
		if guid != currentGUID || len(blocks) == 0 {
			blocks = append(blocks, types.PostOrderBlock{Order: []string{}, Recent: recent == 1, Oldest: oldest == 1})
			currentGUID = guid
		}
		if postID.Valid {
			last := &blocks[len(blocks)-1]
			last.Order = append(last.Order, postID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// SaveChannelChunks replaces the persisted chunk list of a channel.
func SaveChannelChunks(db DBTX, channelID string, blocks []types.PostOrderBlock) error {
	if _, err := db.Exec(`
		DELETE FROM sb_chunk_posts
		WHERE chunk_guid IN (SELECT guid FROM sb_chunks WHERE channel_id = ?)
	`, channelID); err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM sb_chunks WHERE channel_id = ?", channelID); err != nil {
		return err
	}

	for position, block := range blocks {
		guid := uuid.NewString()
		if _, err := db.Exec(`
			INSERT INTO sb_chunks (guid, channel_id, position, recent, oldest)
			VALUES (?, ?, ?, ?, ?)
		`, guid, channelID, position, boolToInt(block.Recent), boolToInt(block.Oldest)); err != nil {
			return err
		}
		for seq, postID := range block.Order {
			if _, err := db.Exec(`
				INSERT INTO sb_chunk_posts (chunk_guid, seq, post_id) VALUES (?, ?, ?)
			`, guid, seq, postID); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordWindow merges a loaded window into the channel's chunk cache.
func RecordWindow(db *sql.DB, channelID string, window ChannelWindow) (*posts.State, error) {
	var state *posts.State
	err := withTx(db, func(tx *sql.Tx) error {
		var err error
		state, err = LoadState(tx, channelID)
		if err != nil {
			return err
		}
		state.AddPosts(window.Posts...)
		state.ReceivePosts(channelID, window.Order(), window.Recent, window.Oldest)
		return SaveChannelChunks(tx, channelID, state.Chunks(channelID))
	})
	if err != nil {
		return nil, fmt.Errorf("record window for %s: %w", channelID, err)
	}
	return state, nil
}

// FetchWindow reads a window from the post log into the chunk cache. The
// channel's prefetch status is started before the read and records how it
// ended.
func FetchWindow(db *sql.DB, channelID string, options types.PostQueryOptions) (ChannelWindow, *posts.State, error) {
	if err := SetPrefetchStatus(db, channelID, types.RequestStarted); err != nil {
		return ChannelWindow{}, nil, err
	}
	window, err := GetChannelPosts(db, channelID, options)
	var state *posts.State
	if err == nil {
		state, err = RecordWindow(db, channelID, window)
	}
	if err != nil {
		if statusErr := SetPrefetchStatus(db, channelID, types.RequestFailure); statusErr != nil {
			return ChannelWindow{}, nil, errors.Join(err, statusErr)
		}
		return ChannelWindow{}, nil, err
	}
	if err := SetPrefetchStatus(db, channelID, types.RequestSuccess); err != nil {
		return ChannelWindow{}, nil, err
	}
	return window, state, nil
}

// Snapshot loads the chunk cache and view state of one channel.
func Snapshot(db DBTX, channelID string) (*posts.State, ViewStates, error) {
	state, err := LoadState(db, channelID)
	if err != nil {
		return nil, nil, err
	}
	views, err := LoadViewStates(db, channelID)
	if err != nil {
		return nil, nil, err
	}
	return state, views, nil
}

// PublishPost stores a new post and places it in the loaded chunk that
// covers its create time, if any.
func PublishPost(db *sql.DB, post types.Post) (types.Post, error) {
	var created types.Post
	err := withTx(db, func(tx *sql.Tx) error {
		var err error
		created, err = CreatePost(tx, post)
		if err != nil {
			return err
		}
		state, err := LoadState(tx, created.ChannelID)
		if err != nil {
			return err
		}
		if !state.HasChannel(created.ChannelID) {
			return nil
		}
		state.ReceiveNewPost(created)
		return SaveChannelChunks(tx, created.ChannelID, state.Chunks(created.ChannelID))
	})
	if err != nil {
		return types.Post{}, err
	}
	return created, nil
}

// RemovePost deletes a post from the log and the chunk cache.
func RemovePost(db *sql.DB, id string) (bool, error) {
	removed := false
	err := withTx(db, func(tx *sql.Tx) error {
		post, err := GetPost(tx, id)
		if err != nil {
			return err
		}
		if post == nil {
			return nil
		}
		state, err := LoadState(tx, post.ChannelID)
		if err != nil {
			return err
		}
		if state.HasChannel(post.ChannelID) {
			state.RemovePost(post.ID)
			if err := SaveChannelChunks(tx, post.ChannelID, state.Chunks(post.ChannelID)); err != nil {
				return err
			}
		}
		removed, err = DeletePost(tx, post.ID)
		return err
	})
	return removed, err
}

func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
