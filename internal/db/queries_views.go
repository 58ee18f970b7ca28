package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/adamavenir/scrollback/internal/types"
)

// ViewStates is a snapshot of per-channel view state.
type ViewStates map[string]types.ChannelView

// ChannelView returns the channel's view state, or defaults when none is stored.
func (v ViewStates) ChannelView(channelID string) types.ChannelView {
	if view, ok := v[channelID]; ok {
		return view
	}
	return types.ChannelView{ChannelID: channelID, PrefetchStatus: types.RequestNotStarted}
}

// GetChannelView returns the stored view state of a channel.
func GetChannelView(db DBTX, channelID string) (types.ChannelView, error) {
	row := db.QueryRow(`
		SELECT channel_id, last_viewed_at, prefetch_status
		FROM sb_channel_views
		WHERE channel_id = ?
	`, channelID)
	var view types.ChannelView
	var status string
	if err := row.Scan(&view.ChannelID, &view.LastViewedAt, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ChannelView{ChannelID: channelID, PrefetchStatus: types.RequestNotStarted}, nil
		}
		return types.ChannelView{}, err
	}
	view.PrefetchStatus = types.RequestStatus(status)
	return view, nil
}

// LoadViewStates snapshots the view state of the given channels.
func LoadViewStates(db DBTX, channelIDs ...string) (ViewStates, error) {
	views := make(ViewStates, len(channelIDs))
	for _, channelID := range channelIDs {
		view, err := GetChannelView(db, channelID)
		if err != nil {
			return nil, err
		}
		views[channelID] = view
	}
	return views, nil
}

// SetLastViewedAt moves the channel's read position forward. Older
// timestamps are ignored.
func SetLastViewedAt(db DBTX, channelID string, ts int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO sb_channel_views (channel_id, last_viewed_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			last_viewed_at = excluded.last_viewed_at,
			updated_at = excluded.updated_at
		WHERE excluded.last_viewed_at > sb_channel_views.last_viewed_at
	`, channelID, ts, now)
	return err
}

// SetPrefetchStatus records the state of a background load.
func SetPrefetchStatus(db DBTX, channelID string, status types.RequestStatus) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO sb_channel_views (channel_id, prefetch_status, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			prefetch_status = excluded.prefetch_status,
			updated_at = excluded.updated_at
	`, channelID, string(status), now)
	return err
}

// ListChannels summarizes every channel with posts or view state.
func ListChannels(db DBTX) ([]types.ChannelSummary, error) {
	rows, err := db.Query(`
		SELECT ch.channel_id,
			(SELECT COUNT(*) FROM sb_posts p WHERE p.channel_id = ch.channel_id),
			(SELECT COUNT(*) FROM sb_chunks c WHERE c.channel_id = ch.channel_id),
			(SELECT COALESCE(MAX(create_at), 0) FROM sb_posts p WHERE p.channel_id = ch.channel_id),
			COALESCE((SELECT last_viewed_at FROM sb_channel_views v WHERE v.channel_id = ch.channel_id), 0)
		FROM (
			SELECT channel_id FROM sb_posts
			UNION
			SELECT channel_id FROM sb_channel_views
		) ch
		ORDER BY ch.channel_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []types.ChannelSummary
	for rows.Next() {
		var summary types.ChannelSummary
		if err := rows.Scan(&summary.ChannelID, &summary.PostCount, &summary.ChunkCount, &summary.LastPostAt, &summary.LastViewedAt); err != nil {
			return nil, err
		}
		channels = append(channels, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return channels, nil
}
