// Package postlist picks the window of posts to show for a channel.
package postlist

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adamavenir/scrollback/internal/types"
)

// Mode is the rule used to pick a chunk.
type Mode string

const (
	ModeFocusedPost    Mode = "focused_post"
	ModeUnreadBoundary Mode = "unread_boundary"
	ModeRecent         Mode = "recent"
)

// PostStore is the read side of a posts snapshot.
type PostStore interface {
	PostLookup
	ChunkAroundPost(channelID, postID string) *types.PostOrderBlock
	UnreadChunk(channelID string, ts int64) *types.PostOrderBlock
	RecentChunk(channelID string) *types.PostOrderBlock
	HasChannel(channelID string) bool
}

// ViewStates yields per-channel view state.
type ViewStates interface {
	ChannelView(channelID string) types.ChannelView
}

// Request describes what the reader is looking at.
type Request struct {
	ChannelID            string
	FocusedPostID        string
	UnreadChunkTimeStamp int64
	CurrentUserID        string
}

// Result is the selected window. FormattedPostIDs is shared with the
// selector's cache and must not be modified.
type Result struct {
	Mode                   Mode     `json:"mode"`
	PostListIDs            []string `json:"post_list_ids"`
	FormattedPostIDs       []string `json:"formatted_post_ids"`
	AtLatestPost           bool     `json:"at_latest_post"`
	AtOldestPost           bool     `json:"at_oldest_post"`
	LatestPostTimeStamp    int64    `json:"latest_post_time_stamp"`
	LastViewedAt           int64    `json:"last_viewed_at"`
	IsFirstLoad            bool     `json:"is_first_load"`
	IsPrefetchingInProcess bool     `json:"is_prefetching_in_process"`
}

// Config configures a Selector.
type Config struct {
	Location      *time.Location
	HideJoinLeave bool
	Logger        *zap.Logger
}

// Selector evaluates requests against store snapshots. Each Selector keeps
// its own caches, so use one per view.
type Selector struct {
	mu     sync.Mutex
	cfg    Config
	logger *zap.Logger
	latest LatestPostCache
	format formatCache
}

// NewSelector creates a selector.
func NewSelector(cfg Config) *Selector {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Selector{cfg: cfg, logger: logger}
}

// ResolveMode picks the selection mode for req. A focused post that the
// store does not know falls through to the next mode.
func ResolveMode(store PostLookup, req Request) Mode {
	if req.FocusedPostID != "" {
		if _, ok := store.Post(req.FocusedPostID); ok {
			return ModeFocusedPost
		}
	}
	if req.UnreadChunkTimeStamp != 0 {
		return ModeUnreadBoundary
	}
	return ModeRecent
}

// Select computes the window for req.
func (s *Selector) Select(store PostStore, views ViewStates, req Request) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := views.ChannelView(req.ChannelID)
	mode := ResolveMode(store, req)

	var chunk *types.PostOrderBlock
	switch mode {
	case ModeFocusedPost:
		chunk = store.ChunkAroundPost(req.ChannelID, req.FocusedPostID)
	case ModeUnreadBoundary:
		chunk = store.UnreadChunk(req.ChannelID, req.UnreadChunkTimeStamp)
	default:
		chunk = store.RecentChunk(req.ChannelID)
	}

	result := Result{
		Mode:                   mode,
		LastViewedAt:           view.LastViewedAt,
		IsFirstLoad:            !store.HasChannel(req.ChannelID),
		IsPrefetchingInProcess: view.PrefetchStatus == types.RequestStarted,
	}

	if chunk != nil {
		result.PostListIDs = chunk.Order
		result.AtLatestPost = chunk.Recent
		result.AtOldestPost = chunk.Oldest
	}

	if len(result.PostListIDs) > 0 {
		result.FormattedPostIDs = s.format.get(store, result.PostListIDs, FormatOptions{
			LastViewedAt:        view.LastViewedAt,
			CurrentUserID:       req.CurrentUserID,
			IndicateNewMessages: true,
			HideJoinLeave:       s.cfg.HideJoinLeave,
			Location:            s.cfg.Location,
		})
		result.LatestPostTimeStamp = s.latest.LatestPostTimeStamp(store, result.PostListIDs)
	}

	s.logger.Debug("selected post window",
		zap.String("channel", req.ChannelID),
		zap.String("mode", string(mode)),
		zap.Int("posts", len(result.PostListIDs)),
		zap.Bool("first_load", result.IsFirstLoad))

	return result
}

// formatCache returns the previous output when ids and options are unchanged.
type formatCache struct {
	ids  []string
	opts FormatOptions
	out  []string
	ok   bool
}

func (c *formatCache) get(store PostLookup, ids []string, opts FormatOptions) []string {
	if c.ok && c.opts == opts && slices.Equal(c.ids, ids) {
		return c.out
	}
	c.ids = slices.Clone(ids)
	c.opts = opts
	c.out = Format(store, ids, opts)
	c.ok = true
	return c.out
}
