package types

// PostType represents the kind of a post.
type PostType string

const (
	PostTypeDefault   PostType = ""
	PostTypeJoin      PostType = "system_join"
	PostTypeLeave     PostType = "system_leave"
	PostTypeEphemeral PostType = "system_ephemeral"
)

// IsJoinLeave reports whether the post records channel membership changes.
func (t PostType) IsJoinLeave() bool {
	return t == PostTypeJoin || t == PostTypeLeave
}

// Post represents a channel post. Timestamps are unix milliseconds.
type Post struct {
	ID        string   `json:"id"`
	ChannelID string   `json:"channel_id"`
	UserID    string   `json:"user_id"`
	Message   string   `json:"message"`
	Type      PostType `json:"type,omitempty"`
	CreateAt  int64    `json:"create_at"`
	DeleteAt  int64    `json:"delete_at,omitempty"`
}

// PostOrderBlock is a contiguous run of post ids cached for a channel.
// Order is newest first. Recent marks that nothing newer exists;
// Oldest marks that nothing older exists.
type PostOrderBlock struct {
	Order  []string `json:"order"`
	Recent bool     `json:"recent,omitempty"`
	Oldest bool     `json:"oldest,omitempty"`
}

// RequestStatus tracks a background load for a channel.
type RequestStatus string

const (
	RequestNotStarted RequestStatus = "not_started"
	RequestStarted    RequestStatus = "started"
	RequestSuccess    RequestStatus = "success"
	RequestFailure    RequestStatus = "failure"
)

// ChannelView is the per-channel view state.
type ChannelView struct {
	ChannelID      string        `json:"channel_id"`
	LastViewedAt   int64         `json:"last_viewed_at"`
	PrefetchStatus RequestStatus `json:"prefetch_status"`
}

// ChannelSummary describes a channel known to the store.
type ChannelSummary struct {
	ChannelID    string `json:"channel_id"`
	PostCount    int64  `json:"post_count"`
	ChunkCount   int64  `json:"chunk_count"`
	LastPostAt   int64  `json:"last_post_at"`
	LastViewedAt int64  `json:"last_viewed_at"`
}

// PostQueryOptions selects a window of a channel's post log.
// At most one of BeforeID, AfterID and AroundID should be set.
type PostQueryOptions struct {
	BeforeID string
	AfterID  string
	AroundID string
	Limit    int
}
