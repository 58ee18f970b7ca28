package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	"github.com/adamavenir/scrollback/internal/postlist"
	"github.com/adamavenir/scrollback/internal/types"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ToolContext holds what tool handlers share. Selectors are kept per
// channel so repeated reads of an unchanged window reuse formatted output.
type ToolContext struct {
	DB       *sql.DB
	Config   core.Config
	Location *time.Location
	Logger   *zap.Logger

	mu        sync.Mutex
	selectors map[string]*postlist.Selector
}

// NewToolContext creates a tool context.
func NewToolContext(dbConn *sql.DB, config core.Config, loc *time.Location, logger *zap.Logger) *ToolContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ToolContext{
		DB:        dbConn,
		Config:    config,
		Location:  loc,
		Logger:    logger,
		selectors: map[string]*postlist.Selector{},
	}
}

func (c *ToolContext) selector(channelID string) *postlist.Selector {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.selectors[channelID]
	if !ok {
		s = postlist.NewSelector(postlist.Config{
			Location:      c.Location,
			HideJoinLeave: c.Config.HideJoinLeave,
			Logger:        c.Logger,
		})
		c.selectors[channelID] = s
	}
	return s
}

type windowArgs struct {
	Channel     string `json:"channel" jsonschema:"Channel to read"`
	Focus       string `json:"focus,omitempty" jsonschema:"Post id to center the window on"`
	UnreadSince string `json:"unread_since,omitempty" jsonschema:"Show the chunk holding the first post after this time (post id, date, 2h, or unix ms)"`
	Unread      bool   `json:"unread,omitempty" jsonschema:"Show the chunk holding the channel's stored unread boundary"`
	User        string `json:"user,omitempty" jsonschema:"Reader; their own posts never start new messages"`
}

type loadArgs struct {
	Channel string `json:"channel" jsonschema:"Channel to load"`
	Before  string `json:"before,omitempty" jsonschema:"Load posts older than this post id"`
	After   string `json:"after,omitempty" jsonschema:"Load posts newer than this post id"`
	Around  string `json:"around,omitempty" jsonschema:"Load posts around this post id"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Posts per side of the anchor"`
}

type viewArgs struct {
	Channel string `json:"channel" jsonschema:"Channel to mark as read"`
	At      string `json:"at,omitempty" jsonschema:"Read position (default now)"`
}

// RegisterTools registers the scrollback tools.
func RegisterTools(server *mcp.Server, ctx *ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scrollback_window",
		Description: "Show the posts a reader should see in a channel: around a focused post, around the unread boundary, or the latest posts.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args windowArgs) (*mcp.CallToolResult, any, error) {
		return handleWindow(ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scrollback_load",
		Description: "Fetch a window of posts into the channel's chunk cache. Use the paging hints from scrollback_window.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args loadArgs) (*mcp.CallToolResult, any, error) {
		return handleLoad(ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scrollback_view",
		Description: "Mark a channel as read up to a time.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args viewArgs) (*mcp.CallToolResult, any, error) {
		return handleView(ctx, args), nil, nil
	})
}

func handleWindow(ctx *ToolContext, args windowArgs) *mcp.CallToolResult {
	channelID := sanitizeID(args.Channel)
	if channelID == "" {
		return toolError("Error: channel is required")
	}

	req := postlist.Request{
		ChannelID:     channelID,
		FocusedPostID: sanitizeID(args.Focus),
		CurrentUserID: ctx.Config.User,
	}
	if user := strings.TrimPrefix(strings.TrimSpace(args.User), "@"); user != "" {
		req.CurrentUserID = user
	}
	if args.UnreadSince != "" {
		ts, err := core.ParseTimeExpression(args.UnreadSince, time.Now(), resolver(ctx))
		if err != nil {
			return toolError(err.Error())
		}
		req.UnreadChunkTimeStamp = ts
	}

	state, views, err := db.Snapshot(ctx.DB, channelID)
	if err != nil {
		return toolError(err.Error())
	}
	if args.Unread && req.UnreadChunkTimeStamp == 0 {
		req.UnreadChunkTimeStamp = views.ChannelView(channelID).LastViewedAt
	}
	result := ctx.selector(channelID).Select(state, views, req)

	if result.IsFirstLoad {
		return toolResult(fmt.Sprintf("No posts loaded for #%s yet. Call scrollback_load first.", channelID), false)
	}

	lines := []string{fmt.Sprintf("#%s (%s, %d posts):", channelID, result.Mode, len(result.PostListIDs))}
	ids := result.FormattedPostIDs
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		switch {
		case postlist.IsStartOfNewMessages(id):
			lines = append(lines, "--- new messages ---")
		case postlist.IsDateLine(id):
			ms, _ := postlist.DateLineTime(id)
			lines = append(lines, "--- "+time.UnixMilli(ms).In(ctx.Location).Format(time.DateOnly)+" ---")
		default:
			if post, ok := state.Post(id); ok {
				lines = append(lines, formatPost(post))
			}
		}
	}
	if len(result.PostListIDs) > 0 {
		if !result.AtOldestPost {
			lines = append(lines, fmt.Sprintf("(older posts: scrollback_load before=%s)", result.PostListIDs[len(result.PostListIDs)-1]))
		}
		if !result.AtLatestPost {
			lines = append(lines, fmt.Sprintf("(newer posts: scrollback_load after=%s)", postlist.LatestPostID(result.PostListIDs)))
		}
	}
	return toolResult(strings.Join(lines, "\n"), false)
}

func handleLoad(ctx *ToolContext, args loadArgs) *mcp.CallToolResult {
	channelID := sanitizeID(args.Channel)
	if channelID == "" {
		return toolError("Error: channel is required")
	}
	opts := types.PostQueryOptions{
		BeforeID: sanitizeID(args.Before),
		AfterID:  sanitizeID(args.After),
		AroundID: sanitizeID(args.Around),
		Limit:    ctx.Config.LoadLimit,
	}
	if args.Limit > 0 {
		opts.Limit = args.Limit
	}

	window, state, err := db.FetchWindow(ctx.DB, channelID, opts)
	if err != nil {
		return toolError(err.Error())
	}
	ctx.Logger.Debug("mcp load", zap.String("channel", channelID), zap.Int("posts", len(window.Posts)))

	return toolResult(fmt.Sprintf("Loaded %d posts into #%s (%d chunks, latest=%v, oldest=%v)",
		len(window.Posts), channelID, len(state.Chunks(channelID)), window.Recent, window.Oldest), false)
}

func handleView(ctx *ToolContext, args viewArgs) *mcp.CallToolResult {
	channelID := sanitizeID(args.Channel)
	if channelID == "" {
		return toolError("Error: channel is required")
	}
	ts := time.Now().UnixMilli()
	if args.At != "" {
		parsed, err := core.ParseTimeExpression(args.At, time.Now(), resolver(ctx))
		if err != nil {
			return toolError(err.Error())
		}
		ts = parsed
	}
	if err := db.SetLastViewedAt(ctx.DB, channelID, ts); err != nil {
		return toolError(err.Error())
	}
	return toolResult(fmt.Sprintf("#%s read up to %d", channelID, ts), false)
}

func formatPost(post types.Post) string {
	switch post.Type {
	case types.PostTypeJoin:
		return fmt.Sprintf("[%s] @%s joined the channel", post.ID, post.UserID)
	case types.PostTypeLeave:
		return fmt.Sprintf("[%s] @%s left the channel", post.ID, post.UserID)
	}
	return fmt.Sprintf("[%s] @%s: %s", post.ID, post.UserID, post.Message)
}

func resolver(ctx *ToolContext) core.PostResolver {
	return func(id string) (*types.Post, error) {
		return db.GetPost(ctx.DB, id)
	}
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult(text, true)
}

func sanitizeID(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "@")
	trimmed = strings.TrimPrefix(trimmed, "#")
	return trimmed
}
