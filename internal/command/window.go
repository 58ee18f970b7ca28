package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	"github.com/adamavenir/scrollback/internal/postlist"
	"github.com/adamavenir/scrollback/internal/posts"
	"github.com/adamavenir/scrollback/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type windowOutput struct {
	ChannelID string `json:"channel_id"`
	postlist.Result
	Posts []types.Post `json:"posts"`
}

// windowView re-evaluates one channel's window against fresh snapshots.
type windowView struct {
	ctx      *CommandContext
	selector *postlist.Selector
	req      postlist.Request
	unread   bool
}

func newWindowView(ctx *CommandContext, req postlist.Request, unread bool) *windowView {
	return &windowView{
		ctx: ctx,
		selector: postlist.NewSelector(postlist.Config{
			Location:      ctx.Location,
			HideJoinLeave: ctx.Config.HideJoinLeave,
			Logger:        ctx.Logger,
		}),
		req:    req,
		unread: unread,
	}
}

func (w *windowView) snapshot() (postlist.Result, *posts.State, error) {
	state, views, err := db.Snapshot(w.ctx.DB, w.req.ChannelID)
	if err != nil {
		return postlist.Result{}, nil, err
	}
	req := w.req
	if w.unread && req.UnreadChunkTimeStamp == 0 {
		req.UnreadChunkTimeStamp = views.ChannelView(req.ChannelID).LastViewedAt
	}
	return w.selector.Select(state, views, req), state, nil
}

func (w *windowView) write(out io.Writer, result postlist.Result, state *posts.State) error {
	if w.ctx.JSONMode {
		payload := windowOutput{ChannelID: w.req.ChannelID, Result: result, Posts: []types.Post{}}
		for _, id := range result.FormattedPostIDs {
			if post, ok := state.Post(id); ok {
				payload.Posts = append(payload.Posts, post)
			}
		}
		return json.NewEncoder(out).Encode(payload)
	}
	renderWindow(out, w.req.ChannelID, result, state, w.ctx.Location, time.Now())
	return nil
}

// NewWindowCmd creates the window command.
func NewWindowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Show the posts a reader should see in a channel",
		Long: `Show the posts a reader should see in a channel.

The window is picked in priority order: the chunk around --focus, the
chunk holding the unread boundary (--unread-since or --unread), or the
latest chunk. A "New Messages" line marks the first post newer than the
channel's read position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			channelID, err := ctx.RequireChannel()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			focus, _ := cmd.Flags().GetString("focus")
			unreadSince, _ := cmd.Flags().GetString("unread-since")
			unread, _ := cmd.Flags().GetBool("unread")
			follow, _ := cmd.Flags().GetBool("follow")
			debounce, _ := cmd.Flags().GetDuration("debounce")

			req := postlist.Request{
				ChannelID:     channelID,
				FocusedPostID: focus,
				CurrentUserID: ctx.ResolveUser(cmd),
			}
			if unreadSince != "" {
				req.UnreadChunkTimeStamp, err = core.ParseTimeExpression(unreadSince, time.Now(), postResolver(ctx))
				if err != nil {
					return writeCommandError(cmd, err)
				}
			}

			view := newWindowView(ctx, req, unread)
			result, state, err := view.snapshot()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := view.write(cmd.OutOrStdout(), result, state); err != nil {
				return writeCommandError(cmd, err)
			}
			if !follow {
				return nil
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := followWindow(sigCtx, cmd.OutOrStdout(), view, result, debounce); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().String("focus", "", "show the chunk around this post")
	cmd.Flags().String("unread-since", "", "show the chunk holding the first post after this time (time expression)")
	cmd.Flags().Bool("unread", false, "show the chunk holding the channel's unread boundary")
	cmd.Flags().String("as", "", "view as this user (own posts never start new messages)")
	cmd.Flags().Bool("follow", false, "keep watching the cache and reprint when the window changes")
	cmd.Flags().Duration("debounce", 150*time.Millisecond, "wait this long after a change before reprinting")

	return cmd
}

// followWindow reprints the window whenever the project database changes
// and the selected window differs from the last one printed.
func followWindow(ctx context.Context, out io.Writer, view *windowView, last postlist.Result, debounce time.Duration) error {
	return watchProject(ctx, view.ctx.Project.Dir(), debounce, view.ctx.Logger, func() error {
		result, state, err := view.snapshot()
		if err != nil {
			return err
		}
		if !windowChanged(last, result) {
			return nil
		}
		view.ctx.Logger.Debug("window changed", zap.String("channel", view.req.ChannelID))
		last = result
		if !view.ctx.JSONMode {
			fmt.Fprintln(out)
		}
		return view.write(out, result, state)
	})
}

func windowChanged(prev, next postlist.Result) bool {
	return prev.Mode != next.Mode ||
		prev.AtLatestPost != next.AtLatestPost ||
		prev.AtOldestPost != next.AtOldestPost ||
		prev.IsFirstLoad != next.IsFirstLoad ||
		prev.IsPrefetchingInProcess != next.IsPrefetchingInProcess ||
		!slices.Equal(prev.FormattedPostIDs, next.FormattedPostIDs)
}
