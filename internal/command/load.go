package command

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/scrollback/internal/db"
	"github.com/adamavenir/scrollback/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type loadResult struct {
	ChannelID string   `json:"channel_id"`
	PostIDs   []string `json:"post_ids"`
	Recent    bool     `json:"recent"`
	Oldest    bool     `json:"oldest"`
	Chunks    int      `json:"chunks"`
}

// NewLoadCmd creates the load command.
func NewLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Fetch a window of posts into the channel's chunk cache",
		Long: `Fetch a window of posts into the channel's chunk cache.

Without flags the latest posts are loaded. --before and --after page
from an anchor post (the anchor is included), --around centers on one.`,
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

			opts := types.PostQueryOptions{Limit: ctx.Config.LoadLimit}
			opts.BeforeID, _ = cmd.Flags().GetString("before")
			opts.AfterID, _ = cmd.Flags().GetString("after")
			opts.AroundID, _ = cmd.Flags().GetString("around")
			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
				opts.Limit = limit
			}
			if countAnchors(opts) > 1 {
				return writeCommandError(cmd, fmt.Errorf("use only one of --before, --after, --around"))
			}

			result, err := loadWindow(ctx, channelID, opts)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d posts into #%s (%d chunks)\n", len(result.PostIDs), channelID, result.Chunks)
			if result.Recent {
				fmt.Fprintln(cmd.OutOrStdout(), "  reached latest post")
			}
			if result.Oldest {
				fmt.Fprintln(cmd.OutOrStdout(), "  reached oldest post")
			}
			return nil
		},
	}

	cmd.Flags().String("before", "", "load posts older than this post")
	cmd.Flags().String("after", "", "load posts newer than this post")
	cmd.Flags().String("around", "", "load posts around this post")
	cmd.Flags().Int("limit", 0, "posts per side of the anchor (default from config)")

	return cmd
}

func loadWindow(ctx *CommandContext, channelID string, opts types.PostQueryOptions) (loadResult, error) {
	window, state, err := db.FetchWindow(ctx.DB, channelID, opts)
	if err != nil {
		return loadResult{}, err
	}

	ctx.Logger.Debug("loaded window",
		zap.String("channel", channelID),
		zap.Int("posts", len(window.Posts)),
		zap.Bool("recent", window.Recent),
		zap.Bool("oldest", window.Oldest))

	ids := window.Order()
	if ids == nil {
		ids = []string{}
	}
	return loadResult{
		ChannelID: channelID,
		PostIDs:   ids,
		Recent:    window.Recent,
		Oldest:    window.Oldest,
		Chunks:    len(state.Chunks(channelID)),
	}, nil
}

func countAnchors(opts types.PostQueryOptions) int {
	count := 0
	for _, anchor := range []string{opts.BeforeID, opts.AfterID, opts.AroundID} {
		if anchor != "" {
			count++
		}
	}
	return count
}
