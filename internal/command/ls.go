package command

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/scrollback/internal/db"
	"github.com/adamavenir/scrollback/internal/types"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

// NewLsCmd creates the ls command.
func NewLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List channels with their post and chunk counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			var matcher glob.Glob
			if pattern, _ := cmd.Flags().GetString("match"); pattern != "" {
				matcher, err = glob.Compile(pattern)
				if err != nil {
					return writeCommandError(cmd, fmt.Errorf("invalid --match pattern: %w", err))
				}
			}

			channels, err := db.ListChannels(ctx.DB)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			filtered := make([]types.ChannelSummary, 0, len(channels))
			for _, channel := range channels {
				if matcher != nil && !matcher.Match(channel.ChannelID) {
					continue
				}
				filtered = append(filtered, channel)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(filtered)
			}

			out := cmd.OutOrStdout()
			if len(filtered) == 0 {
				fmt.Fprintln(out, "No channels")
				return nil
			}
			for _, channel := range filtered {
				unread := ""
				if channel.LastPostAt > channel.LastViewedAt {
					unread = " *"
				}
				fmt.Fprintf(out, "#%s%s  %d posts, %d chunks, last post %s\n",
					channel.ChannelID, unread, channel.PostCount, channel.ChunkCount,
					formatTimestamp(channel.LastPostAt, ctx.Location))
			}
			return nil
		},
	}

	cmd.Flags().String("match", "", "only list channels matching a glob (e.g. 'team-*')")

	return cmd
}
