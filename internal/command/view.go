package command

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	"github.com/spf13/cobra"
)

// NewViewCmd creates the view command.
func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Mark a channel as read up to a time",
		Args:  cobra.NoArgs,
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

			ts := time.Now().UnixMilli()
			if at, _ := cmd.Flags().GetString("at"); at != "" {
				ts, err = core.ParseTimeExpression(at, time.Now(), postResolver(ctx))
				if err != nil {
					return writeCommandError(cmd, err)
				}
			}

			if err := db.SetLastViewedAt(ctx.DB, channelID, ts); err != nil {
				return writeCommandError(cmd, err)
			}
			view, err := db.GetChannelView(ctx.DB, channelID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(view)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%s read up to %s\n", channelID, formatTimestamp(view.LastViewedAt, ctx.Location))
			return nil
		},
	}

	cmd.Flags().String("at", "", "read position (time expression, default now)")

	return cmd
}
