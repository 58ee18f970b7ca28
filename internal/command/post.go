package command

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	"github.com/adamavenir/scrollback/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <message>",
		Short: "Add a post to a channel",
		Args:  cobra.MinimumNArgs(1),
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
			userID := ctx.ResolveUser(cmd)
			if userID == "" {
				return writeCommandError(cmd, fmt.Errorf("no user: pass --as or set 'user' in config.yaml"))
			}

			kind, _ := cmd.Flags().GetString("type")
			postType, err := parsePostType(kind)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			var createAt int64
			if at, _ := cmd.Flags().GetString("at"); at != "" {
				createAt, err = core.ParseTimeExpression(at, time.Now(), postResolver(ctx))
				if err != nil {
					return writeCommandError(cmd, err)
				}
			}

			created, err := db.PublishPost(ctx.DB, types.Post{
				ChannelID: channelID,
				UserID:    userID,
				Message:   strings.Join(args, " "),
				Type:      postType,
				CreateAt:  createAt,
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			// Posting as yourself moves your read position past the post.
			if postType == types.PostTypeDefault && userID == ctx.Config.User {
				if err := db.SetLastViewedAt(ctx.DB, channelID, created.CreateAt); err != nil {
					return writeCommandError(cmd, err)
				}
			}

			ctx.Logger.Debug("published post",
				zap.String("id", created.ID),
				zap.String("channel", channelID),
				zap.Int64("create_at", created.CreateAt))

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] Posted to #%s\n", core.ShortPostID(created.ID), channelID)
			return nil
		},
	}

	cmd.Flags().String("as", "", "post as this user")
	cmd.Flags().String("type", "", "post type: join, leave or ephemeral")
	cmd.Flags().String("at", "", "backdate the post (time expression)")

	return cmd
}

func parsePostType(kind string) (types.PostType, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return types.PostTypeDefault, nil
	case "join":
		return types.PostTypeJoin, nil
	case "leave":
		return types.PostTypeLeave, nil
	case "ephemeral":
		return types.PostTypeEphemeral, nil
	default:
		return "", fmt.Errorf("unknown post type %q", kind)
	}
}

func postResolver(ctx *CommandContext) core.PostResolver {
	return func(id string) (*types.Post, error) {
		return db.GetPost(ctx.DB, id)
	}
}
