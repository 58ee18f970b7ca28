package command

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	"github.com/spf13/cobra"
)

// NewRmCmd creates the rm command.
func NewRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <post-id>",
		Short: "Delete a post and drop it from cached windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			removed, err := db.RemovePost(ctx.DB, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if !removed {
				return writeCommandError(cmd, fmt.Errorf("post not found: %s", args[0]))
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"id": args[0], "deleted": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted [%s]\n", core.ShortPostID(args[0]))
			return nil
		},
	}
	return cmd
}
