package command

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/scrollback/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.jsonl>",
		Short: "Append a channel's posts to a JSONL archive",
		Args:  cobra.ExactArgs(1),
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

			count, err := db.ExportPosts(ctx.DB, channelID, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			ctx.Logger.Debug("exported posts", zap.String("channel", channelID), zap.Int("count", count))

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"channel_id": channelID, "exported": count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d posts from #%s to %s\n", count, channelID, args[0])
			return nil
		},
	}
	return cmd
}

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Add posts from a JSONL archive to the post log",
		Long: `Add posts from a JSONL archive to the post log.

Imported posts are not placed into loaded windows; run load to pick them up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.DB.Close()

			result, err := db.ImportPosts(ctx.DB, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if result.Skipped > 0 {
				ctx.Logger.Warn("skipped unreadable archive lines", zap.String("file", args[0]), zap.Int("skipped", result.Skipped))
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d posts (%d already present, %d skipped)\n", result.Imported, result.Duplicates, result.Skipped)
			return nil
		},
	}
	return cmd
}
