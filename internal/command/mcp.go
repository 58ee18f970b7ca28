package command

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/adamavenir/scrollback/internal/mcp"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp [project-path]",
		Short: "Serve channel windows to MCP clients over stdio",
		Long: `Serve channel windows to MCP clients over stdio.

Tools: scrollback_window, scrollback_load, scrollback_view.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := ""
			if len(args) == 1 {
				projectPath = args[0]
			}

			server, err := mcp.NewServer(projectPath, cmd.Root().Version, loggerFrom(cmd))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer server.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}
	return cmd
}
