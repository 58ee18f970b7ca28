package command

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const AppName = "scrollback"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

type loggerKey struct{}

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Scrollback - channel history windows from a local post cache",
		Long:          "Scrollback keeps a local cache of channel posts and shows the window a reader should see: around a focused post, around the first unread post, or the latest posts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			cmd.SetContext(context.WithValue(parent, loggerKey{}, logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = loggerFrom(cmd).Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("in", "", "channel to operate on")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	cmd.AddCommand(
		NewInitCmd(),
		NewPostCmd(),
		NewRmCmd(),
		NewLoadCmd(),
		NewViewCmd(),
		NewWindowCmd(),
		NewLsCmd(),
		NewExportCmd(),
		NewImportCmd(),
		NewMCPCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}

func loggerFrom(cmd *cobra.Command) *zap.Logger {
	if ctx := cmd.Context(); ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}
