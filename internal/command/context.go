package command

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	DB        *sql.DB
	Project   core.Project
	Config    core.Config
	Location  *time.Location
	JSONMode  bool
	ChannelID string
	Logger    *zap.Logger
}

// GetContext resolves the project, database and config for a command.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")
	channelRef, _ := cmd.Flags().GetString("in")
	logger := loggerFrom(cmd)

	project, err := core.DiscoverProject("")
	if err != nil {
		return nil, err
	}
	config, err := core.LoadConfig(project.Dir())
	if err != nil {
		return nil, err
	}
	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	conn, err := db.OpenDatabase(project)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("opened project",
		zap.String("root", project.Root),
		zap.String("channel", channelRef))

	return &CommandContext{
		DB:        conn,
		Project:   project,
		Config:    config,
		Location:  loc,
		JSONMode:  jsonMode,
		ChannelID: normalizeChannel(channelRef),
		Logger:    logger,
	}, nil
}

// RequireChannel returns the --in channel or an error when it is missing.
func (c *CommandContext) RequireChannel() (string, error) {
	if c.ChannelID == "" {
		return "", fmt.Errorf("--in <channel> is required")
	}
	return c.ChannelID, nil
}

// ResolveUser picks the acting user from --as or the config.
func (c *CommandContext) ResolveUser(cmd *cobra.Command) string {
	if cmd.Flags().Lookup("as") != nil {
		if user, _ := cmd.Flags().GetString("as"); strings.TrimSpace(user) != "" {
			return strings.TrimPrefix(strings.TrimSpace(user), "@")
		}
	}
	return c.Config.User
}

func normalizeChannel(ref string) string {
	return strings.TrimPrefix(strings.TrimSpace(ref), "#")
}
