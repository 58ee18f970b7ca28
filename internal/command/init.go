package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/db"
	"github.com/spf13/cobra"
)

type initResult struct {
	Initialized   bool   `json:"initialized"`
	Path          string `json:"path"`
	User          string `json:"user,omitempty"`
	WroteConfig   bool   `json:"wrote_config"`
	Reinitialized bool   `json:"reinitialized"`
	Error         string `json:"error,omitempty"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize scrollback in current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			user, _ := cmd.Flags().GetString("user")
			timezone, _ := cmd.Flags().GetString("tz")
			jsonMode, _ := cmd.Flags().GetBool("json")

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			project, err := core.InitProject("", force)
			if err != nil {
				return writeInitError(errOut, jsonMode, err)
			}

			conn, err := db.OpenDatabase(project)
			if err != nil {
				return writeInitError(errOut, jsonMode, err)
			}
			defer conn.Close()

			if err := db.InitSchema(conn); err != nil {
				return writeInitError(errOut, jsonMode, err)
			}

			wrote, err := ensureConfig(project.Dir(), strings.TrimPrefix(strings.TrimSpace(user), "@"), timezone)
			if err != nil {
				return writeInitError(errOut, jsonMode, err)
			}

			config, err := core.LoadConfig(project.Dir())
			if err != nil {
				return writeInitError(errOut, jsonMode, err)
			}

			result := initResult{
				Initialized:   true,
				Path:          project.Root,
				User:          config.User,
				WroteConfig:   wrote,
				Reinitialized: force,
			}
			if jsonMode {
				return json.NewEncoder(out).Encode(result)
			}

			fmt.Fprintf(out, "Initialized scrollback in %s\n", filepath.Join(project.Root, core.DirName))
			if config.User != "" {
				fmt.Fprintf(out, "  posting as @%s\n", config.User)
			} else {
				fmt.Fprintln(out, "  no user configured; set 'user' in config.yaml or pass --as")
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "reinitialize, discarding the existing database")
	cmd.Flags().String("user", "", "default user for posts and unread markers")
	cmd.Flags().String("tz", "", "timezone used for date separators (e.g. America/New_York)")

	return cmd
}

// ensureConfig writes a config file unless one exists. Flags given on a
// re-run update the existing file.
func ensureConfig(stateDir, user, timezone string) (bool, error) {
	path := filepath.Join(stateDir, "config.yaml")
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return false, statErr
	}
	if exists && user == "" && timezone == "" {
		return false, nil
	}

	config := core.DefaultConfig()
	if exists {
		loaded, err := core.LoadConfig(stateDir)
		if err != nil {
			return false, err
		}
		config = loaded
	}
	if user != "" {
		config.User = user
	}
	if timezone != "" {
		config.Timezone = timezone
		if _, err := config.Location(); err != nil {
			return false, err
		}
	}
	if err := core.WriteConfig(stateDir, config); err != nil {
		return false, err
	}
	return true, nil
}

func writeInitError(errOut io.Writer, jsonMode bool, err error) error {
	if jsonMode {
		payload := initResult{Initialized: false, Error: err.Error()}
		_ = json.NewEncoder(errOut).Encode(payload)
		return err
	}
	fmt.Fprintf(errOut, "Error: %s\n", err.Error())
	return err
}
