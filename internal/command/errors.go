package command

import (
	"errors"
	"fmt"

	"github.com/adamavenir/scrollback/internal/db"
	"github.com/spf13/cobra"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	var schemaErr *db.SchemaError
	if errors.As(err, &schemaErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: the database schema is incompatible. Try: scrollback init --force")
	}

	return err
}
