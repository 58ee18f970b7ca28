package command

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/adamavenir/scrollback/internal/db"
	"github.com/spf13/cobra"
)

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandVersion(t *testing.T) {
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd, "--version")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output, "scrollback version test") {
		t.Fatalf("expected version output, got %q", output)
	}
}

func TestRootCommandHelp(t *testing.T) {
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, name := range []string{"window", "load", "post", "view"} {
		if !strings.Contains(output, name) {
			t.Fatalf("expected help to list %s, got %q", name, output)
		}
	}
}

func TestSchemaErrorHint(t *testing.T) {
	cmd := NewRootCmd("test")
	buf := new(bytes.Buffer)
	cmd.SetErr(buf)

	err := writeCommandError(cmd, fmt.Errorf("open project: %w", &db.SchemaError{Err: errString("table sb_chunks has no column named position")}))
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if !strings.Contains(buf.String(), "scrollback init --force") {
		t.Fatalf("expected schema hint, got %q", buf.String())
	}
}

func TestQueryErrorHasNoSchemaHint(t *testing.T) {
	cmd := NewRootCmd("test")
	buf := new(bytes.Buffer)
	cmd.SetErr(buf)

	_ = writeCommandError(cmd, errString("post post-abcd1234 not found"))
	if strings.Contains(buf.String(), "Hint:") {
		t.Fatalf("unexpected hint in %q", buf.String())
	}
}

type errString string

func (e errString) Error() string { return string(e) }
