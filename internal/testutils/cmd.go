package testutils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// Execute runs command with args and returns everything it printed, trimmed.
func Execute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	command.SetOut(buf)
	command.SetErr(buf)
	command.SetArgs(args)

	err := command.Execute()
	return strings.TrimSpace(buf.String()), err
}
