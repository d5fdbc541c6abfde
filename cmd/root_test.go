package cmd_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/wwi21seb-projekt/alpha-services/cmd"
	"github.com/wwi21seb-projekt/alpha-services/internal/auth"
	"github.com/wwi21seb-projekt/alpha-services/internal/testutils"
	"github.com/wwi21seb-projekt/alpha-services/internal/variables"
)

const variablesContent = `# test accounts
username1: alice
password1: pw1
username2: bob
password2: pw2
`

var tokens = map[string]string{"alice": "tok-alice", "bob": "tok-bob"}

func newRootCmd(t *testing.T) *cobra.Command {
	command := &cobra.Command{
		Use:               "jwt-refresher",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: cmd.RootCmdPersistentPreRunE,
		RunE:              cmd.RootCmdRunE,
	}

	// Create a new resty client and inject it into the command context
	client := resty.New()
	ctx := context.WithValue(context.Background(), cmd.RestyClientKey, client)
	command.SetContext(ctx)

	// Enable http mocking on the resty client
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	cmd.SetupRootCmdFlags(command)
	return command
}

func TestRootCmd(t *testing.T) {
	tt := []struct {
		name      string
		passwords map[string]string
		err       bool
		out       string
		jwt1      interface{}
		jwt2      interface{}
		calls     int
	}{
		{
			name:      "both accounts",
			passwords: map[string]string{"alice": "pw1", "bob": "pw2"},
			out:       cmd.SuccessMessage,
			jwt1:      "tok-alice",
			jwt2:      "tok-bob",
			calls:     2,
		},
		{
			name:      "first account rejected",
			passwords: map[string]string{"alice": "other", "bob": "pw2"},
			err:       true,
			calls:     1,
		},
		{
			name:      "second account rejected",
			passwords: map[string]string{"alice": "pw1"},
			err:       true,
			jwt1:      "tok-alice",
			calls:     2,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			path := testutils.SetupVariablesFile(t, variablesContent)
			command := newRootCmd(t)
			httpmock.RegisterResponder(http.MethodPost, testutils.LoginUrl, testutils.LoginResponder(tc.passwords, tokens))

			out, err := testutils.Execute(t, command, "--url", testutils.LoginUrl, "--variables", path)
			if tc.err {
				var authErr *auth.AuthenticationError
				require.ErrorAs(t, err, &authErr)
				require.Equal(t, "Error: "+err.Error(), out)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.out, out)
			}

			values := testutils.ReadVariables(t, path)
			require.Equal(t, tc.jwt1, values["jwt1"])
			require.Equal(t, tc.jwt2, values["jwt2"])
			require.Equal(t, "alice", values["username1"])
			require.Equal(t, tc.calls, httpmock.GetTotalCallCount())
		})
	}
}

func TestRootCmd_InvalidArgs(t *testing.T) {
	path := testutils.SetupVariablesFile(t, variablesContent)

	tt := []struct {
		name string
		args []string
		err  string
	}{
		{name: "invalid url", args: []string{"--url", "not a url", "--variables", path}, err: "could not parse login URL"},
		{name: "empty url", args: []string{"--url", "", "--variables", path}, err: "login URL is required"},
		{name: "empty variables path", args: []string{"--url", testutils.LoginUrl, "--variables", ""}, err: "variables file path is required"},
		{name: "no accounts", args: []string{"--url", testutils.LoginUrl, "--variables", path, "--accounts", "0"}, err: "at least one account is required"},
		{name: "invalid log level", args: []string{"--logLevel", "trace"}, err: "invalid log level: trace. Valid log levels are: debug|error|info|warn"},
		{name: "positional argument", args: []string{"extra"}, err: `unknown command "extra"`},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			command := newRootCmd(t)

			_, err := testutils.Execute(t, command, tc.args...)
			require.ErrorContains(t, err, tc.err)
			require.Zero(t, httpmock.GetTotalCallCount())
		})
	}
}

func TestRootCmd_MissingVariablesFile(t *testing.T) {
	command := newRootCmd(t)
	path := filepath.Join(t.TempDir(), "variables.yaml")

	_, err := testutils.Execute(t, command, "--url", testutils.LoginUrl, "--variables", path)

	var readErr *variables.ConfigReadError
	require.ErrorAs(t, err, &readErr)
	require.Zero(t, httpmock.GetTotalCallCount())

	// The file is never created
	require.NoFileExists(t, path)
}

func TestRootCmd_MissingFields(t *testing.T) {
	path := testutils.SetupVariablesFile(t, "username1: alice\npassword1: pw1\n")
	command := newRootCmd(t)

	_, err := testutils.Execute(t, command, "--url", testutils.LoginUrl, "--variables", path)

	var missing *variables.MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, []string{"username2", "password2"}, missing.Keys)
}

func TestRootCmd_Environment(t *testing.T) {
	path := testutils.SetupVariablesFile(t, variablesContent)
	t.Setenv("REFRESHER_URL", testutils.LoginUrl)
	t.Setenv("REFRESHER_VARIABLES", path)

	command := newRootCmd(t)
	httpmock.RegisterResponder(http.MethodPost, testutils.LoginUrl,
		testutils.LoginResponder(map[string]string{"alice": "pw1", "bob": "pw2"}, tokens))

	out, err := testutils.Execute(t, command)
	require.NoError(t, err)
	require.Equal(t, cmd.SuccessMessage, out)

	values := testutils.ReadVariables(t, path)
	require.Equal(t, "tok-alice", values["jwt1"])
	require.Equal(t, "tok-bob", values["jwt2"])
}

func TestRootCmd_FileModeKept(t *testing.T) {
	path := testutils.SetupVariablesFile(t, variablesContent)
	require.NoError(t, os.Chmod(path, 0600))

	command := newRootCmd(t)
	httpmock.RegisterResponder(http.MethodPost, testutils.LoginUrl,
		testutils.LoginResponder(map[string]string{"alice": "pw1", "bob": "pw2"}, tokens))

	_, err := testutils.Execute(t, command, "--url", testutils.LoginUrl, "--variables", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestVersionCmd(t *testing.T) {
	command := &cobra.Command{Use: "version", Run: cmd.VersionCmdRun}

	out, err := testutils.Execute(t, command)
	require.NoError(t, err)
	require.Equal(t, cmd.Version, out)
}
