package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is the application version. It can be set during build time using:
	// go build -ldflags "-X github.com/wwi21seb-projekt/alpha-services/cmd.Version=x.y.z"
	Version = "dev"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run:   VersionCmdRun,
}

func VersionCmdRun(cmd *cobra.Command, args []string) {
	fmt.Fprintln(cmd.OutOrStdout(), Version)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
