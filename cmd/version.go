/*
Copyright © 2025 Logicos Software

version.go implements the 'version' command.

This command displays version information for vaultpass, including:
  - Semantic version number
  - Git commit hash
  - Build timestamp
  - Go compiler version

Version information is embedded at build time via ldflags:

	go build -ldflags "-X vaultpass/cmd.Version=1.0.0 \
	                   -X vaultpass/cmd.GitCommit=$(git rev-parse HEAD) \
	                   -X vaultpass/cmd.BuildTime=$(date -Iseconds) \
	                   -X vaultpass/cmd.GoVersion=$(go version)"
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the 'version' command.
// It does not need a configuration, so it skips the root's setup.
var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version information",
	Long:              `Print the version information for vaultpass.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "vaultpass - password front end for HashiCorp Vault")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		fmt.Fprintf(out, "Built:      %s\n", BuildTime)
		fmt.Fprintf(out, "Go Version: %s\n", GoVersion)
	},
}

// init registers the 'version' command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
