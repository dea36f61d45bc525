/*
Copyright © 2025 Logicos Software

edit.go implements the 'edit' command.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// editCmd represents the 'edit' command.
var editCmd = &cobra.Command{
	Use:   "edit <secret>",
	Short: "Edit a secret in $EDITOR",
	Long: `Edit a secret in $EDITOR (default vi).

The secret is copied into a private scratch file under /dev/shm (see
--scratch-dir), the editor is started on it, and the file is written back
when the editor exits successfully. The scratch file is removed afterwards,
also when anything fails. If the editor exits with an error the secret is
left unchanged.`,
	Example: `  vaultpass edit mail
  EDITOR='code --wait' vaultpass edit mail`,
	Args: secretArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runner.Edit(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
