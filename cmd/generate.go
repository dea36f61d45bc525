/*
Copyright © 2025 Logicos Software

generate.go implements the 'generate' command.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"vaultpass/internal/confirm"
)

var generateYes bool

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate <secret>",
	Short: "Store a newly generated password",
	Long: `Run the password generator (genpass by default, see --generator) and
store its output as the secret. The output is piped straight into vault and
never printed.

If the secret already exists you are asked before it is overwritten;
answering no leaves it untouched.`,
	Example: `  vaultpass generate mail
  vaultpass generate -y --generator 'pwgen -s 32 1' mail`,
	Args: secretArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateYes {
			runner.Confirm = confirm.Always(true)
		} else {
			in := cmd.InOrStdin()
			if f, ok := in.(*os.File); ok && !confirm.Interactive(f) {
				logger.Warn("stdin is not a terminal; an overwrite prompt will be answered from it (use --yes to skip it)")
			}
			runner.Confirm = confirm.NewPrompt(in, cmd.ErrOrStderr())
		}
		return runner.Generate(cmd.Context(), args[0])
	},
}

func init() {
	generateCmd.Flags().BoolVarP(&generateYes, "yes", "y", false, "overwrite an existing secret without asking")
	rootCmd.AddCommand(generateCmd)
}
