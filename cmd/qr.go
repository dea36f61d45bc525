/*
Copyright © 2025 Logicos Software

qr.go implements the 'qr' command.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// qrCmd represents the 'qr' command.
var qrCmd = &cobra.Command{
	Use:   "qr <secret>",
	Short: "Show a secret as a QR code",
	Long: `Print a secret as a QR code drawn with Unicode half blocks, for scanning
with a phone. The code is drawn light-on-dark to suit dark terminal themes.`,
	Args: secretArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runner.QR(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(qrCmd)
}
