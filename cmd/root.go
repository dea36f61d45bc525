/*
Copyright © 2025 Logicos Software

Package cmd implements all CLI commands for vaultpass using the Cobra library.

This package provides:
  - vaultpass <secret>: Print a secret
  - edit: Edit a secret in $EDITOR via a memory-backed scratch file
  - generate: Store the output of a password generator
  - qr: Show a secret as a QR code in the terminal
  - version: Display version information

Storage, authentication and encryption are left to HashiCorp Vault, which
is driven through its command line client or its HTTP API.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultpass/internal/action"
	"vaultpass/internal/config"
	"vaultpass/internal/logging"
)

// Set up by setup before any command runs.
var (
	logger *zap.Logger
	runner *action.Runner
)

// rootCmd represents the base command. Given a secret name it prints the
// secret; it also serves as the parent for all subcommands and defines the
// global flags they inherit.
var rootCmd = &cobra.Command{
	Use:   "vaultpass <secret>",
	Short: "Read, edit, generate and show passwords kept in HashiCorp Vault",
	Long: `vaultpass is a small front end to HashiCorp Vault for password-style
secrets stored under password-store/<secret>.

Secrets never touch a disk: editing goes through a scratch file in
/dev/shm that is removed afterwards, and new passwords are piped straight
from the generator into vault.

Quick usage:
  vaultpass mail             # Print the secret "mail"
  vaultpass edit mail        # Edit it in $EDITOR (default vi)
  vaultpass generate mail    # Replace it with the output of genpass
  vaultpass qr mail          # Show it as a QR code`,
	Args:              rootArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return ErrMissingSecret()
		}
		return runner.Read(cmd.Context(), args[0])
	},
}

// Execute runs the command line. The first SIGINT or SIGTERM cancels the
// command's context instead of killing the process, so scratch files get
// cleaned up; a second one gets the default behaviour. If an error occurs,
// it is printed and the program exits with status code 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	ExitWithClassifiedError(err)
}

// setup resolves the configuration and builds the logger, store and runner
// shared by the commands.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.OptionsFromFlags(cmd.Flags()))
	if err != nil {
		return ErrInvalidConfig(err)
	}
	logger, err = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return ErrInvalidConfig(err)
	}
	s, err := NewStore(cfg, cmd.ErrOrStderr(), logger)
	if err != nil {
		return ErrInvalidConfig(err)
	}
	runner = NewRunner(cfg, s, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	logger.Debug("configured",
		zap.String("config", cfg.File),
		zap.String("backend", cfg.Backend),
		zap.String("namespace", cfg.Namespace))
	return nil
}

func rootArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return ErrInvalidInput(err)
	}
	return nil
}

// secretArg validates the single <secret> argument of a subcommand.
func secretArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return ErrMissingSecret()
	}
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return ErrInvalidInput(err)
	}
	return nil
}

// init registers global flags that are available to all subcommands.
func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return ErrInvalidInput(err)
	})
}
