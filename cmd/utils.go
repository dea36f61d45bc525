/*
Package cmd provides utility functions, types, and constants for vaultpass.

This file contains:
  - Version information variables (set via ldflags)
  - Construction of the store and action runner from the resolved config
  - Terminal helpers
*/
package cmd

import (
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"vaultpass/internal/action"
	"vaultpass/internal/config"
	"vaultpass/internal/store"
)

// Version information variables.
// These are set via ldflags during the build process:
//
//	go build -ldflags "-X vaultpass/cmd.Version=1.0.0 -X vaultpass/cmd.GitCommit=abc123 ..."
var (
	Version   = "dev"     // Semantic version (e.g., "1.0.0")
	BuildTime = "unknown" // Build timestamp
	GitCommit = "unknown" // Git commit hash
	GoVersion = "unknown" // Go compiler version
)

// NewStore returns the store backend selected by cfg. Diagnostics of the
// vault CLI go to stderr.
func NewStore(cfg *config.Config, stderr io.Writer, logger *zap.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendAPI:
		api, err := store.NewAPI(store.APIConfig{
			Address: cfg.VaultAddr,
			Token:   cfg.VaultToken,
			Layout:  cfg.Layout(),
		}, logger)
		if err != nil {
			return nil, err
		}
		return api, nil
	default:
		cli := store.NewCLI(cfg.VaultBin, cfg.Layout(), logger)
		cli.Stderr = stderr
		return cli, nil
	}
}

// NewRunner wires a Runner from cfg. in, out and errOut are the streams the
// editor and the output of each command use.
func NewRunner(cfg *config.Config, s store.Store, in io.Reader, out, errOut io.Writer, logger *zap.Logger) *action.Runner {
	return &action.Runner{
		Store:      s,
		Editor:     cfg.Editor,
		Generator:  cfg.Generator,
		ScratchDir: cfg.ScratchDir,
		Stdin:      in,
		Stdout:     out,
		Stderr:     errOut,
		Columns:    TerminalColumns(out),
		Logger:     logger,
	}
}

// TerminalColumns returns the width of the terminal w is attached to, or 0
// when w is not a terminal.
func TerminalColumns(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
