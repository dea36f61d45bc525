/*
Copyright © 2025 Logicos Software

errors.go implements structured error types for better UX.

This module provides:
  - Categorized error types (Store, Editor, Generator, Scratch, Render, Input, Config)
  - User-friendly error messages with troubleshooting hints
  - Error wrapping with context preservation
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap/zapcore"

	"vaultpass/internal/action"
	"vaultpass/internal/config"
	"vaultpass/internal/proc"
	"vaultpass/internal/scratch"
	"vaultpass/internal/store"
)

// ErrorCategory represents the type of error for classification.
type ErrorCategory int

const (
	// ErrCategoryUnknown for unclassified errors.
	ErrCategoryUnknown ErrorCategory = iota
	// ErrCategoryStore for failures of the secret store or its client.
	ErrCategoryStore
	// ErrCategoryEditor for editor failures.
	ErrCategoryEditor
	// ErrCategoryGenerator for password generator failures.
	ErrCategoryGenerator
	// ErrCategoryScratch for scratch file errors.
	ErrCategoryScratch
	// ErrCategoryRender for QR rendering errors.
	ErrCategoryRender
	// ErrCategoryInput for command line validation errors.
	ErrCategoryInput
	// ErrCategoryConfig for configuration errors.
	ErrCategoryConfig
)

// String returns a human-readable category name.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryStore:
		return "Store"
	case ErrCategoryEditor:
		return "Editor"
	case ErrCategoryGenerator:
		return "Generator"
	case ErrCategoryScratch:
		return "Scratch"
	case ErrCategoryRender:
		return "Render"
	case ErrCategoryInput:
		return "Input"
	case ErrCategoryConfig:
		return "Config"
	default:
		return "Unknown"
	}
}

// VaultPassError is a structured error with category, message, and hints.
type VaultPassError struct {
	Category ErrorCategory
	Message  string
	Hint     string
	Cause    error
}

// Error implements the error interface.
func (e *VaultPassError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *VaultPassError) Unwrap() error {
	return e.Cause
}

// Store errors.

// ErrStoreFailed indicates the store client ran and reported a failure.
func ErrStoreFailed(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryStore,
		Message:  "secret store error",
		Hint:     "Check the secret name and that you are logged in ('vault login'). The vault output above usually says which.",
		Cause:    cause,
	}
}

// ErrSecretNotFound indicates the secret does not exist.
func ErrSecretNotFound(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryStore,
		Message:  "secret not found",
		Hint:     "Check the spelling of the secret name and the --namespace setting.",
		Cause:    cause,
	}
}

// ErrToolNotFound indicates an external program could not be started.
func ErrToolNotFound(category ErrorCategory, tool, setting string, cause error) *VaultPassError {
	return &VaultPassError{
		Category: category,
		Message:  fmt.Sprintf("%s not found", tool),
		Hint:     fmt.Sprintf("Install it or point %s at it.", setting),
		Cause:    cause,
	}
}

// Editor and generator errors.

// ErrEditorFailed indicates the editor exited unsuccessfully.
func ErrEditorFailed(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryEditor,
		Message:  "editor failed, secret not saved",
		Hint:     "The secret is only written back when the editor exits cleanly. GUI editors need a flag that waits for the file to close, e.g. EDITOR='code --wait'.",
		Cause:    cause,
	}
}

// ErrInterrupted indicates a signal stopped the command before it changed the store.
func ErrInterrupted(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryInput,
		Message:  "interrupted, secret not changed",
		Cause:    cause,
	}
}

// ErrGeneratorFailed indicates the password generator failed.
func ErrGeneratorFailed(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryGenerator,
		Message:  "password generator failed, secret not changed",
		Hint:     "Run the generator by hand to see its error. Choose another with --generator, e.g. --generator 'pwgen -s 32 1'.",
		Cause:    cause,
	}
}

// Scratch errors.

// ErrScratchUnavailable indicates the volatile directory is missing.
func ErrScratchUnavailable(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryScratch,
		Message:  "no memory-backed directory for the scratch file",
		Hint:     "Set --scratch-dir or VAULTPASS_SCRATCH_DIR to a tmpfs mount. /dev/shm does not exist on macOS.",
		Cause:    cause,
	}
}

// ErrScratchFailed indicates the scratch file could not be used.
func ErrScratchFailed(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryScratch,
		Message:  "scratch file error",
		Hint:     "Check free space and permissions of the scratch directory.",
		Cause:    cause,
	}
}

// Render errors.

// ErrRenderFailed indicates the payload could not be encoded as a QR code.
func ErrRenderFailed(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryRender,
		Message:  "cannot render QR code",
		Hint:     "QR codes hold a little over 2 KB at the error correction level used.",
		Cause:    cause,
	}
}

// Input and config errors.

// ErrMissingSecret indicates no secret name was given.
func ErrMissingSecret() *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryInput,
		Message:  "missing secret name",
		Hint:     "Usage: vaultpass <secret>. Run 'vaultpass --help' for the other commands.",
	}
}

// ErrInvalidInput indicates a malformed command line.
func ErrInvalidInput(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryInput,
		Message:  "invalid input",
		Hint:     "Run 'vaultpass --help' for usage.",
		Cause:    cause,
	}
}

// ErrInvalidConfig indicates a bad setting.
func ErrInvalidConfig(cause error) *VaultPassError {
	return &VaultPassError{
		Category: ErrCategoryConfig,
		Message:  "configuration error",
		Hint:     "Settings come from flags, VAULTPASS_* variables and ~/.config/vaultpass/config.yaml, in that order.",
		Cause:    cause,
	}
}

// ClassifyError attempts to categorize a generic error into a VaultPassError.
func ClassifyError(err error) *VaultPassError {
	if err == nil {
		return nil
	}

	// Check if it's already a VaultPassError
	var vpe *VaultPassError
	if errors.As(err, &vpe) {
		return vpe
	}

	switch {
	case errors.Is(err, config.ErrInvalid):
		return ErrInvalidConfig(err)
	case errors.Is(err, action.ErrInterrupted):
		return ErrInterrupted(err)
	case errors.Is(err, scratch.ErrNoScratchDir):
		return ErrScratchUnavailable(err)
	case errors.Is(err, store.ErrNotFound):
		return ErrSecretNotFound(err)
	case errors.Is(err, store.ErrEmptyName):
		return ErrInvalidInput(err)
	}

	notFound := errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
	var stepErr *action.StepError
	if errors.As(err, &stepErr) {
		switch stepErr.Step {
		case action.StepStore:
			if notFound {
				return ErrToolNotFound(ErrCategoryStore, "vault client", "--vault-bin", err)
			}
			return ErrStoreFailed(err)
		case action.StepEditor:
			if notFound {
				return ErrToolNotFound(ErrCategoryEditor, "editor", "EDITOR", err)
			}
			if errors.Is(err, proc.ErrEmptyCommand) {
				return ErrInvalidConfig(err)
			}
			return ErrEditorFailed(err)
		case action.StepGenerator:
			if notFound {
				return ErrToolNotFound(ErrCategoryGenerator, "password generator", "--generator", err)
			}
			if errors.Is(err, proc.ErrEmptyCommand) {
				return ErrInvalidConfig(err)
			}
			return ErrGeneratorFailed(err)
		case action.StepScratch:
			return ErrScratchFailed(err)
		case action.StepRender:
			return ErrRenderFailed(err)
		case action.StepConfirm:
			return ErrInvalidInput(err)
		}
	}

	// Return a generic wrapped error
	return &VaultPassError{
		Category: ErrCategoryUnknown,
		Message:  err.Error(),
	}
}

// printError writes the classified error to w on a single line. With
// verbose set the hint follows on a line of its own, tagged with the
// error's category.
func printError(w io.Writer, err error, verbose bool) {
	vpe := ClassifyError(err)
	if vpe == nil {
		return
	}
	label := color.New(color.FgRed, color.Bold)
	label.Fprint(w, "error:")
	fmt.Fprintln(w, "", vpe.Error())
	if verbose && vpe.Hint != "" {
		color.New(color.FgYellow).Fprintf(w, "hint (%s): %s\n", vpe.Category, vpe.Hint)
	}
}

// ExitWithClassifiedError prints a classified error and exits. Hints are
// shown at --log-level=debug.
func ExitWithClassifiedError(err error) {
	if err == nil {
		return
	}
	verbose := logger != nil && logger.Core().Enabled(zapcore.DebugLevel)
	printError(os.Stderr, err, verbose)
	os.Exit(1)
}
