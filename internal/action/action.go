// Package action implements the vaultpass commands on top of a Store and
// the external editor and generator processes.
package action

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vaultpass/internal/confirm"
	"vaultpass/internal/store"
)

// ErrInterrupted is returned when a signal arrives while an action waits
// on the operator and the action stopped before changing the store.
var ErrInterrupted = errors.New("interrupted")

// Step identifies the collaborator an action failed in.
type Step string

const (
	StepStore     Step = "store"
	StepEditor    Step = "editor"
	StepGenerator Step = "generator"
	StepScratch   Step = "scratch"
	StepRender    Step = "render"
	StepConfirm   Step = "confirm"
	StepOutput    Step = "output"
)

// StepError ties an error to the step that produced it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

func fail(step Step, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &StepError{Step: step, Err: errors.Wrapf(err, format, args...)}
}

// Runner carries the collaborators shared by all actions. The zero value of
// each optional field falls back to the process's own streams, a nop logger
// and a prompt on Stdin.
type Runner struct {
	Store store.Store

	// Editor and Generator are command lines, split shell-style.
	Editor    string
	Generator string
	// ScratchDir is the volatile directory used while editing.
	ScratchDir string

	Confirm confirm.Confirmer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Columns is the width of the terminal Stdout is attached to, 0 if
	// unknown or not a terminal.
	Columns int

	Logger *zap.Logger
}

func (r *Runner) stdin() io.Reader {
	if r.Stdin == nil {
		return os.Stdin
	}
	return r.Stdin
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func (r *Runner) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) confirmer() confirm.Confirmer {
	if r.Confirm == nil {
		return confirm.NewPrompt(r.stdin(), r.stderr())
	}
	return r.Confirm
}

// Read streams the secret's payload to Stdout, byte for byte.
func (r *Runner) Read(ctx context.Context, name string) error {
	r.log().Debug("read", zap.String("secret", name))
	return fail(StepStore, r.Store.Read(ctx, name, r.stdout()), "read secret %q", name)
}
