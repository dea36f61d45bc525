// Package proc builds and checks the external processes vaultpass drives:
// the store CLI, the password generator and the editor.
//
// Commands are configured as single strings ("code --wait", "pwgen -s 32 1")
// and split shell-style, so users can pass flags without a wrapper script.
package proc

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// ErrEmptyCommand is returned when a configured command line has no words.
var ErrEmptyCommand = errors.New("empty command")

// ExitError reports a process that ran but exited unsuccessfully.
type ExitError struct {
	Tool string
	Code int
	err  *exec.ExitError
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Tool, e.err)
}

func (e *ExitError) Unwrap() error {
	return e.err
}

// Split parses a command line into words. Environment references such as
// $HOME are expanded.
func Split(line string) ([]string, error) {
	p := shellwords.NewParser()
	p.ParseEnv = true
	args, err := p.Parse(line)
	if err != nil {
		return nil, errors.Wrapf(err, "parse command %q", line)
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	return args, nil
}

// Command builds a process bound to ctx: it is killed when ctx is done.
func Command(ctx context.Context, line string, extra ...string) (*exec.Cmd, error) {
	args, err := Split(line)
	if err != nil {
		return nil, err
	}
	args = append(args, extra...)
	return exec.CommandContext(ctx, args[0], args[1:]...), nil
}

// Detached builds a process that is not tied to any context. The editor
// runs this way so that Ctrl-C reaches it instead of killing it.
func Detached(line string, extra ...string) (*exec.Cmd, error) {
	args, err := Split(line)
	if err != nil {
		return nil, err
	}
	args = append(args, extra...)
	return exec.Command(args[0], args[1:]...), nil
}

// Name is the base name of the program cmd runs, used in error messages.
func Name(cmd *exec.Cmd) string {
	if len(cmd.Args) > 0 {
		return filepath.Base(cmd.Args[0])
	}
	return filepath.Base(cmd.Path)
}

// Start starts cmd, naming the tool on failure.
func Start(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "start %s", Name(cmd))
	}
	return nil
}

// Wait waits for a started cmd and checks its exit status.
func Wait(cmd *exec.Cmd) error {
	return Check(cmd, cmd.Wait())
}

// Run starts cmd and waits for it.
func Run(cmd *exec.Cmd) error {
	if err := Start(cmd); err != nil {
		return err
	}
	return Wait(cmd)
}

// Check converts the error from running cmd into one that names the tool.
// A non-zero exit becomes an *ExitError.
func Check(cmd *exec.Cmd, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Tool: Name(cmd), Code: exitErr.ExitCode(), err: exitErr}
	}
	return errors.Wrapf(err, "run %s", Name(cmd))
}
