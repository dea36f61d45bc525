package store

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vaultpass/internal/proc"
)

// DefaultBin is the store CLI invoked when none is configured.
const DefaultBin = "vault"

// CLI drives the vault command line client:
//
//	vault read -field=data password-store/<name>
//	vault write password-store/<name> data=-
type CLI struct {
	// Bin is the client command line, split shell-style. Defaults to "vault".
	Bin    string
	Layout Layout

	// Stderr receives the client's diagnostics. Defaults to os.Stderr.
	Stderr io.Writer
	Logger *zap.Logger
}

// NewCLI returns a CLI store using bin (or DefaultBin when empty).
func NewCLI(bin string, layout Layout, logger *zap.Logger) *CLI {
	return &CLI{Bin: bin, Layout: layout, Logger: logger}
}

func (c *CLI) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *CLI) command(ctx context.Context, args ...string) (*exec.Cmd, error) {
	bin := c.Bin
	if strings.TrimSpace(bin) == "" {
		bin = DefaultBin
	}
	cmd, err := proc.Command(ctx, bin, args...)
	if err != nil {
		return nil, errors.Wrap(err, "store command")
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd, nil
}

func (c *CLI) readCommand(ctx context.Context, name string) (*exec.Cmd, error) {
	path, err := c.Layout.Path(name)
	if err != nil {
		return nil, err
	}
	return c.command(ctx, "read", "-field="+c.Layout.field(), path)
}

// Read copies the client's stdout into w while it runs.
func (c *CLI) Read(ctx context.Context, name string, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd, err := c.readCommand(ctx, name)
	if err != nil {
		return err
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "store stdout")
	}
	c.log().Debug("store read", zap.Strings("args", cmd.Args))
	if err := proc.Start(cmd); err != nil {
		return err
	}

	n, copyErr := io.Copy(w, out)
	if copyErr != nil {
		// Nobody drains the pipe any more; stop the client rather than
		// leaving it blocked on a full pipe.
		cancel()
	}
	if err := proc.Wait(cmd); err != nil {
		if copyErr != nil {
			return errors.Wrap(copyErr, "copy secret payload")
		}
		return err
	}
	c.log().Debug("store read done", zap.Int64("bytes", n))
	return errors.Wrap(copyErr, "copy secret payload")
}

// Exists runs the read command with its output discarded. A non-zero exit
// means the secret is absent; only a failure to run the client is an error.
func (c *CLI) Exists(ctx context.Context, name string) (bool, error) {
	cmd, err := c.readCommand(ctx, name)
	if err != nil {
		return false, err
	}
	cmd.Stdout = nil
	cmd.Stderr = nil
	c.log().Debug("store probe", zap.Strings("args", cmd.Args))

	err = proc.Run(cmd)
	var exitErr *proc.ExitError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &exitErr):
		c.log().Debug("store probe: absent", zap.Int("exit", exitErr.Code))
		return false, nil
	default:
		return false, err
	}
}

// Write feeds r into the client's stdin. The copy and the client run
// concurrently; stdin is closed once r is drained so the client sees EOF,
// and the client is killed if the copy fails. Cancelling ctx kills the
// client but does not interrupt a read from r that is blocked; callers that
// pass a process pipe as r own that process.
func (c *CLI) Write(ctx context.Context, name string, r io.Reader) error {
	path, err := c.Layout.Path(name)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	cmd, err := c.command(gctx, "write", path, c.Layout.field()+"=-")
	if err != nil {
		return err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "store stdin")
	}
	c.log().Debug("store write", zap.Strings("args", cmd.Args))
	if err := proc.Start(cmd); err != nil {
		return err
	}

	var copyErr, waitErr error
	g.Go(func() error {
		_, err := io.Copy(stdin, r)
		if err != nil && !childGone(err) {
			// EOF on stdin would make the client commit a truncated payload.
			_ = cmd.Process.Kill()
		}
		stdin.Close()
		if err != nil {
			copyErr = errors.Wrap(err, "copy payload to store")
			return copyErr
		}
		return nil
	})
	g.Go(func() error {
		waitErr = proc.Wait(cmd)
		return waitErr
	})
	_ = g.Wait()

	// A client that exits early breaks the pipe; its exit status is then
	// the more useful report. Any other copy failure is the root cause of
	// the client being killed.
	if copyErr != nil && !childGone(copyErr) {
		return copyErr
	}
	if waitErr != nil {
		return waitErr
	}
	return copyErr
}

func childGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}
