package action

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"

	"vaultpass/internal/proc"
)

// Generate stores freshly generated output under name, asking before it
// replaces an existing secret. Declining is not an error.
//
// The generator's stdout is piped straight into the store write. Its exit
// status is checked when its output ends, before the store sees end of
// input, so a failing generator never commits a truncated payload.
func (r *Runner) Generate(ctx context.Context, name string) error {
	log := r.log().With(zap.String("secret", name))

	exists, err := r.Store.Exists(ctx, name)
	if err != nil {
		return fail(StepStore, err, "check secret %q", name)
	}
	if exists {
		ok, err := r.confirmer().Confirm(ctx, fmt.Sprintf("A password already exists for %q. Overwrite?", name))
		if err != nil && ctx.Err() != nil {
			return fail(StepConfirm, ErrInterrupted, "confirm overwrite of %q", name)
		}
		if err != nil {
			return fail(StepConfirm, err, "confirm overwrite of %q", name)
		}
		if !ok {
			log.Debug("generate: overwrite declined")
			return nil
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen, err := proc.Command(ctx, r.Generator)
	if err != nil {
		return fail(StepGenerator, err, "generate secret %q", name)
	}
	gen.Stderr = r.stderr()
	out, err := gen.StdoutPipe()
	if err != nil {
		return fail(StepGenerator, err, "generate secret %q", name)
	}
	log.Debug("generate: starting", zap.Strings("args", gen.Args))
	if err := proc.Start(gen); err != nil {
		return fail(StepGenerator, err, "generate secret %q", name)
	}

	src := &generated{r: out, cmd: gen}
	writeErr := r.Store.Write(ctx, name, src)
	if !src.done {
		// The writer stopped early; the generator may be blocked on a full pipe.
		cancel()
		src.wait()
	}

	switch {
	case src.eof && src.err != nil:
		return fail(StepGenerator, src.err, "generate secret %q", name)
	case writeErr != nil:
		// A generator killed because the writer stopped is not the cause.
		return fail(StepStore, writeErr, "write secret %q", name)
	default:
		return fail(StepGenerator, src.err, "generate secret %q", name)
	}
}

// generated reads a generator's stdout and reaps the generator when its
// output ends. A non-zero exit replaces io.EOF, so the consumer sees a
// failed read rather than a complete payload.
type generated struct {
	r   io.Reader
	cmd *exec.Cmd

	eof  bool
	done bool
	err  error
}

func (g *generated) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	if err == io.EOF {
		g.eof = true
		if werr := g.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (g *generated) wait() error {
	if !g.done {
		g.done = true
		g.err = proc.Wait(g.cmd)
	}
	return g.err
}
