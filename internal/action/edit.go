package action

import (
	"context"

	"go.uber.org/zap"

	"vaultpass/internal/proc"
	"vaultpass/internal/scratch"
)

// Edit stages the secret in a scratch file, opens it in the editor and
// writes the file back once the editor exits cleanly. A failing step stops
// the rest; the scratch file is removed on every path.
//
// The editor's exit status alone decides whether the edit is kept. Once it
// exits cleanly the write back runs even if ctx was cancelled meanwhile,
// since editors may take Ctrl-C as an ordinary key.
func (r *Runner) Edit(ctx context.Context, name string) (err error) {
	file, err := scratch.New(r.ScratchDir)
	if err != nil {
		return fail(StepScratch, err, "stage secret %q", name)
	}
	defer func() {
		if rmErr := file.Remove(); rmErr != nil && err == nil {
			err = fail(StepScratch, rmErr, "clean up after editing %q", name)
		}
	}()
	log := r.log().With(zap.String("secret", name))

	log.Debug("edit: fetching")
	if err := r.fetch(ctx, name, file); err != nil {
		return err
	}

	log.Debug("edit: running editor", zap.String("editor", r.Editor))
	if err := r.runEditor(file.Path()); err != nil {
		return fail(StepEditor, err, "edit secret %q", name)
	}

	log.Debug("edit: writing back")
	return r.writeBack(context.WithoutCancel(ctx), name, file)
}

func (r *Runner) fetch(ctx context.Context, name string, file *scratch.File) error {
	w, err := file.Create()
	if err != nil {
		return fail(StepScratch, err, "stage secret %q", name)
	}
	readErr := r.Store.Read(ctx, name, w)
	closeErr := w.Close()
	if readErr != nil {
		return fail(StepStore, readErr, "read secret %q", name)
	}
	return fail(StepScratch, closeErr, "stage secret %q", name)
}

// runEditor runs the editor attached to the terminal. It is not bound to
// the context: editors handle Ctrl-C themselves.
func (r *Runner) runEditor(path string) error {
	cmd, err := proc.Detached(r.Editor, path)
	if err != nil {
		return err
	}
	cmd.Stdin = r.stdin()
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	return proc.Run(cmd)
}

func (r *Runner) writeBack(ctx context.Context, name string, file *scratch.File) error {
	f, err := file.Open()
	if err != nil {
		return fail(StepScratch, err, "reopen edited secret %q", name)
	}
	defer f.Close()
	return fail(StepStore, r.Store.Write(ctx, name, f), "write secret %q", name)
}
