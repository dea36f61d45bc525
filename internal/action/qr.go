package action

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"vaultpass/internal/qr"
)

// QR prints the secret as a QR code. The payload is held in memory only as
// long as it takes to encode it.
func (r *Runner) QR(ctx context.Context, name string) error {
	var payload bytes.Buffer
	if err := r.Store.Read(ctx, name, &payload); err != nil {
		return fail(StepStore, err, "read secret %q", name)
	}
	rendered, err := qr.Render(payload.Bytes())
	payload.Reset()
	if err != nil {
		return fail(StepRender, err, "render secret %q", name)
	}

	if width := qr.Width(rendered); r.Columns > 0 && width > r.Columns {
		r.log().Warn("terminal is narrower than the QR code; it will wrap and may not scan",
			zap.Int("columns", r.Columns), zap.Int("needed", width))
	}
	_, err = fmt.Fprintln(r.stdout(), rendered)
	return fail(StepOutput, err, "print QR code")
}
