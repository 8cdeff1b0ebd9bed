package printing

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Dispatcher submits one file to one named printer. Implementations must fold
// every failure path into the returned error; a nil error means the job was
// handed to the OS spooler (not that it physically printed).
type Dispatcher interface {
	// Submit sends path to the named printer. An empty printer means the
	// platform default printer. The context bounds the submission; a deadline
	// hit is reported as a timeout error.
	Submit(ctx context.Context, path, printer string) error
	// Name identifies the submission mechanism for logs.
	Name() string
}

// Option configures a command dispatcher.
type Option func(*CommandDispatcher)

// WithBinary overrides the default print command binary.
func WithBinary(binary string) Option {
	return func(d *CommandDispatcher) {
		if binary != "" {
			d.binary = binary
		}
	}
}

// CommandDispatcher submits print jobs through a CUPS-style command line tool.
type CommandDispatcher struct {
	binary      string
	printerFlag string
}

// NewLP returns a dispatcher wrapping the lp command (Linux/CUPS).
func NewLP(opts ...Option) *CommandDispatcher {
	d := &CommandDispatcher{binary: "lp", printerFlag: "-d"}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewLPR returns a dispatcher wrapping the lpr command (macOS).
func NewLPR(opts ...Option) *CommandDispatcher {
	d := &CommandDispatcher{binary: "lpr", printerFlag: "-P"}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements Dispatcher.
func (d *CommandDispatcher) Name() string {
	return d.binary
}

// Submit implements Dispatcher. It runs `<binary> [<flag> printer] <path>` and
// waits for the command to exit within the context deadline.
func (d *CommandDispatcher) Submit(ctx context.Context, path, printer string) error {
	if path == "" {
		return errors.New("file path required")
	}

	args := make([]string, 0, 3)
	if printer != "" {
		args = append(args, d.printerFlag, printer)
	}
	args = append(args, path)

	cmd := commandContext(ctx, d.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%s submission timed out", d.binary)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("print command %q not found", d.binary)
	}
	if detail := strings.TrimSpace(string(output)); detail != "" {
		return fmt.Errorf("%s failed: %s: %w", d.binary, detail, err)
	}
	return fmt.Errorf("%s failed: %w", d.binary, err)
}

var _ Dispatcher = (*CommandDispatcher)(nil)
