//go:build windows

package printing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	shell32          = windows.NewLazySystemDLL("shell32.dll")
	procShellExecute = shell32.NewProc("ShellExecuteW")
)

// ShellExecute error codes (return values <= 32 signal failure).
const (
	seErrFileNotFound = 2
	seErrPathNotFound = 3
	seErrAccessDenied = 5
	seErrOOM          = 8
	seErrNoAssoc      = 31
)

// ShellExecuteDispatcher submits print jobs through the Windows shell "print"
// verb, routing to a specific printer with the /d parameter.
type ShellExecuteDispatcher struct{}

// NewShellExecute returns the Windows shell dispatcher.
func NewShellExecute() *ShellExecuteDispatcher {
	return &ShellExecuteDispatcher{}
}

// Name implements Dispatcher.
func (d *ShellExecuteDispatcher) Name() string {
	return "shellexecute"
}

// Submit implements Dispatcher. ShellExecuteW only hands the file to the
// application registered for the print verb; the call itself returns once the
// handler has been launched.
func (d *ShellExecuteDispatcher) Submit(ctx context.Context, path, printer string) error {
	if path == "" {
		return errors.New("file path required")
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.New("shell print submission timed out")
		}
		return err
	}

	verb, err := windows.UTF16PtrFromString("print")
	if err != nil {
		return fmt.Errorf("encode verb: %w", err)
	}
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	dir, err := windows.UTF16PtrFromString(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}

	var params *uint16
	if printer != "" {
		params, err = windows.UTF16PtrFromString(fmt.Sprintf(`/d:"%s"`, printer))
		if err != nil {
			return fmt.Errorf("encode printer parameter: %w", err)
		}
	}

	ret, _, _ := procShellExecute.Call(
		0,
		uintptr(unsafe.Pointer(verb)),
		uintptr(unsafe.Pointer(file)),
		uintptr(unsafe.Pointer(params)),
		uintptr(unsafe.Pointer(dir)),
		uintptr(windows.SW_HIDE),
	)
	if ret > 32 {
		return nil
	}

	switch ret {
	case seErrFileNotFound, seErrPathNotFound:
		return fmt.Errorf("shell print: file not found: %s", path)
	case seErrAccessDenied:
		return fmt.Errorf("shell print: access denied: %s", path)
	case seErrOOM:
		return errors.New("shell print: out of memory")
	case seErrNoAssoc:
		return fmt.Errorf("shell print: no application registered to print %s files", filepath.Ext(path))
	default:
		return fmt.Errorf("shell print failed with code %d", ret)
	}
}

var _ Dispatcher = (*ShellExecuteDispatcher)(nil)
