//go:build windows

package printing

// NewPlatformDispatcher returns the dispatcher for the running platform,
// selected once at startup. On Windows print jobs go through the shell
// "print" verb.
func NewPlatformDispatcher() Dispatcher {
	return NewShellExecute()
}
