//go:build linux

package printing

// NewPlatformDispatcher returns the dispatcher for the running platform,
// selected once at startup. On Linux print jobs go through the CUPS lp
// command.
func NewPlatformDispatcher() Dispatcher {
	return NewLP()
}
