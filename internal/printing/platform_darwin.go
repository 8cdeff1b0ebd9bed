//go:build darwin

package printing

// NewPlatformDispatcher returns the dispatcher for the running platform,
// selected once at startup. On macOS print jobs go through lpr.
func NewPlatformDispatcher() Dispatcher {
	return NewLPR()
}
