// Package printing hides the OS-specific print submission mechanism behind the
// Dispatcher interface. The concrete mechanism (lp on Linux, lpr on macOS, the
// shell print verb on Windows) is selected exactly once at startup; the worker
// loop never branches on platform.
//
// A nil Submit error means the job reached the OS spooler. Whether the page
// ever comes out of the printer is outside this contract.
package printing
