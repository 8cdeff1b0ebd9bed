// Package logging builds the shared slog logger and defines the attribute
// vocabulary used by every structured event the daemon emits.
package logging
