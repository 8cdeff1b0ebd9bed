// Package daemon supervises the folder workers and enforces single-instance
// execution with a lock file. Each configured folder gets its own goroutine;
// a folder that fails to start or dies is recorded without affecting the rest.
package daemon
