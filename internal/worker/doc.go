// Package worker runs the per-folder pipeline: poll the watch directory,
// confirm file stability, dispatch ready files to the printer in filename
// order, and relocate each by outcome. Failures are contained at the smallest
// scope: a bad file never stops a cycle and a bad cycle never stops the
// worker.
package worker
