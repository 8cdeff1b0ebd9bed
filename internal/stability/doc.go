// Package stability decides when a file in a hot folder has finished being
// written. A candidate is ready once its size and modification time are
// unchanged across two consecutive poll cycles and it can be opened for
// reading; a single unchanged sample is not enough because a scan can coincide
// with a pause mid-copy.
package stability
