// Package pending orders the files that passed the stability gate within one
// poll cycle. Drain order is ascending byte order of the base filename, which
// keeps dispatch order reproducible regardless of directory enumeration order
// or arrival jitter.
package pending

import (
	"path/filepath"
	"sort"

	"hotfolder/internal/stability"
)

// Queue accumulates one cycle's ready files. Not safe for concurrent use; each
// folder worker owns exactly one.
type Queue struct {
	files []stability.ReadyFile
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Add appends a ready file to the current cycle's batch. Files already present
// (same path) are ignored so a file is never dispatched twice in one batch.
func (q *Queue) Add(file stability.ReadyFile) {
	for _, existing := range q.files {
		if existing.Path == file.Path {
			return
		}
	}
	q.files = append(q.files, file)
}

// Len returns the number of files waiting in the current batch.
func (q *Queue) Len() int {
	return len(q.files)
}

// DrainReady empties the queue and returns the batch sorted ascending by base
// filename. Each call reflects exactly the ready set accumulated since the
// previous drain.
func (q *Queue) DrainReady() []stability.ReadyFile {
	if len(q.files) == 0 {
		return nil
	}
	batch := q.files
	q.files = nil
	sort.Slice(batch, func(i, j int) bool {
		return filepath.Base(batch[i].Path) < filepath.Base(batch[j].Path)
	})
	return batch
}
