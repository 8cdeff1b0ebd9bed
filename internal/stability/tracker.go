package stability

import (
	"os"
	"sort"
	"time"
)

// ReadyFile is an immutable snapshot of a candidate that passed the stability
// gate and may be handed to dispatch.
type ReadyFile struct {
	Path string
	Size int64
}

// candidate holds the last observation of one filesystem entry plus the number
// of consecutive polls that confirmed it unchanged.
type candidate struct {
	size    int64
	modTime time.Time
	stable  int
}

// Probe reports whether a path can currently be opened for reading. The
// default probe guards against entries still locked by the writing process.
type Probe func(path string) bool

// OpenProbe is the default readiness probe: an os.Open that succeeds.
func OpenProbe(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// Tracker follows candidate files across poll cycles for a single hot folder.
// It is not safe for concurrent use; each folder worker owns exactly one.
type Tracker struct {
	entries map[string]*candidate
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*candidate)}
}

// Observe records one poll-cycle sample for path. Returns true when this is the
// first time the path has been seen.
func (t *Tracker) Observe(path string, size int64, modTime time.Time) bool {
	entry, ok := t.entries[path]
	if !ok {
		t.entries[path] = &candidate{size: size, modTime: modTime}
		return true
	}
	if entry.size == size && entry.modTime.Equal(modTime) {
		entry.stable++
	} else {
		entry.size = size
		entry.modTime = modTime
		entry.stable = 0
	}
	return false
}

// Forget drops a candidate, either because it vanished from the watch folder
// or because it has been dispatched and relocated.
func (t *Tracker) Forget(path string) {
	delete(t.entries, path)
}

// Tracked returns the number of candidates currently under observation.
func (t *Tracker) Tracked() int {
	return len(t.entries)
}

// Paths returns the tracked candidate paths in no particular order.
func (t *Tracker) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for path := range t.entries {
		paths = append(paths, path)
	}
	return paths
}

// Ready returns snapshots of every candidate whose size and modification time
// were unchanged across two consecutive polls and that passes the probe.
// Candidates failing the probe stay tracked and are rechecked next cycle.
// The result order is unspecified; ordering is the pending queue's job.
func (t *Tracker) Ready(probe Probe) []ReadyFile {
	if probe == nil {
		probe = OpenProbe
	}
	var ready []ReadyFile
	for path, entry := range t.entries {
		if entry.stable < 1 {
			continue
		}
		if !probe(path) {
			continue
		}
		ready = append(ready, ReadyFile{Path: path, Size: entry.size})
	}
	// Deterministic iteration helps tests; callers still re-sort by filename.
	sort.Slice(ready, func(i, j int) bool { return ready[i].Path < ready[j].Path })
	return ready
}
