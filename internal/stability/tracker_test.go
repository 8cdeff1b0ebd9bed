package stability

import (
	"testing"
	"time"
)

func alwaysOpen(string) bool { return true }

func neverOpen(string) bool { return false }

func TestReadyRequiresTwoIdenticalSamples(t *testing.T) {
	tr := NewTracker()
	now := time.Now()

	first := tr.Observe("/hot/a.pdf", 100, now)
	if !first {
		t.Fatal("expected first observation to report new candidate")
	}
	if got := tr.Ready(alwaysOpen); len(got) != 0 {
		t.Fatalf("single sample must not be ready, got %v", got)
	}

	tr.Observe("/hot/a.pdf", 100, now)
	got := tr.Ready(alwaysOpen)
	if len(got) != 1 || got[0].Path != "/hot/a.pdf" || got[0].Size != 100 {
		t.Fatalf("expected ready after second identical sample, got %v", got)
	}
}

func TestGrowingFileNeverReady(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	tr.Observe("/hot/grow.pdf", 100, base)
	tr.Observe("/hot/grow.pdf", 200, base.Add(time.Second))
	if got := tr.Ready(alwaysOpen); len(got) != 0 {
		t.Fatalf("growing file must not be ready, got %v", got)
	}

	// Size change resets the confirmation count; one more matching sample is
	// required before readiness.
	tr.Observe("/hot/grow.pdf", 200, base.Add(time.Second))
	if got := tr.Ready(alwaysOpen); len(got) != 1 {
		t.Fatalf("expected ready after post-reset confirmation, got %v", got)
	}
}

func TestMtimeChangeResetsStability(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	tr.Observe("/hot/touch.pdf", 100, base)
	tr.Observe("/hot/touch.pdf", 100, base.Add(time.Second))
	if got := tr.Ready(alwaysOpen); len(got) != 0 {
		t.Fatalf("mtime change must reset stability, got %v", got)
	}
}

func TestProbeFailureKeepsCandidateTracked(t *testing.T) {
	tr := NewTracker()
	now := time.Now()

	tr.Observe("/hot/locked.pdf", 50, now)
	tr.Observe("/hot/locked.pdf", 50, now)
	if got := tr.Ready(neverOpen); len(got) != 0 {
		t.Fatalf("unopenable file must not be ready, got %v", got)
	}
	if tr.Tracked() != 1 {
		t.Fatalf("candidate should remain tracked, have %d", tr.Tracked())
	}
	if got := tr.Ready(alwaysOpen); len(got) != 1 {
		t.Fatalf("candidate should become ready once openable, got %v", got)
	}
}

func TestZeroByteFileFollowsSameRule(t *testing.T) {
	tr := NewTracker()
	now := time.Now()

	tr.Observe("/hot/empty.pdf", 0, now)
	if got := tr.Ready(alwaysOpen); len(got) != 0 {
		t.Fatal("zero-byte file needs two samples like any other")
	}
	tr.Observe("/hot/empty.pdf", 0, now)
	got := tr.Ready(alwaysOpen)
	if len(got) != 1 || got[0].Size != 0 {
		t.Fatalf("stable zero-byte file should be ready, got %v", got)
	}
}

func TestForgetDropsCandidate(t *testing.T) {
	tr := NewTracker()
	now := time.Now()

	tr.Observe("/hot/gone.pdf", 10, now)
	tr.Observe("/hot/gone.pdf", 10, now)
	tr.Forget("/hot/gone.pdf")
	if tr.Tracked() != 0 {
		t.Fatalf("expected empty tracker, have %d", tr.Tracked())
	}
	if got := tr.Ready(alwaysOpen); len(got) != 0 {
		t.Fatalf("forgotten candidate must not be ready, got %v", got)
	}

	// Re-observed after forgetting: starts over as a fresh candidate.
	if !tr.Observe("/hot/gone.pdf", 10, now) {
		t.Fatal("re-observed path should count as new")
	}
}

func TestOpenProbeAgainstRealFiles(t *testing.T) {
	dir := t.TempDir()
	if OpenProbe(dir + "/missing") {
		t.Fatal("probe should fail for missing file")
	}
}
