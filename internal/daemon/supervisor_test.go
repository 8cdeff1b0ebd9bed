package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hotfolder/internal/config"
	"hotfolder/internal/logging"
)

type countingDispatcher struct {
	mu    sync.Mutex
	calls []string
}

func (d *countingDispatcher) Submit(_ context.Context, path, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, filepath.Base(path))
	return nil
}

func (d *countingDispatcher) Name() string { return "counting" }

func testConfig(t *testing.T, folders ...config.HotFolder) *config.Config {
	t.Helper()
	return &config.Config{
		Workflow: config.Workflow{PollInterval: 1, DispatchTimeout: 5},
		Logging:  config.Logging{Level: "info", Format: "json", Dir: t.TempDir()},
		Folders:  folders,
	}
}

func makeFolder(t *testing.T, name string) config.HotFolder {
	t.Helper()
	base := t.TempDir()
	folder := config.HotFolder{
		Name:          name,
		WatchPath:     filepath.Join(base, "in"),
		Printer:       "test-printer",
		SuccessFolder: filepath.Join(base, "printed"),
		ErrorFolder:   filepath.Join(base, "failed"),
	}
	if err := os.MkdirAll(folder.WatchPath, 0o755); err != nil {
		t.Fatal(err)
	}
	return folder
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return check()
}

func TestStartRefusesSecondInstance(t *testing.T) {
	cfg := testConfig(t, makeFolder(t, "only"))
	dispatcher := &countingDispatcher{}

	first, err := New(cfg, dispatcher, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := New(cfg, dispatcher, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be refused")
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed after first instance stopped: %v", err)
	}
	second.Stop()
}

func TestBrokenFolderDoesNotStopOthers(t *testing.T) {
	good := makeFolder(t, "good")
	broken := config.HotFolder{
		Name:          "broken",
		WatchPath:     filepath.Join(t.TempDir(), "does-not-exist"),
		Printer:       "p",
		SuccessFolder: filepath.Join(t.TempDir(), "printed"),
		ErrorFolder:   filepath.Join(t.TempDir(), "failed"),
	}
	cfg := testConfig(t, broken, good)
	dispatcher := &countingDispatcher{}

	sup, err := New(cfg, dispatcher, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sup.Stop()

	status := sup.Status()
	var brokenSeen bool
	for _, ws := range status.Workers {
		if ws.Folder == "broken" {
			brokenSeen = true
			if ws.Err == nil {
				t.Fatal("expected fault recorded for broken folder")
			}
		}
	}
	if !brokenSeen {
		t.Fatal("broken folder missing from status")
	}

	if err := os.WriteFile(filepath.Join(good.WatchPath, "a.pdf"), []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	relocated := func() bool {
		_, err := os.Stat(filepath.Join(good.SuccessFolder, "a.pdf"))
		return err == nil
	}
	if !waitFor(t, 10*time.Second, relocated) {
		t.Fatal("healthy folder never processed its file")
	}
}

func TestStartFailsWhenNoFolderUsable(t *testing.T) {
	broken := config.HotFolder{
		Name:          "broken",
		WatchPath:     filepath.Join(t.TempDir(), "missing"),
		SuccessFolder: filepath.Join(t.TempDir(), "printed"),
		ErrorFolder:   filepath.Join(t.TempDir(), "failed"),
	}
	cfg := testConfig(t, broken)

	sup, err := New(cfg, &countingDispatcher{}, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sup.Start(context.Background()); err == nil {
		sup.Stop()
		t.Fatal("expected start failure with no usable folder")
	}

	// The lock must be released so a corrected configuration can start.
	if err := os.MkdirAll(broken.WatchPath, 0o755); err != nil {
		t.Fatal(err)
	}
	retry, err := New(cfg, &countingDispatcher{}, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := retry.Start(context.Background()); err != nil {
		t.Fatalf("expected start after fixing folder: %v", err)
	}
	retry.Stop()
}

func TestStopRemovesPIDFile(t *testing.T) {
	cfg := testConfig(t, makeFolder(t, "only"))

	sup, err := New(cfg, &countingDispatcher{}, logging.NewNop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pidPath := sup.Status().PIDFilePath
	if _, err := os.Stat(pidPath); err != nil {
		t.Fatalf("pid file missing while running: %v", err)
	}

	sup.Stop()
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatal("pid file must be removed on stop")
	}
}
