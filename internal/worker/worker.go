package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotfolder/internal/config"
	"hotfolder/internal/history"
	"hotfolder/internal/logging"
	"hotfolder/internal/pending"
	"hotfolder/internal/printing"
	"hotfolder/internal/relocate"
	"hotfolder/internal/stability"
)

// State names the phase a worker is currently in.
type State string

const (
	StateIdle        State = "idle"
	StateScanning    State = "scanning"
	StateStabilizing State = "stabilizing"
	StateDispatching State = "dispatching"
	StateRelocating  State = "relocating"
	StateStopping    State = "stopping"
	StateStopped     State = "stopped"
)

// ErrWatchPathGone reports that the watched directory disappeared while the
// worker was running. It is unrecoverable for the affected worker.
var ErrWatchPathGone = errors.New("watch path no longer exists")

// Recorder receives one record per dispatch attempt. May be nil.
type Recorder interface {
	Append(ctx context.Context, rec history.Record) error
}

// Options tunes a worker beyond its folder configuration.
type Options struct {
	PollInterval    time.Duration
	DispatchTimeout time.Duration
	Probe           stability.Probe
	Recorder        Recorder
}

// Worker owns the full lifecycle of one hot folder: poll, stabilize, dispatch,
// relocate. Exactly one goroutine runs a worker; no state is shared between
// workers.
type Worker struct {
	folder     config.HotFolder
	dispatcher printing.Dispatcher
	logger     *slog.Logger

	pollInterval    time.Duration
	dispatchTimeout time.Duration
	probe           stability.Probe
	recorder        Recorder

	tracker *stability.Tracker
	queue   *pending.Queue

	// Files whose relocation failed stay physically present; they are held
	// here so they are not dispatched again within this process lifetime.
	quarantined map[string]struct{}

	mu    sync.Mutex
	state State
}

// New validates the folder and constructs its worker. The watch path must be
// an existing directory and the success/error folders must be creatable; a
// failure here is fatal for this folder only.
func New(folder config.HotFolder, dispatcher printing.Dispatcher, logger *slog.Logger, opts Options) (*Worker, error) {
	info, err := os.Stat(folder.WatchPath)
	if err != nil {
		return nil, fmt.Errorf("watch path %q: %w", folder.WatchPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %q is not a directory", folder.WatchPath)
	}
	for _, dir := range []string{folder.SuccessFolder, folder.ErrorFolder} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create folder %q: %w", dir, err)
		}
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 60 * time.Second
	}
	if opts.Probe == nil {
		opts.Probe = stability.OpenProbe
	}

	return &Worker{
		folder:          folder,
		dispatcher:      dispatcher,
		logger:          logging.NewComponentLogger(logger, "worker."+folder.Name).With(logging.String(logging.FieldFolder, folder.Name)),
		pollInterval:    opts.PollInterval,
		dispatchTimeout: opts.DispatchTimeout,
		probe:           opts.Probe,
		recorder:        opts.Recorder,
		tracker:         stability.NewTracker(),
		queue:           pending.NewQueue(),
		quarantined:     make(map[string]struct{}),
		state:           StateIdle,
	}, nil
}

// Name returns the configured folder name.
func (w *Worker) Name() string {
	return w.folder.Name
}

// State reports the worker's current phase.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) setState(state State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

// Run drives the poll loop until the context is canceled or the worker hits an
// unrecoverable error. The stop signal is honored at cycle and file
// boundaries; an in-flight file always reaches a final relocated state first.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		logging.String(logging.FieldEventType, "worker_started"),
		logging.String("watch_path", w.folder.WatchPath),
		logging.String(logging.FieldPrinter, w.folder.Printer),
		logging.Duration("poll_interval", w.pollInterval),
	)
	defer func() {
		w.setState(StateStopped)
		w.logger.Info("worker stopped", logging.String(logging.FieldEventType, "worker_stopped"))
	}()

	for {
		if ctx.Err() != nil {
			w.setState(StateStopping)
			return nil
		}

		if err := w.cycle(ctx); err != nil {
			w.logger.Error("worker hit unrecoverable error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "worker_fatal"),
				logging.String(logging.FieldErrorHint, "restore the watch path and restart the daemon"),
			)
			return err
		}

		w.setState(StateIdle)
		select {
		case <-ctx.Done():
			w.setState(StateStopping)
			return nil
		case <-time.After(w.pollInterval):
		}
	}
}

// cycle performs one scan → stabilize → dispatch → relocate pass. Per-file
// failures are contained; only a vanished watch path aborts the worker.
func (w *Worker) cycle(ctx context.Context) error {
	if err := w.scan(); err != nil {
		return err
	}
	w.stabilize()
	w.drain(ctx)
	return nil
}

func (w *Worker) scan() error {
	w.setState(StateScanning)

	entries, err := os.ReadDir(w.folder.WatchPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrWatchPathGone, w.folder.WatchPath)
		}
		// Transient listing failure: keep tracked state, retry next cycle.
		w.logger.Warn("scan failed, retrying next cycle",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scan_failed"),
		)
		return nil
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.folder.WatchPath, entry.Name())
		if _, held := w.quarantined[path]; held {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			w.logger.Warn("cannot stat entry, skipping this cycle",
				logging.Error(err),
				logging.String(logging.FieldFile, entry.Name()),
				logging.String(logging.FieldEventType, "entry_stat_failed"),
			)
			continue
		}
		seen[path] = struct{}{}
		if w.tracker.Observe(path, info.Size(), info.ModTime()) {
			w.logger.Info("candidate detected",
				logging.String(logging.FieldFile, entry.Name()),
				logging.String(logging.FieldEventType, "candidate_detected"),
				logging.Int64("size", info.Size()),
			)
		}
	}

	// Anything tracked but no longer present was removed externally.
	for _, path := range w.tracker.Paths() {
		if _, ok := seen[path]; !ok {
			w.tracker.Forget(path)
			w.logger.Info("candidate removed before dispatch",
				logging.String(logging.FieldFile, filepath.Base(path)),
				logging.String(logging.FieldEventType, "candidate_vanished"),
			)
		}
	}
	return nil
}

func (w *Worker) stabilize() {
	w.setState(StateStabilizing)
	for _, ready := range w.tracker.Ready(w.probe) {
		w.logger.Info("stability confirmed",
			logging.String(logging.FieldFile, filepath.Base(ready.Path)),
			logging.String(logging.FieldEventType, "stability_confirmed"),
			logging.Int64("size", ready.Size),
		)
		w.queue.Add(ready)
	}
}

func (w *Worker) drain(ctx context.Context) {
	batch := w.queue.DrainReady()
	for i, file := range batch {
		// Stop signal between files: the remaining batch stays on disk and is
		// rediscovered later; the in-flight file is never abandoned.
		if i > 0 && ctx.Err() != nil {
			w.setState(StateStopping)
			return
		}
		w.processFile(ctx, file)
	}
}

// processFile submits one ready file and relocates it by outcome. Exactly one
// submission attempt is made; a failure is terminal for this file.
func (w *Worker) processFile(ctx context.Context, file stability.ReadyFile) {
	jobID := uuid.NewString()
	name := filepath.Base(file.Path)
	fileLogger := w.logger.With(
		logging.String(logging.FieldFile, name),
		logging.String(logging.FieldJobID, jobID),
	)

	w.setState(StateDispatching)
	fileLogger.Info("dispatching to printer",
		logging.String(logging.FieldEventType, "dispatch_attempted"),
		logging.String(logging.FieldPrinter, w.folder.Printer),
		logging.String("mechanism", w.dispatcher.Name()),
	)

	// Detached from the shutdown signal: a SIGTERM must not kill a print
	// command mid-submission. The timeout still bounds the call.
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.dispatchTimeout)
	dispatchErr := w.dispatcher.Submit(dispatchCtx, file.Path, w.folder.Printer)
	cancel()

	destination := w.folder.SuccessFolder
	if dispatchErr != nil {
		destination = w.folder.ErrorFolder
		fileLogger.Error("dispatch failed",
			logging.Error(dispatchErr),
			logging.String(logging.FieldEventType, "dispatch_failed"),
			logging.String(logging.FieldErrorHint, "check printer name and spooler state"),
		)
	} else {
		fileLogger.Info("dispatch succeeded",
			logging.String(logging.FieldEventType, "dispatch_succeeded"),
		)
	}

	w.setState(StateRelocating)
	finalPath, relocateErr := relocate.Relocate(file.Path, destination)
	switch {
	case relocateErr == nil:
		w.tracker.Forget(file.Path)
		fileLogger.Info("relocation completed",
			logging.String(logging.FieldEventType, "relocation_completed"),
			logging.String("final_path", finalPath),
			logging.Bool("success", dispatchErr == nil),
		)
	case errors.Is(relocateErr, relocate.ErrSourceLeftBehind):
		// Already dispatched; never resubmit the leftover duplicate.
		w.tracker.Forget(file.Path)
		w.quarantined[file.Path] = struct{}{}
		fileLogger.Warn("relocated copy left source behind",
			logging.Error(relocateErr),
			logging.String(logging.FieldEventType, "relocation_degraded"),
			logging.String("final_path", finalPath),
			logging.String(logging.FieldErrorHint, "remove the leftover file from the watch folder manually"),
		)
	default:
		// File is still in the watch folder. Quarantine it for this process
		// lifetime so it is not printed again; a restart retries it fresh.
		w.tracker.Forget(file.Path)
		w.quarantined[file.Path] = struct{}{}
		fileLogger.Error("relocation failed",
			logging.Error(relocateErr),
			logging.String(logging.FieldEventType, "relocation_failed"),
			logging.String(logging.FieldErrorHint, "check destination folder permissions"),
		)
	}

	w.record(ctx, history.Record{
		JobID:        jobID,
		Folder:       w.folder.Name,
		File:         name,
		Printer:      w.folder.Printer,
		Success:      dispatchErr == nil,
		Reason:       reasonString(dispatchErr),
		FinalPath:    finalPath,
		DispatchedAt: time.Now().UTC(),
	})
}

func (w *Worker) record(ctx context.Context, rec history.Record) {
	if w.recorder == nil {
		return
	}
	// Ledger writes are best-effort and must survive shutdown cancellation.
	if err := w.recorder.Append(context.WithoutCancel(ctx), rec); err != nil {
		w.logger.Warn("history record failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_append_failed"),
			logging.String(logging.FieldJobID, rec.JobID),
		)
	}
}

func reasonString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
