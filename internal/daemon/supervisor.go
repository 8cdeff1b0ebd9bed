package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"hotfolder/internal/config"
	"hotfolder/internal/logging"
	"hotfolder/internal/printing"
	"hotfolder/internal/worker"
)

// Supervisor owns one worker goroutine per configured hot folder and enforces
// single-instance execution through a lock file.
type Supervisor struct {
	cfg        *config.Config
	logger     *slog.Logger
	dispatcher printing.Dispatcher
	recorder   worker.Recorder

	lockPath string
	lock     *flock.Flock
	pidPath  string

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	workers []*worker.Worker
	faults  map[string]error
}

// WorkerStatus describes one folder worker at a point in time.
type WorkerStatus struct {
	Folder    string
	WatchPath string
	Printer   string
	State     worker.State
	Err       error
}

// Status represents supervisor runtime information.
type Status struct {
	Running      bool
	LockFilePath string
	PIDFilePath  string
	Workers      []WorkerStatus
}

// Options carries optional supervisor dependencies.
type Options struct {
	Recorder worker.Recorder
}

// New constructs a supervisor. The lock and PID files live under the logging
// directory so one badly configured folder cannot move them.
func New(cfg *config.Config, dispatcher printing.Dispatcher, logger *slog.Logger, opts Options) (*Supervisor, error) {
	if cfg == nil || dispatcher == nil || logger == nil {
		return nil, errors.New("supervisor requires config, dispatcher, and logger")
	}

	logDir := cfg.Logging.Dir
	lockPath := filepath.Join(logDir, "hotfolderd.lock")
	return &Supervisor{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "supervisor"),
		dispatcher: dispatcher,
		recorder:   opts.Recorder,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
		pidPath:    filepath.Join(logDir, "hotfolderd.pid"),
		faults:     make(map[string]error),
	}, nil
}

// Start acquires the instance lock and launches one goroutine per folder. A
// folder whose worker cannot be constructed is skipped and recorded; Start
// fails only when no folder could be started at all.
func (s *Supervisor) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("supervisor already running")
	}

	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another hotfolderd instance is already running")
	}
	if err := writePIDFile(s.pidPath); err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("write pid file: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	opts := worker.Options{
		PollInterval:    s.cfg.PollInterval(),
		DispatchTimeout: s.cfg.DispatchTimeout(),
		Recorder:        s.recorder,
	}
	var started []*worker.Worker
	for _, folder := range s.cfg.Folders {
		w, err := worker.New(folder, s.dispatcher, s.logger, opts)
		if err != nil {
			s.recordFault(folder.Name, err)
			s.logger.Error("folder skipped",
				logging.Error(err),
				logging.String(logging.FieldFolder, folder.Name),
				logging.String(logging.FieldEventType, "folder_skipped"),
				logging.String(logging.FieldErrorHint, "fix the folder paths and restart the daemon"),
			)
			continue
		}
		started = append(started, w)
	}
	if len(started) == 0 {
		cancel()
		_ = os.Remove(s.pidPath)
		_ = s.lock.Unlock()
		return errors.New("no folder worker could be started")
	}

	s.mu.Lock()
	s.workers = started
	s.mu.Unlock()
	s.cancel = cancel
	s.running.Store(true)

	for _, w := range started {
		s.wg.Add(1)
		go func(w *worker.Worker) {
			defer s.wg.Done()
			if err := w.Run(runCtx); err != nil {
				s.recordFault(w.Name(), err)
			}
		}(w)
	}

	s.logger.Info("supervisor started",
		logging.String(logging.FieldEventType, "supervisor_started"),
		logging.Int("folders", len(started)),
		logging.String("lock", s.lockPath),
	)
	return nil
}

// Wait blocks until every worker goroutine has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Stop signals all workers, waits for in-flight files to finish, and releases
// the instance lock.
func (s *Supervisor) Stop() {
	if !s.running.Load() {
		return
	}

	s.logger.Info("supervisor stopping", logging.String(logging.FieldEventType, "supervisor_stopping"))
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()

	if err := os.Remove(s.pidPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove pid file", logging.Error(err))
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	s.running.Store(false)
	s.logger.Info("supervisor stopped", logging.String(logging.FieldEventType, "supervisor_stopped"))
}

// Close stops the supervisor. It is safe to call multiple times.
func (s *Supervisor) Close() error {
	s.Stop()
	return nil
}

// Status reports the supervisor and all worker states, including folders that
// failed to start.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:      s.running.Load(),
		LockFilePath: s.lockPath,
		PIDFilePath:  s.pidPath,
	}
	byName := make(map[string]*worker.Worker, len(s.workers))
	for _, w := range s.workers {
		byName[w.Name()] = w
	}
	for _, folder := range s.cfg.Folders {
		ws := WorkerStatus{
			Folder:    folder.Name,
			WatchPath: folder.WatchPath,
			Printer:   folder.Printer,
			Err:       s.faults[folder.Name],
		}
		if w, ok := byName[folder.Name]; ok {
			ws.State = w.State()
		}
		status.Workers = append(status.Workers, ws)
	}
	return status
}

func (s *Supervisor) recordFault(folder string, err error) {
	s.mu.Lock()
	s.faults[folder] = err
	s.mu.Unlock()
}

func writePIDFile(path string) error {
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
