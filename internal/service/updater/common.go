package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/mc-updater/internal/config"
	"github.com/oshokin/mc-updater/internal/logger"
)

// errUpdaterAlreadyRunning is returned when another run holds the lock.
var errUpdaterAlreadyRunning = errors.New("the updater is already running")

// processLister returns the process table; replaced in tests.
type processLister func() ([]ps.Process, error)

// runLock is the lock file held for the duration of an update.
type runLock struct {
	path      string
	lifetime  time.Duration
	processes processLister
	self      string
}

func newRunLock(path string, lifetime time.Duration) *runLock {
	return &runLock{
		path:      filepath.Clean(path),
		lifetime:  lifetime,
		processes: ps.Processes,
		self:      currentExecutable(),
	}
}

// Acquire creates the lock file. A leftover lock older than the lifetime is
// reclaimed when no other updater process is alive.
func (l *runLock) Acquire(ctx context.Context) error {
	logger.Debug(ctx, "Checking for the presence of a run lock")

	err := l.create()
	if err == nil {
		return nil
	}

	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create lock %s: %w", l.path, err)
	}

	if !l.isStale(ctx) {
		return fmt.Errorf("lock %s: %w", l.path, errUpdaterAlreadyRunning)
	}

	logger.InfoKV(ctx, "The run lock is stale, reclaiming it", "path", l.path)

	if err = os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale lock: %w", err)
	}

	if err = l.create(); err != nil {
		return fmt.Errorf("create lock %s: %w", l.path, err)
	}

	return nil
}

// Release removes the lock file.
func (l *runLock) Release(ctx context.Context) {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove the run lock", "path", l.path, "error", err)
	}
}

func (l *runLock) create() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return err
	}

	_, err = file.WriteString(strconv.Itoa(os.Getpid()))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	return err
}

func (l *runLock) isStale(ctx context.Context) bool {
	info, err := os.Stat(l.path)
	if err != nil {
		// Vanished in between: treat as reclaimable.
		return errors.Is(err, os.ErrNotExist)
	}

	if time.Since(info.ModTime()) <= l.lifetime {
		return false
	}

	running, err := l.anotherUpdaterRunning()
	if err != nil {
		logger.WarnKV(ctx, "Unable to list processes, keeping the lock", "error", err)
		return false
	}

	return !running
}

// anotherUpdaterRunning looks for a process with the same executable name.
func (l *runLock) anotherUpdaterRunning() (bool, error) {
	processList, err := l.processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == l.self {
			return true, nil
		}
	}

	return false, nil
}

// currentExecutable returns the base name of this binary as the process
// table reports it (Linux truncates it to 15 bytes).
func currentExecutable() string {
	const commLength = 15

	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}

	name := filepath.Base(executable)
	if len(name) > commLength {
		name = name[:commLength]
	}

	return name
}
