// Package runlock guards a destination directory against concurrent
// synchronization runs. The lock is a JSON marker file in the guarded
// directory, created atomically and refreshed by a background heartbeat so a
// crashed run leaves a detectably stale lock behind instead of a permanent
// one.
package runlock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
)

// FileName is the name of the lock file created in the guarded directory.
// The '~' prefix marks it as temporary.
const FileName = ".~pgl-mirror.lock"

const lockFileMode = 0644

// These are vars to allow modification during testing.
var (
	heartbeatInterval = 30 * time.Second
	// staleTimeout is defined in relation to the heartbeat to ensure a safe margin.
	staleTimeout = 6 * heartbeatInterval
)

// Content defines the structure of the data written to the lock file.
type Content struct {
	PID        int64     `json:"pid"`
	Hostname   string    `json:"hostname"`
	LastUpdate time.Time `json:"lastUpdate"`
	AppID      string    `json:"appID"`
}

// ErrLockActive is a structured error returned when the lock is already held
// by another live process.
type ErrLockActive struct {
	PID       int64
	Hostname  string
	AppID     string
	TimeSince time.Duration
}

func (e *ErrLockActive) Error() string {
	// Truncate for cleaner output, e.g., "3m2s" instead of "3m2.123456789s".
	return fmt.Sprintf("destination is locked, held by PID %d on host '%s' (App: %s), last updated %s ago", e.PID, e.Hostname, e.AppID, e.TimeSince.Truncate(time.Second))
}

// Lock manages the state of an acquired lock file.
type Lock struct {
	path  string
	appID string
	// The context and cancel function stop the background heartbeat goroutine.
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	// Tracks whether we actually hold the lock to prevent double release.
	held bool
}

// Acquire locks dirPath against concurrent runs. It returns a non-nil Lock on
// success, (nil, *ErrLockActive) when another live process holds the lock,
// and (nil, error) for any other failure. A stale lock whose holder stopped
// heartbeating is removed and taken over.
func Acquire(ctx context.Context, dirPath string, appID string) (*Lock, error) {
	absLockPath := filepath.Join(dirPath, FileName)

	// Multiple attempts cover the race where a stale lock is cleaned up by a
	// competing process between our staleness check and our removal.
	const maxAttempts = 3
	for i := 0; i < maxAttempts; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lock, err := tryAcquire(absLockPath, appID)
		if err == nil {
			return lock, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to access lock file: %w", err)
		}

		content, readErr := readContentSafely(absLockPath)
		if readErr != nil {
			// The holder may be mid-write; give it a moment and retry.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		elapsed := time.Since(content.LastUpdate)
		if elapsed < staleTimeout {
			return nil, &ErrLockActive{
				PID:       content.PID,
				Hostname:  content.Hostname,
				AppID:     content.AppID,
				TimeSince: elapsed,
			}
		}

		plog.Warn("Found stale destination lock", "pid", content.PID, "host", content.Hostname, "age", elapsed)
		if removeErr := os.Remove(absLockPath); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, fmt.Errorf("failed to remove stale lock: %w", removeErr)
		}
		plog.Info("Stale lock removed, retrying acquisition")
	}

	return nil, fmt.Errorf("failed to acquire destination lock after %d attempts (contention)", maxAttempts)
}

// tryAcquire attempts atomic creation using O_EXCL.
func tryAcquire(path string, appID string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, lockFileMode)
	if err != nil {
		return nil, err
	}
	f.Close() // Content is written via updateContent.

	ctx, cancel := context.WithCancel(context.Background())
	l := &Lock{
		path:   path,
		appID:  appID,
		ctx:    ctx,
		cancel: cancel,
		held:   true,
	}

	// The empty file we just created must not linger if the first write fails.
	if err := l.updateContent(); err != nil {
		l.cleanup()
		cancel()
		return nil, err
	}

	go l.heartbeat()
	return l, nil
}

// Release stops the heartbeat and removes the lock file. It is safe to call
// more than once.
func (l *Lock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return
	}

	l.cancel()
	l.cleanup()
	l.held = false
}

func (l *Lock) cleanup() {
	if err := os.Remove(l.path); err != nil {
		if !os.IsNotExist(err) {
			plog.Warn("Failed to remove lock file", "path", l.path, "error", err)
		}
		return
	}
	plog.Debug("Destination lock released", "path", l.path)
}

func (l *Lock) heartbeat() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			if err := l.updateContent(); err != nil {
				plog.Warn("Heartbeat failed to update lock file", "error", err)
			}
		}
	}
}

func (l *Lock) updateContent() error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	content := Content{
		PID:        int64(os.Getpid()),
		Hostname:   hostname,
		LastUpdate: time.Now(),
		AppID:      l.appID,
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}

	// WriteFile truncates in place; readContentSafely tolerates the brief
	// window where the file is empty or partially written.
	return os.WriteFile(l.path, data, lockFileMode)
}

// readContentSafely reads the lock file, retrying over the race window where
// the holder is truncating and rewriting it.
func readContentSafely(path string) (Content, error) {
	var lastErr error

	for i := 0; i < 3; i++ {
		f, err := os.Open(path)
		if err != nil {
			return Content{}, err
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			lastErr = err
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if len(data) == 0 {
			lastErr = errors.New("lock file is empty")
			time.Sleep(50 * time.Millisecond)
			continue
		}

		var content Content
		if err := json.Unmarshal(data, &content); err != nil {
			lastErr = err
			time.Sleep(50 * time.Millisecond)
			continue
		}
		return content, nil
	}

	return Content{}, fmt.Errorf("failed to read valid lock content: %w", lastErr)
}
