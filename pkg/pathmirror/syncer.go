// Package pathmirror implements the one-way synchronization decision engine:
// a copy stage that mirrors source into destination, and an optional prune
// stage that removes destination entries with no source counterpart in
// depth-descending order. Execution is strictly sequential; the only shared
// state of a run is its Stats accumulator, owned by the Synchronize call.
package pathmirror

import (
	"context"
	"fmt"
	"os"
	"time"

	"pixelgardenlabs.io/pgl-mirror/pkg/buildinfo"
	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
	"pixelgardenlabs.io/pgl-mirror/pkg/preflight"
	"pixelgardenlabs.io/pgl-mirror/pkg/runlock"
	"pixelgardenlabs.io/pgl-mirror/pkg/util"
)

// Syncer orchestrates synchronization runs. It is stateless across runs; all
// per-run state lives in the stage tasks and the returned Stats.
type Syncer struct {
	opts Options
}

// NewSyncer creates a Syncer with the given options.
func NewSyncer(opts Options) *Syncer {
	return &Syncer{opts: opts}
}

// Synchronize makes the destination tree match the source tree and returns
// the accumulated statistics. Validation failures abort the run with a
// preflight.ValidationError before anything is mutated; per-entry failures
// inside the stages are logged and the run continues. When the prune stage
// fails outright (the extraneous-entry archive could not be written), the
// returned stats still reflect the completed copy stage.
func (s *Syncer) Synchronize(src, dst string) (stats Stats, err error) {
	totalStart := time.Now()
	defer func() {
		stats.TotalElapsed = time.Since(totalStart)
	}()

	totalSteps := 3
	if s.opts.RemoveExtraneous {
		totalSteps = 4
	}

	plog.Info(fmt.Sprintf("[1/%d] Validating input directories", totalSteps), "source", src, "destination", dst)
	if err := preflight.CheckSourceAccessible(src); err != nil {
		return stats, err
	}
	if err := preflight.CheckDestinationUsable(dst); err != nil {
		return stats, err
	}

	plog.Info(fmt.Sprintf("[2/%d] Preparing destination directory tree", totalSteps))
	if err := ensureDestinationRoot(dst); err != nil {
		return stats, err
	}
	// Equivalence is checked after the root exists so aliasing through
	// freshly created path components is caught as well.
	if err := preflight.CheckDistinctLocations(src, dst); err != nil {
		return stats, err
	}

	lock, err := runlock.Acquire(context.Background(), dst, buildinfo.Name)
	if err != nil {
		return stats, err
	}
	defer lock.Release()

	plog.Info(fmt.Sprintf("[3/%d] Copying new and updated entries from source", totalSteps))
	scan := &scanTask{src: src, dst: dst, stats: &stats}
	if err := scan.run(); err != nil {
		return stats, err
	}

	if s.opts.RemoveExtraneous {
		plog.Info(fmt.Sprintf("[4/%d] Pruning entries that no longer exist in source", totalSteps))
		prune := &pruneTask{src: src, dst: dst, archiveRemoved: s.opts.ArchiveRemoved, stats: &stats}
		if err := prune.run(); err != nil {
			return stats, err
		}
	} else {
		plog.Info("Skipping prune stage (extraneous entries retained)")
	}

	return stats, nil
}

// ensureDestinationRoot creates the destination root (and missing ancestors)
// when it does not exist yet. Failure here is fatal: without a root there is
// nothing to synchronize into.
func ensureDestinationRoot(dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &preflight.ValidationError{Reason: fmt.Sprintf("cannot stat destination path %s", dst), Err: err}
	}

	if err := os.MkdirAll(dst, util.UserWritableDirPerms); err != nil {
		return &preflight.ValidationError{Reason: fmt.Sprintf("failed to create destination root %s", dst), Err: err}
	}
	plog.Info("Created destination root", "path", dst)
	return nil
}
