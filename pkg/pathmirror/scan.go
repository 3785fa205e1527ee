package pathmirror

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixelgardenlabs.io/pgl-mirror/pkg/fsmeta"
	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
	"pixelgardenlabs.io/pgl-mirror/pkg/runlock"
	"pixelgardenlabs.io/pgl-mirror/pkg/util"
)

// scanTask holds the mutable state for the copy stage of a single run. This
// keeps the Syncer itself stateless across runs.
type scanTask struct {
	src   string
	dst   string
	stats *Stats
}

// run walks the source tree depth-first in pre-order, creating missing
// destination directories and copying new or changed regular files. It never
// deletes source-mirrored content; per-entry failures are logged and the walk
// continues.
func (t *scanTask) run() error {
	stageStart := time.Now()
	defer func() {
		t.stats.ScanElapsed = time.Since(stageStart)
	}()

	return filepath.WalkDir(t.src, func(absSrcPath string, d fs.DirEntry, err error) error {
		relPath, relErr := filepath.Rel(t.src, absSrcPath)
		if relErr != nil {
			plog.Warn("SKIP", "reason", "failed to compute relative path", "path", absSrcPath, "error", relErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if err != nil {
			// An unreadable source root means nothing can be mirrored.
			if relPath == "." {
				return fmt.Errorf("source root is unreadable: %w", err)
			}
			// Unreadable subtrees are suppressed at the traversal level: the
			// directory is not expanded and the walk continues.
			plog.Warn("SKIP", "reason", "error accessing path", "path", absSrcPath, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if relPath == "." {
			return nil // The source root itself is not an entry.
		}

		t.stats.EntriesScanned++

		if relPath == runlock.FileName {
			// A leftover lock in the source root must not clobber the lock
			// guarding this very destination.
			plog.Notice("SKIP", "reason", "lock file", "path", relPath)
			t.stats.apply(outcomeSkipped, nil, 0)
			return nil
		}

		depth := strings.Count(relPath, string(filepath.Separator))
		srcMeta, ok := fsmeta.Collect(absSrcPath, depth)
		if !ok {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		absDstPath := filepath.Join(t.dst, relPath)

		switch srcMeta.Kind {
		case fsmeta.KindSymlink:
			// Symlinks are never copied and never descended into, even when
			// they denote a directory. This also makes traversal cycle-safe.
			plog.Notice("SKIP", "reason", "symlink", "path", relPath)
			t.stats.apply(outcomeSkipped, nil, 0)
			return nil

		case fsmeta.KindDir:
			return t.processDirectory(&srcMeta, relPath, absDstPath)

		case fsmeta.KindRegular:
			t.processFile(&srcMeta, relPath, absSrcPath, absDstPath)
			return nil

		default:
			// Named pipes, sockets, devices and the like are not mirrored.
			plog.Notice("SKIP", "reason", "non-regular entry", "kind", srcMeta.Kind.String(), "path", relPath)
			t.stats.apply(outcomeSkipped, nil, 0)
			return nil
		}
	})
}

// processDirectory creates the destination directory chain for a source
// directory if it does not exist yet. Creation is recorded as a synced entry;
// an already existing destination directory is left untouched. When creation
// fails the subtree is not descended into, since nothing below it could land.
func (t *scanTask) processDirectory(srcMeta *fsmeta.FileMetadata, relPath, absDstPath string) error {
	if _, err := os.Lstat(absDstPath); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	perm := util.WithUserWritePermission(fs.FileMode(srcMeta.Mode).Perm())
	if err := os.MkdirAll(absDstPath, perm); err != nil {
		plog.Warn("failed to create destination directory", "path", relPath, "error", err)
		t.stats.apply(outcomeFailed, nil, 0)
		return filepath.SkipDir
	}

	plog.Notice("DIR", "path", relPath)
	t.stats.apply(outcomeCreated, srcMeta, 0)
	return nil
}

// processFile applies the freshness rule for one regular source file and
// copies it when the destination is missing, stale or of the wrong type.
func (t *scanTask) processFile(srcMeta *fsmeta.FileMetadata, relPath, absSrcPath, absDstPath string) {
	shouldCopy, ok := t.shouldCopyFile(srcMeta, relPath, absDstPath)
	if !ok {
		t.stats.apply(outcomeFailed, nil, 0)
		return
	}
	if !shouldCopy {
		t.stats.apply(outcomeSkipped, nil, 0)
		return
	}

	if err := os.MkdirAll(filepath.Dir(absDstPath), util.UserWritableDirPerms); err != nil {
		plog.Warn("failed to ensure parent directory", "path", relPath, "error", err)
		t.stats.apply(outcomeFailed, nil, 0)
		return
	}

	copyStart := time.Now()
	written, err := copyFile(absSrcPath, absDstPath, srcMeta)
	t.stats.CopyElapsed += time.Since(copyStart)
	if err != nil {
		plog.Warn("failed to copy file", "path", relPath, "error", err)
		t.stats.apply(outcomeFailed, nil, 0)
		return
	}

	plog.Notice("COPY", "path", relPath, "bytes", written)
	t.stats.apply(outcomeCopied, srcMeta, written)
}

// shouldCopyFile decides whether the source file needs to reach the
// destination. It may mutate the destination first (removing a conflicting
// directory, non-regular entry or symlink). The second return value is false
// when a required removal failed and the entry must be abandoned for this run.
func (t *scanTask) shouldCopyFile(srcMeta *fsmeta.FileMetadata, relPath, absDstPath string) (bool, bool) {
	info, err := os.Stat(absDstPath)
	if err != nil {
		// Missing destination, or destination metadata we cannot read:
		// either way the file needs a refresh.
		return true, true
	}

	if !info.Mode().IsRegular() {
		plog.Notice("destination entry is not a regular file, replacing", "path", relPath, "type", info.Mode().String())
		if err := os.RemoveAll(absDstPath); err != nil {
			plog.Warn("failed to remove non-regular destination entry", "path", relPath, "error", err)
			return false, false
		}
		return true, true
	}

	dstMeta, ok := fsmeta.Collect(absDstPath, srcMeta.Depth)
	if !ok {
		// Unreadable destination metadata is treated as "needs refresh".
		return true, true
	}

	if dstMeta.Kind == fsmeta.KindSymlink {
		// Never copy onto or through a symlink.
		plog.Notice("destination entry is a symlink, replacing", "path", relPath)
		if err := os.Remove(absDstPath); err != nil {
			plog.Warn("failed to remove destination symlink", "path", relPath, "error", err)
			return false, false
		}
		return true, true
	}

	// One-directional freshness test: a destination with an equal-or-newer
	// timestamp and equal size is left untouched even if content differs.
	return srcMeta.Size != dstMeta.Size || srcMeta.MtimeAfter(dstMeta), true
}

// copyFile copies a regular file into place atomically: the content goes to a
// temporary file in the destination directory first, which is then renamed
// over any existing destination entry. Source permissions are preserved with
// the owner-write bit forced, and the source modification time is carried
// over so subsequent runs see the file as up to date.
func copyFile(absSrcPath, absDstPath string, srcMeta *fsmeta.FileMetadata) (written int64, retErr error) {
	in, err := os.Open(absSrcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", absSrcPath, err)
	}
	defer in.Close()

	absDstDir := filepath.Dir(absDstPath)
	out, err := os.CreateTemp(absDstDir, "pgl-mirror-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file in %s: %w", absDstDir, err)
	}
	defer out.Close() // Ensure closed on error.

	absTempPath := out.Name()
	// If the rename succeeds, absTempPath is cleared and this becomes a no-op.
	defer func() {
		if absTempPath != "" {
			os.Remove(absTempPath)
		}
	}()

	if written, err = io.Copy(out, in); err != nil {
		return written, fmt.Errorf("failed to copy content from %s to %s: %w", absSrcPath, absTempPath, err)
	}

	if err := out.Chmod(util.WithUserWritePermission(fs.FileMode(srcMeta.Mode).Perm())); err != nil {
		return written, fmt.Errorf("failed to set permissions on temporary file %s: %w", absTempPath, err)
	}

	// Close must happen before Chtimes: flushing may touch the mod time.
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("failed to close temporary file %s: %w", absTempPath, err)
	}

	modTime := time.Unix(srcMeta.Mtime, srcMeta.MtimeNsec)
	if err := os.Chtimes(absTempPath, modTime, modTime); err != nil {
		return written, fmt.Errorf("failed to set timestamps on %s: %w", absTempPath, err)
	}

	if err := os.Rename(absTempPath, absDstPath); err != nil {
		return written, fmt.Errorf("failed to rename %s to %s: %w", absTempPath, absDstPath, err)
	}

	absTempPath = ""
	return written, nil
}
