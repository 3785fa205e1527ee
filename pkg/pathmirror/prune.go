package pathmirror

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"pixelgardenlabs.io/pgl-mirror/pkg/fsmeta"
	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
	"pixelgardenlabs.io/pgl-mirror/pkg/runlock"
)

// removalCandidate is one destination entry with no source counterpart. The
// depth is the count of path components from the filesystem root, not from
// the pruned tree's root; candidates only live until the removal pass ends.
type removalCandidate struct {
	path  string
	isDir bool
	depth int
}

// pruneTask holds the mutable state for the prune stage of a single run.
type pruneTask struct {
	src            string
	dst            string
	archiveRemoved string
	stats          *Stats
}

// run removes destination entries that have no counterpart in source. It
// works in three phases: discover candidates, sort them by full-path depth
// descending, then remove them deepest-first so a directory is never removed
// before its children. Individual removal failures are logged and do not
// abort the remaining removals.
func (t *pruneTask) run() error {
	stageStart := time.Now()
	defer func() {
		t.stats.PruneElapsed = time.Since(stageStart)
	}()

	candidates, err := t.discoverCandidates()
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	// Deeper entries first. This is the precondition for removing
	// directories without emptying them beforehand: nothing below a
	// directory candidate survives into a later removal step.
	slices.SortFunc(candidates, func(a, b removalCandidate) int {
		return b.depth - a.depth
	})

	if t.archiveRemoved != "" {
		// Safety first: if the candidates cannot be preserved, nothing is
		// removed and the extraneous entries stay in the destination.
		if err := writeRemovalArchive(t.archiveRemoved, t.dst, candidates); err != nil {
			return fmt.Errorf("failed to archive extraneous entries: %w", err)
		}
	}

	t.removeCandidates(candidates)
	return nil
}

// discoverCandidates walks the destination tree and collects every entry
// whose mapped source path does not exist. Symlinks are reported but never
// removed and never descended; entries with unreadable metadata are left
// alone rather than risk deleting an unknown entity.
func (t *pruneTask) discoverCandidates() ([]removalCandidate, error) {
	var candidates []removalCandidate

	err := filepath.WalkDir(t.dst, func(absDstPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			plog.Warn("SKIP", "reason", "error accessing destination path", "path", absDstPath, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, relErr := filepath.Rel(t.dst, absDstPath)
		if relErr != nil {
			plog.Warn("SKIP", "reason", "failed to compute relative path", "path", absDstPath, "error", relErr)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if relPath == "." {
			return nil // Never a candidate: the destination root always stays.
		}
		if relPath == runlock.FileName {
			return nil // The lock guarding this very run is not extraneous.
		}

		dstMeta, ok := fsmeta.Collect(absDstPath, strings.Count(relPath, string(filepath.Separator)))
		if !ok {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if dstMeta.Kind == fsmeta.KindSymlink {
			plog.Notice("SKIP", "reason", "symlink in destination", "path", relPath)
			return nil
		}

		if _, err := os.Stat(filepath.Join(t.src, relPath)); err == nil {
			return nil // Path exists in source, keep it and descend normally.
		}

		candidates = append(candidates, removalCandidate{
			path:  absDstPath,
			isDir: dstMeta.Kind == fsmeta.KindDir,
			depth: pathDepth(absDstPath),
		})
		return nil
	})
	return candidates, err
}

// removeCandidates executes the sorted removal plan. A directory candidate is
// removed with its entire remaining subtree, counting every removed object;
// a file candidate counts one.
func (t *pruneTask) removeCandidates(candidates []removalCandidate) {
	for _, c := range candidates {
		if c.isDir {
			plog.Notice("DELETE", "path", c.path, "type", "directory")
			remaining := countSubtree(c.path)
			if err := os.RemoveAll(c.path); err != nil {
				plog.Warn("failed to remove extraneous directory", "path", c.path, "error", err)
				continue
			}
			t.stats.apply(outcomeRemoved, nil, remaining)
			continue
		}

		plog.Notice("DELETE", "path", c.path)
		if err := os.Remove(c.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // Already vanished, nothing to count.
			}
			plog.Warn("failed to remove extraneous file", "path", c.path, "error", err)
			continue
		}
		t.stats.apply(outcomeRemoved, nil, 1)
	}
}

// pathDepth counts the path components of p, including the root element of an
// absolute path, mirroring component-wise iteration of the full path.
func pathDepth(p string) int {
	return strings.Count(filepath.Clean(p), string(filepath.Separator)) + 1
}

// countSubtree counts the filesystem objects still present under root,
// including root itself. Because candidates are removed deepest-first, by the
// time a directory candidate is removed this is exactly the number of objects
// its recursive removal will delete.
func countSubtree(root string) int64 {
	var n int64
	_ = filepath.WalkDir(root, func(_ string, _ fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		n++
		return nil
	})
	return n
}
