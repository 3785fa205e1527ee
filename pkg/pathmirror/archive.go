package pathmirror

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
)

// writeRemovalArchive preserves every removal candidate in a compressed
// tarball before the prune stage deletes it. Entry names are relative to the
// destination root. The archive is written to a temporary file and renamed
// into place so a failed run never leaves a half-written tarball behind.
func writeRemovalArchive(archivePath, dstRoot string, candidates []removalCandidate) (retErr error) {
	format, err := ArchiveFormatFromPath(archivePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	out, err := os.CreateTemp(filepath.Dir(archivePath), "pgl-mirror-archive-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive file: %w", err)
	}
	defer out.Close()

	absTempPath := out.Name()
	defer func() {
		if absTempPath != "" {
			os.Remove(absTempPath)
		}
	}()

	var compressor io.WriteCloser
	switch format {
	case ArchiveTarZst:
		compressor, err = zstd.NewWriter(out)
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
	default:
		compressor = pgzip.NewWriter(out)
	}

	tw := tar.NewWriter(compressor)

	// Shallowest first, so directory headers precede their contents. A
	// directory candidate archives its whole subtree, so deeper candidates
	// inside it are deduplicated via the written set.
	written := make(map[string]struct{}, len(candidates))
	for i := len(candidates) - 1; i >= 0; i-- {
		if err := archiveCandidate(tw, dstRoot, candidates[i], written); err != nil {
			tw.Close()
			compressor.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("failed to finalize compression: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close archive file: %w", err)
	}

	if err := os.Rename(absTempPath, archivePath); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	absTempPath = ""

	plog.Info("Archived extraneous entries", "archive", archivePath, "format", format.String(), "candidates", len(candidates))
	return nil
}

// archiveCandidate writes one removal candidate into the tar stream. File
// candidates become single entries; a directory candidate is walked so that
// entries not individually listed (symlinks, unreadable leftovers) are still
// preserved where possible.
func archiveCandidate(tw *tar.Writer, dstRoot string, c removalCandidate, written map[string]struct{}) error {
	if _, done := written[c.path]; done {
		return nil
	}

	if !c.isDir {
		info, err := os.Lstat(c.path)
		if err != nil {
			plog.Warn("skipping archive entry", "path", c.path, "error", err)
			return nil
		}
		written[c.path] = struct{}{}
		return writeTarEntry(tw, dstRoot, c.path, info)
	}

	return filepath.WalkDir(c.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			plog.Warn("skipping archive entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if _, done := written[path]; done {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			plog.Warn("skipping archive entry", "path", path, "error", err)
			return nil
		}
		written[path] = struct{}{}
		return writeTarEntry(tw, dstRoot, path, info)
	})
}

func writeTarEntry(tw *tar.Writer, dstRoot, path string, info fs.FileInfo) error {
	relPath, err := filepath.Rel(dstRoot, path)
	if err != nil {
		plog.Warn("skipping archive entry", "path", path, "error", err)
		return nil
	}

	var linkTarget string
	if info.Mode()&fs.ModeSymlink != 0 {
		if linkTarget, err = os.Readlink(path); err != nil {
			plog.Warn("skipping archive entry", "path", path, "error", err)
			return nil
		}
	}

	hdr, err := tar.FileInfoHeader(info, linkTarget)
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", path, err)
	}
	hdr.Name = filepath.ToSlash(relPath)
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", path, err)
	}
	defer in.Close()

	if _, err := io.Copy(tw, in); err != nil {
		return fmt.Errorf("failed to archive content of %s: %w", path, err)
	}
	return nil
}
