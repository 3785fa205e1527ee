package pathmirror

import (
	"fmt"
	"strings"
)

// ArchiveFormat represents the archive format for preserving pruned entries.
type ArchiveFormat string

const (
	ArchiveTarGz  ArchiveFormat = "tar.gz"
	ArchiveTarZst ArchiveFormat = "tar.zst"
)

func (f ArchiveFormat) String() string {
	return string(f)
}

// ArchiveFormatFromPath infers the archive format from a file name.
func ArchiveFormatFromPath(path string) (ArchiveFormat, error) {
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		return ArchiveTarGz, nil
	case strings.HasSuffix(path, ".tar.zst"):
		return ArchiveTarZst, nil
	default:
		return "", fmt.Errorf("cannot infer archive format from %q: expected a .tar.gz, .tgz or .tar.zst suffix", path)
	}
}

// Options is the immutable configuration for one synchronization run.
type Options struct {
	// RemoveExtraneous enables the prune stage: destination entries with no
	// source counterpart are deleted. When false the destination keeps them.
	RemoveExtraneous bool

	// ArchiveRemoved, when non-empty, is the path of a compressed tarball
	// that receives every prune candidate before it is removed. The format
	// is inferred from the file name suffix. Only meaningful together with
	// RemoveExtraneous.
	ArchiveRemoved string
}
