//go:build unix

package fsmeta

import (
	"golang.org/x/sys/unix"

	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
)

// Collect issues a single non-following status query for path and returns the
// normalized metadata. On failure (entry vanished, permission denied, I/O
// error) it logs a diagnostic and reports absence; the caller decides whether
// that is fatal or skippable.
func Collect(path string, depth int) (FileMetadata, bool) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		plog.Warn("lstat failed", "path", path, "error", err)
		return FileMetadata{}, false
	}

	return FileMetadata{
		Path:      path,
		Depth:     depth,
		Mode:      uint64(st.Mode),
		Kind:      kindFromMode(uint32(st.Mode)),
		UID:       uint64(st.Uid),
		GID:       uint64(st.Gid),
		Size:      st.Size,
		Atime:     int64(st.Atim.Sec),
		AtimeNsec: int64(st.Atim.Nsec),
		Mtime:     int64(st.Mtim.Sec),
		MtimeNsec: int64(st.Mtim.Nsec),
		Ctime:     int64(st.Ctim.Sec),
		CtimeNsec: int64(st.Ctim.Nsec),
	}, true
}

func kindFromMode(mode uint32) Kind {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return KindRegular
	case unix.S_IFDIR:
		return KindDir
	case unix.S_IFLNK:
		return KindSymlink
	default:
		return KindOther
	}
}
