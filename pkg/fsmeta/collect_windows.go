//go:build windows

package fsmeta

import (
	"os"
	"syscall"

	"pixelgardenlabs.io/pgl-mirror/pkg/plog"
)

// Collect issues a single non-following status query for path and returns the
// normalized metadata. Windows has no numeric owner identifiers in the basic
// attribute data, so UID and GID are reported as zero.
func Collect(path string, depth int) (FileMetadata, bool) {
	fi, err := os.Lstat(path)
	if err != nil {
		plog.Warn("lstat failed", "path", path, "error", err)
		return FileMetadata{}, false
	}

	meta := FileMetadata{
		Path:  path,
		Depth: depth,
		Mode:  uint64(fi.Mode()),
		Kind:  kindFromFileMode(fi.Mode()),
		Size:  fi.Size(),
	}

	mtime := fi.ModTime()
	meta.Mtime = mtime.Unix()
	meta.MtimeNsec = int64(mtime.Nanosecond())

	if attrs, ok := fi.Sys().(*syscall.Win32FileAttributeData); ok {
		atime := attrs.LastAccessTime.Nanoseconds()
		ctime := attrs.CreationTime.Nanoseconds()
		meta.Atime = atime / 1e9
		meta.AtimeNsec = atime % 1e9
		meta.Ctime = ctime / 1e9
		meta.CtimeNsec = ctime % 1e9
	} else {
		meta.Atime = meta.Mtime
		meta.AtimeNsec = meta.MtimeNsec
		meta.Ctime = meta.Mtime
		meta.CtimeNsec = meta.MtimeNsec
	}

	return meta, true
}

func kindFromFileMode(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindRegular
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}
