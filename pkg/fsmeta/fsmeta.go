// Package fsmeta normalizes the platform status structure into a single typed
// record. Entry classification is exposed as an enumerated Kind so callers
// never test raw mode bits themselves.
package fsmeta

// Kind classifies a filesystem entry by its own type. The status query never
// follows symlinks, so a symlink is always reported as KindSymlink regardless
// of what it points to.
type Kind int

const (
	KindRegular Kind = iota
	KindDir
	KindSymlink
	KindOther
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindDir:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// FileMetadata is a snapshot of one filesystem entry at query time. It is a
// plain value type: either fully populated by Collect or not produced at all.
type FileMetadata struct {
	Path  string
	Depth int

	// Mode holds the raw status-mode bitfield as reported by the platform.
	// It is opaque to the engine; Kind carries the classification.
	Mode uint64
	Kind Kind

	UID uint64
	GID uint64

	Size int64

	Atime     int64
	AtimeNsec int64
	Mtime     int64
	MtimeNsec int64
	Ctime     int64
	CtimeNsec int64
}

// MtimeAfter reports whether m's modification time is strictly newer than
// other's, comparing whole seconds first and nanosecond fractions only on a
// seconds tie.
func (m FileMetadata) MtimeAfter(other FileMetadata) bool {
	if m.Mtime != other.Mtime {
		return m.Mtime > other.Mtime
	}
	return m.MtimeNsec > other.MtimeNsec
}
