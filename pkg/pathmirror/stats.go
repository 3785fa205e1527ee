package pathmirror

import (
	"time"

	"pixelgardenlabs.io/pgl-mirror/pkg/fsmeta"
)

// outcome is the result of processing a single entry. Every per-entry code
// path resolves to exactly one outcome, and a single reducer folds outcomes
// into the statistics, so no counter can drift out of step with the others.
type outcome int

const (
	outcomeCopied outcome = iota
	outcomeCreated
	outcomeSkipped
	outcomeRemoved
	outcomeFailed
)

// Stats accumulates the counters, byte totals, stage durations and synced
// entry metadata for one synchronization run. It is owned exclusively by the
// Synchronize call that created it and returned by value at the end; it is
// never shared across concurrent runs.
type Stats struct {
	EntriesScanned int64
	FilesCopied    int64
	FilesSkipped   int64
	FilesDeleted   int64
	DirsCreated    int64
	BytesCopied    int64

	ScanElapsed  time.Duration
	CopyElapsed  time.Duration
	PruneElapsed time.Duration
	TotalElapsed time.Duration

	// SyncedEntries holds the source metadata snapshot for every file that
	// was copied and every directory that was newly created, in traversal
	// order. Directories appear only on first creation, not on every visit.
	SyncedEntries []fsmeta.FileMetadata
}

// apply folds one entry outcome into the stats. meta may be nil except for
// copied and created outcomes; n carries bytes for a copy and the object
// count for a removal.
func (s *Stats) apply(o outcome, meta *fsmeta.FileMetadata, n int64) {
	switch o {
	case outcomeCopied:
		s.FilesCopied++
		s.BytesCopied += n
		if meta != nil {
			s.SyncedEntries = append(s.SyncedEntries, *meta)
		}
	case outcomeCreated:
		s.DirsCreated++
		if meta != nil {
			s.SyncedEntries = append(s.SyncedEntries, *meta)
		}
	case outcomeSkipped:
		s.FilesSkipped++
	case outcomeRemoved:
		s.FilesDeleted += n
	case outcomeFailed:
		// A failed entry counts toward no success counter. It was already
		// counted as scanned when visited.
	}
}
