// Package report renders the statistics of a synchronization run for human
// consumption. It is a pure consumer of pathmirror.Stats: all formatting
// lives here and nothing writes back into the engine.
package report

import (
	"fmt"
	"io"
	"time"

	"pixelgardenlabs.io/pgl-mirror/pkg/fsmeta"
	"pixelgardenlabs.io/pgl-mirror/pkg/pathmirror"
	"pixelgardenlabs.io/pgl-mirror/pkg/util"
)

// Print writes the synchronization summary followed by the per-entry
// metadata listing to w.
func Print(w io.Writer, stats pathmirror.Stats) {
	PrintSummary(w, stats)
	PrintSyncedEntries(w, stats.SyncedEntries)
}

// PrintSummary writes the counter and duration block for one run.
func PrintSummary(w io.Writer, stats pathmirror.Stats) {
	fmt.Fprintf(w, "\n=== Synchronization Summary ===\n")
	fmt.Fprintf(w, "  Entries scanned:      %d\n", stats.EntriesScanned)
	fmt.Fprintf(w, "  Files copied:         %d\n", stats.FilesCopied)
	fmt.Fprintf(w, "  Files skipped:        %d\n", stats.FilesSkipped)
	fmt.Fprintf(w, "  Directories created:  %d\n", stats.DirsCreated)
	fmt.Fprintf(w, "  Entries deleted:      %d\n", stats.FilesDeleted)
	fmt.Fprintf(w, "  Bytes copied:         %d (%s)\n", stats.BytesCopied, util.ByteCountIEC(stats.BytesCopied))

	printDuration(w, "Scan elapsed", stats.ScanElapsed)
	printDuration(w, "Copy elapsed", stats.CopyElapsed)
	printDuration(w, "Prune elapsed", stats.PruneElapsed)
	printDuration(w, "Total elapsed", stats.TotalElapsed)

	if stats.TotalElapsed > 0 {
		mib := float64(stats.BytesCopied) / (1024.0 * 1024.0)
		throughput := mib / stats.TotalElapsed.Seconds()
		fmt.Fprintf(w, "  Effective throughput: %.3f MiB/s\n", throughput)
	} else {
		fmt.Fprintf(w, "  Effective throughput: n/a\n")
	}
}

func printDuration(w io.Writer, label string, d time.Duration) {
	fmt.Fprintf(w, "  %-20s %.3f s\n", label+":", d.Seconds())
}

// PrintSyncedEntries writes the metadata snapshot of every copied file and
// newly created directory, in the order they were synchronized.
func PrintSyncedEntries(w io.Writer, entries []fsmeta.FileMetadata) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "\nNo entries were synchronized.\n")
		return
	}

	fmt.Fprintf(w, "\n=== Synchronized Source Entries ===\n")
	for _, meta := range entries {
		fmt.Fprintf(w, "  Path: %s\n", meta.Path)
		fmt.Fprintf(w, "    depth: %d\n", meta.Depth)
		fmt.Fprintf(w, "    kind: %s, mode: %o\n", meta.Kind, meta.Mode)
		fmt.Fprintf(w, "    uid: %d, gid: %d\n", meta.UID, meta.GID)
		fmt.Fprintf(w, "    size: %d bytes\n", meta.Size)
		fmt.Fprintf(w, "    mtime: %ds + %dns\n", meta.Mtime, meta.MtimeNsec)
		fmt.Fprintf(w, "    atime: %ds + %dns\n", meta.Atime, meta.AtimeNsec)
		fmt.Fprintf(w, "    ctime: %ds + %dns\n", meta.Ctime, meta.CtimeNsec)
	}
}
