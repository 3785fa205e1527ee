// Package preflight provides the validation checks that run before a
// synchronization begins. A failed check is fatal for the whole run: no
// copying or pruning starts, and no statistics are produced.
package preflight

import (
	"fmt"
	"os"
)

// ValidationError marks a fatal pre-run validation failure. It aborts the run
// before any filesystem mutation in the copy or prune stages.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CheckSourceAccessible validates that the source path exists and is a directory.
func CheckSourceAccessible(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return &ValidationError{Reason: fmt.Sprintf("source directory %s does not exist", src)}
		}
		return &ValidationError{Reason: fmt.Sprintf("cannot stat source directory %s", src), Err: err}
	}
	if !info.IsDir() {
		return &ValidationError{Reason: fmt.Sprintf("source path %s is not a directory", src)}
	}
	return nil
}

// CheckDestinationUsable validates that the destination path, if it already
// exists, is a directory. A missing destination is fine; the orchestrator
// creates the root before scanning.
func CheckDestinationUsable(dst string) error {
	info, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ValidationError{Reason: fmt.Sprintf("cannot stat destination path %s", dst), Err: err}
	}
	if !info.IsDir() {
		return &ValidationError{Reason: fmt.Sprintf("destination exists but is not a directory: %s", dst)}
	}
	return nil
}

// CheckDistinctLocations verifies that source and destination do not resolve
// to the same physical directory. The comparison is by filesystem identity,
// not by string equality, so it catches symlinked, relative and absolute
// aliases of the same location. Both paths must exist when this runs.
func CheckDistinctLocations(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("cannot stat source directory %s", src), Err: err}
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("cannot stat destination directory %s", dst), Err: err}
	}
	if os.SameFile(srcInfo, dstInfo) {
		return &ValidationError{Reason: "source and destination resolve to the same location"}
	}
	return nil
}
