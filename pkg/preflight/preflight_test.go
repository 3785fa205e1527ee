package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestCheckSourceAccessible(t *testing.T) {
	t.Run("existing directory passes", func(t *testing.T) {
		if err := CheckSourceAccessible(t.TempDir()); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("missing source fails", func(t *testing.T) {
		err := CheckSourceAccessible(filepath.Join(t.TempDir(), "missing"))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !strings.Contains(verr.Error(), "does not exist") {
			t.Errorf("unexpected message: %v", verr)
		}
	})

	t.Run("source is a file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		err := CheckSourceAccessible(path)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !strings.Contains(verr.Error(), "not a directory") {
			t.Errorf("unexpected message: %v", verr)
		}
	})
}

func TestCheckDestinationUsable(t *testing.T) {
	t.Run("missing destination passes", func(t *testing.T) {
		if err := CheckDestinationUsable(filepath.Join(t.TempDir(), "not-yet-created")); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("existing directory passes", func(t *testing.T) {
		if err := CheckDestinationUsable(t.TempDir()); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("destination is a file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		err := CheckDestinationUsable(path)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestCheckDistinctLocations(t *testing.T) {
	t.Run("distinct directories pass", func(t *testing.T) {
		if err := CheckDistinctLocations(t.TempDir(), t.TempDir()); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("identical path fails", func(t *testing.T) {
		dir := t.TempDir()
		err := CheckDistinctLocations(dir, dir)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !strings.Contains(verr.Error(), "same location") {
			t.Errorf("unexpected message: %v", verr)
		}
	})

	t.Run("symlink alias fails", func(t *testing.T) {
		dir := t.TempDir()
		alias := filepath.Join(t.TempDir(), "alias")
		if err := os.Symlink(dir, alias); err != nil {
			if runtime.GOOS == "windows" && strings.Contains(err.Error(), "privilege") {
				t.Skip("creating symlinks on Windows requires elevated privileges")
			}
			t.Fatalf("failed to create symlink: %v", err)
		}
		err := CheckDistinctLocations(dir, alias)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for symlinked alias, got %v", err)
		}
	})
}
