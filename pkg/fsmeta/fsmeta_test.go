package fsmeta

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestCollect_RegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	content := []byte("hello metadata")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	modTime := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("failed to set mod time: %v", err)
	}

	meta, ok := Collect(path, 2)
	if !ok {
		t.Fatal("expected metadata for an existing file")
	}
	if meta.Kind != KindRegular {
		t.Errorf("expected KindRegular, got %v", meta.Kind)
	}
	if meta.Path != path {
		t.Errorf("expected path %q, got %q", path, meta.Path)
	}
	if meta.Depth != 2 {
		t.Errorf("expected depth 2, got %d", meta.Depth)
	}
	if meta.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), meta.Size)
	}
	if meta.Mtime != modTime.Unix() {
		t.Errorf("expected mtime %d, got %d", modTime.Unix(), meta.Mtime)
	}
}

func TestCollect_Directory(t *testing.T) {
	dir := t.TempDir()

	meta, ok := Collect(dir, 0)
	if !ok {
		t.Fatal("expected metadata for an existing directory")
	}
	if meta.Kind != KindDir {
		t.Errorf("expected KindDir, got %v", meta.Kind)
	}
}

func TestCollect_SymlinkNotFollowed(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	if err := os.WriteFile(target, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to write target file: %v", err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		if runtime.GOOS == "windows" && strings.Contains(err.Error(), "privilege") {
			t.Skip("creating symlinks on Windows requires elevated privileges")
		}
		t.Fatalf("failed to create symlink: %v", err)
	}

	meta, ok := Collect(link, 0)
	if !ok {
		t.Fatal("expected metadata for an existing symlink")
	}
	if meta.Kind != KindSymlink {
		t.Errorf("expected KindSymlink, got %v", meta.Kind)
	}
}

func TestCollect_MissingEntry(t *testing.T) {
	dir := t.TempDir()

	if _, ok := Collect(filepath.Join(dir, "does-not-exist"), 0); ok {
		t.Error("expected absence for a missing entry")
	}
}

func TestMtimeAfter(t *testing.T) {
	cases := []struct {
		name string
		a, b FileMetadata
		want bool
	}{
		{"newer seconds", FileMetadata{Mtime: 10}, FileMetadata{Mtime: 9}, true},
		{"older seconds", FileMetadata{Mtime: 9}, FileMetadata{Mtime: 10}, false},
		{"equal seconds newer nanos", FileMetadata{Mtime: 10, MtimeNsec: 500}, FileMetadata{Mtime: 10, MtimeNsec: 100}, true},
		{"equal seconds older nanos", FileMetadata{Mtime: 10, MtimeNsec: 100}, FileMetadata{Mtime: 10, MtimeNsec: 500}, false},
		{"identical", FileMetadata{Mtime: 10, MtimeNsec: 100}, FileMetadata{Mtime: 10, MtimeNsec: 100}, false},
		{"older seconds newer nanos", FileMetadata{Mtime: 9, MtimeNsec: 999}, FileMetadata{Mtime: 10, MtimeNsec: 0}, false},
	}
	for _, c := range cases {
		if got := c.a.MtimeAfter(c.b); got != c.want {
			t.Errorf("%s: MtimeAfter = %v, want %v", c.name, got, c.want)
		}
	}
}
