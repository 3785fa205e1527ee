package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithUserWritePermission(t *testing.T) {
	cases := []struct {
		in   os.FileMode
		want os.FileMode
	}{
		{0444, 0644},
		{0000, 0200},
		{0755, 0755},
		{0200, 0200},
	}
	for _, c := range cases {
		if got := WithUserWritePermission(c.in); got != c.want {
			t.Errorf("WithUserWritePermission(%o) = %o, want %o", c.in, got, c.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}

	got, err := ExpandPath("~/mirror")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "mirror")
	if got != want {
		t.Errorf("ExpandPath(~/mirror) = %q, want %q", got, want)
	}

	plain := filepath.Join("some", "relative", "path")
	got, err = ExpandPath(plain)
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != plain {
		t.Errorf("ExpandPath(%q) = %q, expected it unchanged", plain, got)
	}
}

func TestByteCountIEC(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
	}
	for _, c := range cases {
		if got := ByteCountIEC(c.in); got != c.want {
			t.Errorf("ByteCountIEC(%d) = %q, want %q", c.in, got, c.want)
		}
	}
	if !strings.HasSuffix(ByteCountIEC(int64(3)*1024*1024*1024), "GiB") {
		t.Error("expected GiB suffix for multi-gigabyte counts")
	}
}
