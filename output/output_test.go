package output

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gofish-bot/atom-shell-fetch/models"
	"github.com/gofish-bot/atom-shell-fetch/stream"
)

func streamOf(list ...models.FileEntry) *stream.Stream {
	return stream.New(context.Background(), func(ctx context.Context, emit stream.Emit) error {
		for _, e := range list {
			if err := emit(e); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	s := streamOf(
		models.FileEntry{Path: "Atom.app/", Mode: os.ModeDir | 0755},
		models.FileEntry{Path: "Atom.app/Contents/MacOS/Atom", Contents: []byte("binary"), Mode: 0755},
		models.FileEntry{Path: "version", Contents: []byte("v0.21.3")},
		models.FileEntry{Path: "empty", Contents: nil, Mode: 0600},
	)

	got, err := Write(context.Background(), s, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []Written{
		{Path: "Atom.app/", Mode: os.ModeDir | 0755},
		{Path: "Atom.app/Contents/MacOS/Atom", Size: 6, Mode: 0755},
		{Path: "version", Size: 7, Mode: 0644},
		{Path: "empty", Size: 0, Mode: 0600},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Write() mismatch (-want +got):\n%s", diff)
	}

	contents, err := ioutil.ReadFile(filepath.Join(dir, "Atom.app", "Contents", "MacOS", "Atom"))
	if err != nil {
		t.Fatal(err)
	}
	if string(contents) != "binary" {
		t.Errorf("contents = %q, want %q", contents, "binary")
	}
}

func TestWrite_RejectsEscapingPaths(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "parent reference", path: "../outside"},
		{name: "nested parent reference", path: "resources/../../outside"},
		{name: "absolute", path: "/etc/passwd"},
		{name: "windows drive", path: "C:/Windows/system32"},
		{name: "backslash parent", path: "..\\outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "out")
			_, err := Write(context.Background(), streamOf(models.FileEntry{Path: tt.path, Contents: []byte("x")}), dir)
			if err == nil {
				t.Fatalf("Write(%s) succeeded, want error", tt.path)
			}
			if _, err := os.Stat(filepath.Join(root, "outside")); !os.IsNotExist(err) {
				t.Errorf("file written outside the target directory")
			}
		})
	}
}
