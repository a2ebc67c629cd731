package output

import (
	"context"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/errors"

	"github.com/gofish-bot/atom-shell-fetch/log"
	"github.com/gofish-bot/atom-shell-fetch/models"
	"github.com/gofish-bot/atom-shell-fetch/stream"
)

// Written describes one entry written to disk.
type Written struct {
	Path string
	Size int64
	Mode os.FileMode
}

// Write drains s into dir and returns what it wrote, in stream order.
func Write(ctx context.Context, s *stream.Stream, dir string) ([]Written, error) {
	defer s.Close()

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	var written []Written
	for s.Next() {
		e := s.Entry()
		w, err := writeEntry(dir, e)
		if err != nil {
			return written, err
		}
		log.G(ctx).Debugf("Wrote %s", w.Path)
		written = append(written, w)
	}
	return written, s.Err()
}

func writeEntry(dir string, e models.FileEntry) (Written, error) {
	target, err := cleanJoin(dir, e.Path)
	if err != nil {
		return Written{}, errors.Wrapf(err, "entry %s", e.Path)
	}

	if e.IsDir() {
		if err := os.MkdirAll(target, os.ModePerm); err != nil {
			return Written{}, err
		}
		return Written{Path: e.Path, Mode: os.ModeDir | 0755}, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return Written{}, err
	}
	mode := e.Mode.Perm()
	if mode == 0 {
		mode = 0644
	}
	if err := ioutil.WriteFile(target, e.Contents, mode); err != nil {
		return Written{}, err
	}
	return Written{Path: e.Path, Size: int64(len(e.Contents)), Mode: mode}, nil
}

// cleanJoin resolves an archive path below root, refusing paths that try to
// leave it.
func cleanJoin(root, dest string) (string, error) {
	if strings.Contains(dest, ":") {
		return "", errors.New("path contains ':', which is illegal")
	}

	dest = strings.ReplaceAll(dest, "\\", "/")

	for _, part := range strings.Split(dest, "/") {
		if part == ".." {
			return "", errors.New("path contains '..', which is illegal")
		}
	}

	if path.IsAbs(dest) {
		return "", errors.New("path is absolute, which is illegal")
	}

	return securejoin.SecureJoin(root, dest)
}
