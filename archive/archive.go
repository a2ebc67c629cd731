package archive

import (
	"archive/zip"
	"context"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/gofish-bot/atom-shell-fetch/log"
	"github.com/gofish-bot/atom-shell-fetch/models"
	"github.com/gofish-bot/atom-shell-fetch/stream"
)

// Open streams the members of the zip archive at path.
func Open(ctx context.Context, path string) *stream.Stream {
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
		return Extract(ctx, path, emit)
	})
}

// Extract reads the zip archive at path and emits one entry per member, in
// archive order. Each member is fully decompressed before it is emitted and
// nothing is written to disk. Errors from emit are returned unchanged.
func Extract(ctx context.Context, path string, emit stream.Emit) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return parseError(errors.Wrapf(err, "opening %s", path))
	}
	defer r.Close()

	log.G(ctx).Debugf("Extracting %d members from %s", len(r.File), path)
	for _, f := range r.File {
		contents, err := readMember(f)
		if err != nil {
			return parseError(err)
		}
		entry := models.FileEntry{
			Path:     f.Name,
			Contents: contents,
			Mode:     f.Mode(),
		}
		if err := emit(entry); err != nil {
			return err
		}
	}
	return nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening member %s", f.Name)
	}
	defer rc.Close()

	contents, err := ioutil.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "reading member %s", f.Name)
	}
	return contents, nil
}

func parseError(err error) error {
	return models.NewError(models.ErrArchiveParseError, err)
}
