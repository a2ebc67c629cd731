package models

import (
	"os"

	"github.com/pkg/errors"
)

// FetchOptions selects exactly one archive: Version and Platform pick the
// release asset, CachePath is the directory the archive is kept under.
type FetchOptions struct {
	Version           string
	Platform          string
	CachePath         string
	ExcludeDefaultApp bool
}

// Validate reports the first required option that is missing.
func (o FetchOptions) Validate() error {
	switch {
	case o.Version == "":
		return NewError(ErrInvalidOptions, errors.New("missing option: version"))
	case o.Platform == "":
		return NewError(ErrInvalidOptions, errors.New("missing option: platform"))
	case o.CachePath == "":
		return NewError(ErrInvalidOptions, errors.New("missing option: cachePath"))
	}
	return nil
}

// DesiredDownload is one entry of the batch config file.
type DesiredDownload struct {
	Name              string `yaml:"name"`
	Version           string `yaml:"version"`
	Platform          string `yaml:"platform"`
	ExcludeDefaultApp bool   `yaml:"excludeDefaultApp"`
	Out               string `yaml:"out"`
}

type Release struct {
	TagName    string
	Prerelease bool
	Assets     []ReleaseAsset
}

type ReleaseAsset struct {
	Name               string
	BrowserDownloadURL string
	Size               int64
}

// FileEntry is one archive member, fully read into memory. Path is relative
// to the archive root and uses forward slashes.
type FileEntry struct {
	Path     string
	Contents []byte
	Mode     os.FileMode
}

func (e FileEntry) IsDir() bool {
	return e.Mode.IsDir() || (len(e.Path) > 0 && e.Path[len(e.Path)-1] == '/')
}
