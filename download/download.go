package download

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gofish-bot/atom-shell-fetch/archive"
	"github.com/gofish-bot/atom-shell-fetch/filter"
	"github.com/gofish-bot/atom-shell-fetch/log"
	"github.com/gofish-bot/atom-shell-fetch/models"
	"github.com/gofish-bot/atom-shell-fetch/stream"
)

// Cache makes a release archive available on local disk.
type Cache interface {
	EnsureCached(ctx context.Context, opts models.FetchOptions) (string, error)
}

type Downloader struct {
	Cache Cache
}

// Download validates opts and returns a stream over the members of the
// selected release archive. Missing options are reported here; every other
// failure ends the stream.
func (d *Downloader) Download(ctx context.Context, opts models.FetchOptions) (*stream.Stream, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ctx = log.WithFields(ctx, logrus.Fields{
		"version":  opts.Version,
		"platform": opts.Platform,
	})

	s := stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
		path, err := d.Cache.EnsureCached(ctx, opts)
		if err != nil {
			return err
		}
		return archive.Extract(ctx, path, emit)
	})
	return stream.Filter(s, filter.ForOptions(opts)), nil
}
