package cache

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/gofish-bot/atom-shell-fetch/locator"
	"github.com/gofish-bot/atom-shell-fetch/log"
	"github.com/gofish-bot/atom-shell-fetch/models"
)

const lockRetryDelay = 250 * time.Millisecond

// AssetResolver looks up the download location of a release asset.
type AssetResolver interface {
	ResolveAsset(ctx context.Context, version, assetName string) (*models.ReleaseAsset, error)
}

// Fetcher keeps release archives under a local cache directory and only
// talks to the network when an archive is missing.
type Fetcher struct {
	Resolver AssetResolver
	Client   *http.Client
	// Progress receives a download progress bar when set.
	Progress io.Writer
}

// EnsureCached returns the path of the cached archive for opts, downloading
// it first on a cache miss. A file at the returned path is always complete:
// downloads go to a temporary file that is renamed into place.
func (f *Fetcher) EnsureCached(ctx context.Context, opts models.FetchOptions) (string, error) {
	loc := locator.Locate(opts.Version, opts.Platform, opts.CachePath)
	ctx = log.WithFields(ctx, logrus.Fields{"asset": loc.AssetName})

	if exists(loc.Path) {
		log.G(ctx).Debugf("Getting from cache: %s", loc.Path)
		return loc.Path, nil
	}

	asset, err := f.Resolver.ResolveAsset(ctx, opts.Version, loc.AssetName)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(loc.Path), os.ModePerm); err != nil {
		return "", models.NewError(models.ErrCacheWriteFailed, errors.Wrap(err, "creating cache directory"))
	}

	fileLock := flock.New(loc.Path + ".lock")
	if _, err := fileLock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return "", models.NewError(models.ErrCacheWriteFailed, errors.Wrapf(err, "locking %s", loc.Path))
	}
	defer fileLock.Unlock()

	if exists(loc.Path) {
		log.G(ctx).Debugf("Cached by another process while waiting: %s", loc.Path)
		return loc.Path, nil
	}

	if err := f.download(ctx, asset.BrowserDownloadURL, loc.Path); err != nil {
		return "", err
	}
	return loc.Path, nil
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	log.G(ctx).Debugf("Downloading: %s to %s", url, dest)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return models.NewError(models.ErrDownloadFailed, err)
	}

	resp, err := f.client().Do(req.WithContext(ctx))
	if err != nil {
		return models.NewError(models.ErrDownloadFailed, errors.Wrapf(err, "downloading %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.NewError(models.ErrDownloadFailed, errors.Errorf("downloading %s: %s", url, resp.Status))
	}

	tmp, err := ioutil.TempFile(filepath.Dir(dest), filepath.Base(dest)+".*.partial")
	if err != nil {
		return models.NewError(models.ErrCacheWriteFailed, errors.Wrap(err, "creating temporary file"))
	}
	published := false
	defer func() {
		if !published {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	out := &recordingWriter{w: tmp}
	var w io.Writer = out
	if f.Progress != nil {
		w = io.MultiWriter(out, f.progressBar(resp.ContentLength, filepath.Base(dest)))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		if out.err != nil {
			return models.NewError(models.ErrCacheWriteFailed, errors.Wrapf(out.err, "writing %s", tmp.Name()))
		}
		return models.NewError(models.ErrDownloadFailed, errors.Wrapf(err, "downloading %s", url))
	}
	if err := tmp.Close(); err != nil {
		return models.NewError(models.ErrCacheWriteFailed, errors.Wrapf(err, "writing %s", tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return models.NewError(models.ErrCacheWriteFailed, errors.Wrapf(err, "publishing %s", dest))
	}
	published = true

	log.G(ctx).Infof("Downloaded %s (%s)", filepath.Base(dest), humanize.Bytes(uint64(n)))
	return nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func (f *Fetcher) progressBar(size int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(f.Progress),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(description),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			io.WriteString(f.Progress, "\n")
		}),
	)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// recordingWriter remembers the first write error so a failed copy can be
// blamed on the cache rather than the network.
type recordingWriter struct {
	w   io.Writer
	err error
}

func (r *recordingWriter) Write(p []byte) (int, error) {
	n, err := r.w.Write(p)
	if err != nil && r.err == nil {
		r.err = err
	}
	return n, err
}
