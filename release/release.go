package release

import (
	"context"
	"sort"
	"strings"

	"github.com/blang/semver"
	ghApi "github.com/google/go-github/v26/github"
	"github.com/pkg/errors"

	"github.com/gofish-bot/atom-shell-fetch/log"
	"github.com/gofish-bot/atom-shell-fetch/models"
)

const (
	DefaultOwner = "atom"
	DefaultRepo  = "atom-shell"
)

// Resolver finds release assets of one GitHub repository.
type Resolver struct {
	Client *ghApi.Client
	Owner  string
	Repo   string
}

func NewResolver(client *ghApi.Client) *Resolver {
	return &Resolver{Client: client, Owner: DefaultOwner, Repo: DefaultRepo}
}

// ListReleases returns every release of the repository, newest first as
// GitHub orders them.
func (r *Resolver) ListReleases(ctx context.Context) ([]models.Release, error) {
	var releaseList []*ghApi.RepositoryRelease
	opt := &ghApi.ListOptions{PerPage: 100}
	for {
		releases, resp, err := r.Client.Repositories.ListReleases(ctx, r.Owner, r.Repo, opt)
		if err != nil {
			return nil, models.NewError(models.ErrMetadataQueryFailed,
				errors.Wrapf(err, "listing releases of %s/%s", r.Owner, r.Repo))
		}
		releaseList = append(releaseList, releases...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	log.G(ctx).Debugf("Found %d releases of %s/%s", len(releaseList), r.Owner, r.Repo)

	out := make([]models.Release, 0, len(releaseList))
	for _, rel := range releaseList {
		out = append(out, toRelease(rel))
	}
	return out, nil
}

// ResolveAsset returns the asset called assetName in the release tagged
// "v"+version.
func (r *Resolver) ResolveAsset(ctx context.Context, version, assetName string) (*models.ReleaseAsset, error) {
	releases, err := r.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	release := findRelease(releases, "v"+version)
	if release == nil {
		return nil, models.NewError(models.ErrReleaseNotFound,
			errors.Errorf("atom-shell release %s not found", version))
	}

	asset := findAsset(release.Assets, assetName)
	if asset == nil {
		return nil, models.NewError(models.ErrAssetNotFound,
			errors.Errorf("no asset %s in release %s", assetName, release.TagName))
	}
	log.G(ctx).Debugf("Resolved %s to %s", assetName, asset.BrowserDownloadURL)
	return asset, nil
}

// Versions returns the semver-parsable release versions, newest first.
func (r *Resolver) Versions(ctx context.Context) ([]models.Release, error) {
	releases, err := r.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	type parsed struct {
		version semver.Version
		release models.Release
	}
	var list []parsed
	for _, rel := range releases {
		v, err := semver.Make(cleanVersion(rel.TagName))
		if err != nil {
			log.G(ctx).Debugf("Skipping release %s: %v", rel.TagName, err)
			continue
		}
		list = append(list, parsed{version: v, release: rel})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].version.GT(list[j].version)
	})

	out := make([]models.Release, 0, len(list))
	for _, p := range list {
		out = append(out, p.release)
	}
	return out, nil
}

// LatestVersion returns the newest version that is neither a GitHub
// prerelease nor a semver prerelease.
func (r *Resolver) LatestVersion(ctx context.Context) (string, error) {
	releases, err := r.Versions(ctx)
	if err != nil {
		return "", err
	}
	for _, rel := range releases {
		v := cleanVersion(rel.TagName)
		if rel.Prerelease || strings.Contains(v, "-") {
			continue
		}
		return v, nil
	}
	return "", models.NewError(models.ErrReleaseNotFound,
		errors.Errorf("no stable release of %s/%s", r.Owner, r.Repo))
}

func findRelease(releases []models.Release, tag string) *models.Release {
	for i := range releases {
		if releases[i].TagName == tag {
			return &releases[i]
		}
	}
	return nil
}

func findAsset(assets []models.ReleaseAsset, name string) *models.ReleaseAsset {
	for i := range assets {
		if assets[i].Name == name {
			return &assets[i]
		}
	}
	return nil
}

func cleanVersion(tagName string) string {
	return strings.TrimPrefix(tagName, "v")
}

func toRelease(rel *ghApi.RepositoryRelease) models.Release {
	out := models.Release{
		TagName:    rel.GetTagName(),
		Prerelease: rel.GetPrerelease(),
		Assets:     make([]models.ReleaseAsset, 0, len(rel.Assets)),
	}
	for _, a := range rel.Assets {
		out.Assets = append(out.Assets, models.ReleaseAsset{
			Name:               a.GetName(),
			BrowserDownloadURL: a.GetBrowserDownloadURL(),
			Size:               int64(a.GetSize()),
		})
	}
	return out
}
