package release

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	ghApi "github.com/google/go-github/v26/github"
	"github.com/pkg/errors"

	"github.com/gofish-bot/atom-shell-fetch/models"
)

const releasesPage1 = `[
  {"tag_name": "v0.21.3", "prerelease": false, "assets": [
    {"name": "atom-shell-v0.21.3-darwin-x64.zip", "browser_download_url": "https://example.com/darwin.zip", "size": 42},
    {"name": "atom-shell-v0.21.3-win32-ia32.zip", "browser_download_url": "https://example.com/win32.zip", "size": 43}
  ]},
  {"tag_name": "v0.22.0-beta", "prerelease": true, "assets": []}
]`

const releasesPage2 = `[
  {"tag_name": "v0.19.5", "prerelease": false, "assets": [
    {"name": "atom-shell-v0.19.5-linux-x64.zip", "browser_download_url": "https://example.com/linux.zip", "size": 44}
  ]},
  {"tag_name": "nightly", "prerelease": true, "assets": []}
]`

func newTestResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := ghApi.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	client.BaseURL = baseURL
	return NewResolver(client)
}

func pagedReleases(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/atom/atom-shell/releases" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, releasesPage2)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/atom/atom-shell/releases?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, releasesPage1)
	}
}

func TestResolver_ResolveAsset(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		assetName string
		want      *models.ReleaseAsset
		wantErr   error
	}{
		{
			name:      "asset on first page",
			version:   "0.21.3",
			assetName: "atom-shell-v0.21.3-darwin-x64.zip",
			want: &models.ReleaseAsset{
				Name:               "atom-shell-v0.21.3-darwin-x64.zip",
				BrowserDownloadURL: "https://example.com/darwin.zip",
				Size:               42,
			},
		},
		{
			name:      "asset on second page",
			version:   "0.19.5",
			assetName: "atom-shell-v0.19.5-linux-x64.zip",
			want: &models.ReleaseAsset{
				Name:               "atom-shell-v0.19.5-linux-x64.zip",
				BrowserDownloadURL: "https://example.com/linux.zip",
				Size:               44,
			},
		},
		{
			name:      "missing release",
			version:   "9.9.9",
			assetName: "atom-shell-v9.9.9-darwin-x64.zip",
			wantErr:   models.ErrReleaseNotFound,
		},
		{
			name:      "missing asset",
			version:   "0.21.3",
			assetName: "atom-shell-v0.21.3-linux.zip",
			wantErr:   models.ErrAssetNotFound,
		},
		{
			name:      "tag match is exact",
			version:   "0.22.0",
			assetName: "atom-shell-v0.22.0-darwin-x64.zip",
			wantErr:   models.ErrReleaseNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, pagedReleases(t))
			got, err := r.ResolveAsset(context.Background(), tt.version, tt.assetName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveAsset() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveAsset() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveAsset() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolver_MetadataQueryFailed(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Bad credentials"}`, http.StatusUnauthorized)
	})
	_, err := r.ResolveAsset(context.Background(), "0.21.3", "atom-shell-v0.21.3-darwin-x64.zip")
	if !errors.Is(err, models.ErrMetadataQueryFailed) {
		t.Fatalf("ResolveAsset() error = %v, want %v", err, models.ErrMetadataQueryFailed)
	}
	var ghErr *ghApi.ErrorResponse
	if !errors.As(err, &ghErr) {
		t.Errorf("ResolveAsset() error does not keep the GitHub cause: %v", err)
	}
}

func TestResolver_Versions(t *testing.T) {
	r := newTestResolver(t, pagedReleases(t))
	releases, err := r.Versions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var tags []string
	for _, rel := range releases {
		tags = append(tags, rel.TagName)
	}
	want := []string{"v0.22.0-beta", "v0.21.3", "v0.19.5"}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Errorf("Versions() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_LatestVersion(t *testing.T) {
	r := newTestResolver(t, pagedReleases(t))
	got, err := r.LatestVersion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "0.21.3" {
		t.Errorf("LatestVersion() = %v, want 0.21.3", got)
	}
}

func Test_cleanVersion(t *testing.T) {
	tests := []struct {
		tagName string
		want    string
	}{
		{tagName: "0.21.3", want: "0.21.3"},
		{tagName: "v0.21.3", want: "0.21.3"},
		{tagName: "v0.22.0-beta", want: "0.22.0-beta"},
		{tagName: "vv1.0.0", want: "v1.0.0"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("Release '%s' gives clean version %s", tt.tagName, tt.want), func(t *testing.T) {
			if got := cleanVersion(tt.tagName); got != tt.want {
				t.Errorf("cleanVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}
