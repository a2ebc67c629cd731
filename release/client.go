package release

import (
	"context"
	"net/http"

	"github.com/gobuffalo/envy"
	ghApi "github.com/google/go-github/v26/github"
	"golang.org/x/oauth2"

	"github.com/gofish-bot/atom-shell-fetch/log"
)

// HTTPClient returns a client that authenticates with GITHUB_TOKEN when it is
// set. Anonymous access works for public releases but is rate limited.
func HTTPClient(ctx context.Context) *http.Client {
	token := envy.Get("GITHUB_TOKEN", "")
	if token == "" {
		log.G(ctx).Debug("GITHUB_TOKEN not set, using anonymous GitHub access")
		return http.DefaultClient
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return oauth2.NewClient(ctx, ts)
}

func CreateClient(ctx context.Context) *ghApi.Client {
	return ghApi.NewClient(HTTPClient(ctx))
}
