package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gobuffalo/envy"
	"github.com/urfave/cli"

	"github.com/gofish-bot/atom-shell-fetch/cache"
	"github.com/gofish-bot/atom-shell-fetch/download"
	"github.com/gofish-bot/atom-shell-fetch/log"
	"github.com/gofish-bot/atom-shell-fetch/models"
	"github.com/gofish-bot/atom-shell-fetch/output"
	"github.com/gofish-bot/atom-shell-fetch/printer"
	"github.com/gofish-bot/atom-shell-fetch/release"
)

func main() {
	var verbose bool
	var listVersions bool
	var opts models.FetchOptions
	var owner string
	var repo string
	var out string

	cli.VersionFlag = cli.BoolFlag{
		Name:  "print-version, V",
		Usage: "print the version",
	}

	app := cli.NewApp()
	app.Name = "atom-shell-fetch"
	app.Usage = "Download an atom-shell release and unpack it"
	app.Version = "0.0.1"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "version, v",
			Usage:       "Release version without the leading v, or latest",
			Destination: &opts.Version,
		}, cli.StringFlag{
			Name:        "platform, p",
			Usage:       "Target platform (win32, darwin, linux, ...)",
			Value:       runtime.GOOS,
			Destination: &opts.Platform,
		}, cli.StringFlag{
			Name:        "cache-path",
			Usage:       "Directory release archives are cached in",
			Value:       defaultCachePath(),
			Destination: &opts.CachePath,
		}, cli.BoolFlag{
			Name:        "exclude-default-app",
			Usage:       "Leave out the bundled default_app",
			Destination: &opts.ExcludeDefaultApp,
		}, cli.StringFlag{
			Name:        "out, o",
			Usage:       "Directory to unpack into",
			Value:       "atom-shell",
			Destination: &out,
		}, cli.StringFlag{
			Name:        "owner",
			Usage:       "GitHub owner of the release repository",
			Value:       release.DefaultOwner,
			Destination: &owner,
		}, cli.StringFlag{
			Name:        "repo",
			Usage:       "GitHub release repository",
			Value:       release.DefaultRepo,
			Destination: &repo,
		}, cli.BoolFlag{
			Name:        "list-versions",
			Usage:       "List available releases and exit",
			Destination: &listVersions,
		}, cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Full debug log",
			Destination: &verbose,
		},
	}

	app.Action = func(c *cli.Context) error {
		ctx := context.Background()
		log.SetVerbose(verbose)

		resolver := release.NewResolver(release.CreateClient(ctx))
		resolver.Owner = owner
		resolver.Repo = repo

		if listVersions {
			releases, err := resolver.Versions(ctx)
			if err != nil {
				return err
			}
			printer.Releases(os.Stdout, releases)
			return nil
		}

		if opts.Version == "latest" {
			latest, err := resolver.LatestVersion(ctx)
			if err != nil {
				return err
			}
			log.G(ctx).Infof("Latest release is %s", latest)
			opts.Version = latest
		}

		d := &download.Downloader{
			Cache: &cache.Fetcher{
				Resolver: resolver,
				Client:   release.HTTPClient(ctx),
				Progress: os.Stderr,
			},
		}
		s, err := d.Download(ctx, opts)
		if err != nil {
			return err
		}

		written, err := output.Write(ctx, s, out)
		if err != nil {
			return err
		}
		printer.Entries(os.Stdout, written)
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		log.L.Fatal(err)
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return envy.Get("ATOM_SHELL_CACHE", filepath.Join(home, ".atom-shell"))
}
