package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/go-yaml/yaml"
	"github.com/gobuffalo/envy"
	"github.com/sirupsen/logrus"
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

	var clean bool
	var verbose bool
	var target string
	var config string
	var cachePath string

	app := cli.NewApp()
	app.Name = "atom-shell-batch"
	app.Usage = "Download and unpack every atom-shell release listed in a config file"
	app.Version = "0.0.1"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "config",
			Usage:       "YAML list of downloads",
			Value:       "config/downloads.yaml",
			Destination: &config,
		}, cli.StringFlag{
			Name:        "target",
			Usage:       "Download only one entry, by name",
			Destination: &target,
		}, cli.StringFlag{
			Name:        "cache-path",
			Usage:       "Directory release archives are cached in",
			Value:       envy.Get("ATOM_SHELL_CACHE", filepath.Join(os.TempDir(), "atom-shell-cache")),
			Destination: &cachePath,
		}, cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Full debug log",
			Destination: &verbose,
		}, cli.BoolFlag{
			Name:        "clean, c",
			Usage:       "Clear all cached archives first",
			Destination: &clean,
		},
	}

	app.Action = func(c *cli.Context) error {
		ctx := context.Background()
		log.SetVerbose(verbose)

		if clean {
			if err := clearDir(cachePath); err != nil && !os.IsNotExist(err) {
				return err
			}
		}

		downloads, err := getDownloads(config, target)
		if err != nil {
			return err
		}

		d := &download.Downloader{
			Cache: &cache.Fetcher{
				Resolver: release.NewResolver(release.CreateClient(ctx)),
				Client:   release.HTTPClient(ctx),
			},
		}

		failed := 0
		for _, dl := range downloads {
			if err := fetch(ctx, d, dl, cachePath); err != nil {
				log.G(ctx).Warnf("Error in handling %s: %v", dl.Name, err)
				failed++
			}
		}
		if failed > 0 {
			return cli.NewExitError(fmt.Sprintf("%d of %d downloads failed", failed, len(downloads)), 1)
		}
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		log.L.Fatal(err)
	}
}

func fetch(ctx context.Context, d *download.Downloader, dl models.DesiredDownload, cachePath string) error {
	ctx = log.WithFields(ctx, logrus.Fields{"name": dl.Name})
	log.G(ctx).Infof("## Fetching atom-shell %s for %s", dl.Version, dl.Platform)

	s, err := d.Download(ctx, models.FetchOptions{
		Version:           dl.Version,
		Platform:          dl.Platform,
		CachePath:         cachePath,
		ExcludeDefaultApp: dl.ExcludeDefaultApp,
	})
	if err != nil {
		return err
	}

	written, err := output.Write(ctx, s, dl.Out)
	if err != nil {
		return err
	}
	printer.Entries(os.Stdout, written)
	return nil
}

func getDownloads(path, target string) ([]models.DesiredDownload, error) {

	c := []models.DesiredDownload{}

	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		return nil, fmt.Errorf("Unmarshal %s: %v", path, err)
	}

	for i, dl := range c {
		if dl.Name == "" {
			dl.Name = fmt.Sprintf("atom-shell-%s-%s", dl.Platform, dl.Version)
		}
		if dl.Out == "" {
			dl.Out = dl.Name
		}
		c[i] = dl
	}

	if target == "" {
		return c, nil
	}

	for _, dl := range c {
		if dl.Name == target {
			return []models.DesiredDownload{dl}, nil
		}
	}

	return []models.DesiredDownload{}, nil
}

func clearDir(dir string) error {
	log.L.Debugf("Cleaning: %s", dir)
	names, err := ioutil.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range names {
		file := path.Join([]string{dir, entry.Name()}...)
		log.L.Debugf(" - deleting: %s", file)
		os.RemoveAll(file)
	}
	return nil
}
