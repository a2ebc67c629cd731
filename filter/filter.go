package filter

import (
	"strings"

	"github.com/gofish-bot/atom-shell-fetch/models"
	"github.com/gofish-bot/atom-shell-fetch/stream"
)

// defaultAppPrefixes maps a platform to where its archive keeps the bundled
// default application.
var defaultAppPrefixes = map[string]string{
	"win32":  "resources/default_app",
	"darwin": "Atom.app/Contents/Resources/default_app",
}

// DefaultApp returns a predicate that drops the bundled default application
// of platform, or nil when platform has no known location for it.
func DefaultApp(platform string) stream.Predicate {
	prefix, ok := defaultAppPrefixes[platform]
	if !ok {
		return nil
	}
	return func(e models.FileEntry) bool {
		return !strings.HasPrefix(e.Path, prefix)
	}
}

// ForOptions returns the predicate opts asks for, or nil.
func ForOptions(opts models.FetchOptions) stream.Predicate {
	if !opts.ExcludeDefaultApp {
		return nil
	}
	return DefaultApp(opts.Platform)
}
