package locator

import (
	"fmt"
	"path/filepath"
)

// Product is the asset name prefix used by atom-shell releases.
const Product = "atom-shell"

var platformNames = map[string]string{
	"win32":  "win32-ia32",
	"darwin": "darwin-x64",
}

type Location struct {
	AssetName string
	Path      string
}

// MapPlatform returns the platform string used in asset names. Platforms
// without a mapping are returned unchanged.
func MapPlatform(platform string) string {
	if mapped, ok := platformNames[platform]; ok {
		return mapped
	}
	return platform
}

func AssetName(version, platform string) string {
	return fmt.Sprintf("%s-v%s-%s.zip", Product, version, MapPlatform(platform))
}

// Locate computes the asset name and the file it is cached at:
// <cacheDir>/<version>/<assetName>.
func Locate(version, platform, cacheDir string) Location {
	name := AssetName(version, platform)
	return Location{
		AssetName: name,
		Path:      filepath.Join(cacheDir, version, name),
	}
}
