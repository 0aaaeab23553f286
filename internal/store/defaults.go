package store

import "embed"

//go:embed defaults/*.json
var defaultsFS embed.FS

// bundledDefaults returns the seed dataset shipped for key.
func bundledDefaults(key string) ([]byte, error) {
	return defaultsFS.ReadFile("defaults/" + key + ".json")
}
