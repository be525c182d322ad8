// Package configpaths resolves where padrelay looks for its config files.
package configpaths

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "padrelay"

// DefaultConfigDir returns the per-user config directory.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

// ConfigCandidatePaths lists config files in priority order, split by
// format. An explicit userCfg is placed first in the list matching its
// extension; without an extension it is tried as every format.
func ConfigCandidatePaths(userCfg string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userCfg != "" {
		switch strings.ToLower(filepath.Ext(userCfg)) {
		case ".json":
			jsonPaths = append(jsonPaths, userCfg)
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userCfg)
		case ".toml":
			tomlPaths = append(tomlPaths, userCfg)
		default:
			jsonPaths = append(jsonPaths, userCfg)
			yamlPaths = append(yamlPaths, userCfg)
			tomlPaths = append(tomlPaths, userCfg)
		}
	}

	var dirs []string
	if dir, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := SystemConfigDir(); err == nil && !contains(dirs, dir) {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		jsonPaths = append(jsonPaths, filepath.Join(dir, "config.json"))
		yamlPaths = append(yamlPaths, filepath.Join(dir, "config.yaml"), filepath.Join(dir, "config.yml"))
		tomlPaths = append(tomlPaths, filepath.Join(dir, "config.toml"))
	}
	return jsonPaths, yamlPaths, tomlPaths
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
