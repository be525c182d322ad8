//go:build !windows

package configpaths

import (
	"os"
	"path/filepath"
)

// SystemConfigDir returns the directory a system service reads its config
// from. On Unix, root services use /etc/padrelay.
func SystemConfigDir() (string, error) {
	if os.Geteuid() == 0 {
		return filepath.Join(string(os.PathSeparator), "etc", appDir), nil
	}
	return DefaultConfigDir()
}
