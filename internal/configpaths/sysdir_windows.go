//go:build windows

package configpaths

// SystemConfigDir returns the directory a system service reads its config
// from.
func SystemConfigDir() (string, error) {
	return DefaultConfigDir()
}
