package utils

import "path/filepath"

// GetPathInfo returns the absolute directory of relPath and its base name.
// Relative elements such as ../../ are resolved.
func GetPathInfo(relPath string) (parentDir string, name string, err error) {
	fullPath, err := filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return filepath.Dir(fullPath), filepath.Base(fullPath), nil
}
