//go:build !darwin && !linux

package storage

// Filesystem type cannot be detected here; treat the path as local.
func detectFilesystemType(path string) (string, error) {
	return "unknown", nil
}
