//go:build !windows

package deploy

import "github.com/HaloSPV3/spv3/pkg/logging"

// compressDir is a no-op outside NTFS.
func compressDir(dir string) error {
	logging.Warn("Filesystem compression is not supported on this platform", "dir", dir)
	return nil
}
