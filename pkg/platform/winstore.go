package platform

import (
	"path/filepath"

	"github.com/HaloSPV3/spv3/pkg/logging"
)

// WinStoreHalo1Path returns where the Windows Store MCC keeps halo1.dll on drive.
func WinStoreHalo1Path(drive string) string {
	return filepath.Join(drive, WinStoreRoot, WinStoreGame, Halo1Dir, Halo1Dll)
}

// FindWinStoreHalo1 returns the first drive holding the Windows Store halo1.dll.
func FindWinStoreHalo1(drives []string) (string, error) {
	for _, drive := range drives {
		candidate := WinStoreHalo1Path(drive)
		if FileExists(candidate) {
			logging.Debug("Found WinStore MCC Halo 1", "path", candidate)
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

// ScanWinStore searches every fixed drive.
func ScanWinStore() (string, error) {
	drives, err := FixedDrives()
	if err != nil {
		return "", err
	}
	return FindWinStoreHalo1(drives)
}
