//go:build !windows

package platform

import (
	"os"
	"path/filepath"
)

// DefaultSteamExe returns where a Proton/Wine prefix usually keeps steam.exe.
func DefaultSteamExe() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".steam", "steam", "steam.exe")
}
