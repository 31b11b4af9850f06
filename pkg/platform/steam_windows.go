//go:build windows

package platform

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// DefaultSteamExe returns the registered steam.exe, falling back to the
// stock install directory.
func DefaultSteamExe() string {
	if k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Valve\Steam`, registry.QUERY_VALUE); err == nil {
		defer k.Close()
		if dir, _, err := k.GetStringValue("InstallPath"); err == nil && dir != "" {
			return filepath.Join(dir, "steam.exe")
		}
	}
	if k, err := registry.OpenKey(registry.CURRENT_USER, `Software\Valve\Steam`, registry.QUERY_VALUE); err == nil {
		defer k.Close()
		if exe, _, err := k.GetStringValue("SteamExe"); err == nil && exe != "" {
			return filepath.FromSlash(exe)
		}
	}
	return filepath.Join(os.Getenv("ProgramFiles(x86)"), "Steam", "steam.exe")
}
