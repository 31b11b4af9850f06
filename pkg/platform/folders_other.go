//go:build !windows

package platform

import (
	"os"
	"path/filepath"
)

// DesktopDir returns ~/Desktop.
func DesktopDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Desktop")
}

// StartMenuProgramsDir returns the XDG applications directory.
func StartMenuProgramsDir() string {
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "applications")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "applications")
}

// ProgramFilesDirs honours the Windows variables when a Wine environment sets them.
func ProgramFilesDirs() []string {
	return compact([]string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)")})
}
