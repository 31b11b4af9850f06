//go:build windows

package platform

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

func knownFolder(id *windows.KNOWNFOLDERID, fallback string) string {
	path, err := windows.KnownFolderPath(id, windows.KF_FLAG_DEFAULT)
	if err != nil || path == "" {
		return fallback
	}
	return path
}

// DesktopDir returns the current user's desktop.
func DesktopDir() string {
	return knownFolder(windows.FOLDERID_Desktop, filepath.Join(os.Getenv("USERPROFILE"), "Desktop"))
}

// StartMenuProgramsDir returns the current user's Start Menu\Programs folder.
func StartMenuProgramsDir() string {
	return knownFolder(windows.FOLDERID_Programs,
		filepath.Join(os.Getenv("APPDATA"), "Microsoft", "Windows", "Start Menu", "Programs"))
}

// ProgramFilesDirs returns the native and x86 Program Files roots.
func ProgramFilesDirs() []string {
	dirs := []string{
		knownFolder(windows.FOLDERID_ProgramFiles, os.Getenv("ProgramFiles")),
		knownFolder(windows.FOLDERID_ProgramFilesX86, os.Getenv("ProgramFiles(x86)")),
	}
	return compact(dirs)
}
