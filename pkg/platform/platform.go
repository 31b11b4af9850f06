// Package platform locates Halo installations on the host and wraps the
// host facilities the installer drives: shortcuts, prompts and child processes.
package platform

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

var (
	// ErrNotFound is returned when a probe finds no matching installation.
	ErrNotFound = errors.New("not found")

	// ErrCancelledByUser is returned when the user declines an elevation prompt.
	ErrCancelledByUser = errors.New("the operation was canceled by the user")
)

// Layout of the Master Chief Collection's Halo 1 module.
const (
	MccFolder    = "Halo The Master Chief Collection"
	Halo1Dir     = "halo1"
	Halo1Dll     = "halo1.dll"
	WinStoreRoot = "ModifiableWindowsApps"
	WinStoreGame = "HaloMCC"
)

// errorCancelled is the Win32 ERROR_CANCELLED code, also used as an exit code
// by elevated launchers when the prompt is dismissed.
const errorCancelled = 1223

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Start launches an executable from its own directory without waiting for it.
func Start(path string) error {
	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
