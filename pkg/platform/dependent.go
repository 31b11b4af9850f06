package platform

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// AmaiSosu installs OpenSauce. It is considered installed once any of its
// marker files exists.
type AmaiSosu struct {
	Path        string
	MarkerFiles []string

	run func(path string) error
}

// NewAmaiSosu returns an installer for the executable at path.
func NewAmaiSosu(path string, markers []string) *AmaiSosu {
	return &AmaiSosu{Path: path, MarkerFiles: markers, run: runElevated}
}

// Execute runs the installer and waits for it to exit.
func (a *AmaiSosu) Execute() error {
	return a.run(a.Path)
}

// Exists reports whether the installer executable is still present.
func (a *AmaiSosu) Exists() bool {
	return FileExists(a.Path)
}

// Installed reports whether any OpenSauce marker file exists.
func (a *AmaiSosu) Installed() bool {
	for _, m := range a.MarkerFiles {
		if _, err := os.Stat(m); err == nil {
			return true
		}
	}
	return false
}

// runAndWait runs path to completion, mapping the cancelled exit code.
func runAndWait(path string) error {
	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == errorCancelled {
		return ErrCancelledByUser
	}
	return err
}
