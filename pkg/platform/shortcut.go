package platform

import (
	"os"
	"path/filepath"
)

// Shortcut describes a .lnk file to create.
type Shortcut struct {
	Path             string
	Target           string
	WorkingDirectory string
	Description      string
}

// ShellShortcuts creates shortcuts through the Windows shell.
type ShellShortcuts struct{}

// Create writes the shortcut, creating its parent directory first.
func (ShellShortcuts) Create(s Shortcut) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	return createShortcut(s)
}
