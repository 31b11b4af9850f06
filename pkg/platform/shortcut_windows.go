//go:build windows

package platform

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

func createShortcut(s Shortcut) error {
	if err := ole.CoInitialize(0); err != nil {
		return fmt.Errorf("failed to initialize COM: %w", err)
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("failed to create WScript.Shell: %w", err)
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("failed to query shell interface: %w", err)
	}
	defer shell.Release()

	link, err := oleutil.CallMethod(shell, "CreateShortcut", s.Path)
	if err != nil {
		return fmt.Errorf("failed to create shortcut: %w", err)
	}
	linkDisp := link.ToIDispatch()
	defer linkDisp.Release()

	props := []struct {
		name  string
		value string
	}{
		{"TargetPath", s.Target},
		{"WorkingDirectory", s.WorkingDirectory},
		{"Description", s.Description},
	}
	for _, p := range props {
		if _, err := oleutil.PutProperty(linkDisp, p.name, p.value); err != nil {
			return fmt.Errorf("failed to set shortcut %s: %w", p.name, err)
		}
	}

	if _, err := oleutil.CallMethod(linkDisp, "Save"); err != nil {
		return fmt.Errorf("failed to save shortcut: %w", err)
	}
	return nil
}
