//go:build windows

package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sys/windows"

	"github.com/HaloSPV3/spv3/pkg/logging"
)

const elevatedPollInterval = 500 * time.Millisecond

// runElevated starts path through the "runas" verb and blocks until the
// process has come and gone.
func runElevated(path string) error {
	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	dir, err := windows.UTF16PtrFromString(filepath.Dir(path))
	if err != nil {
		return err
	}

	if err := windows.ShellExecute(0, verb, file, nil, dir, windows.SW_SHOWNORMAL); err != nil {
		if errors.Is(err, windows.ERROR_CANCELLED) {
			return ErrCancelledByUser
		}
		return fmt.Errorf("starting %s: %w", path, err)
	}

	exe := filepath.Base(path)
	deadline := time.Now().Add(10 * time.Second)
	for !IsRunning(exe) && time.Now().Before(deadline) {
		time.Sleep(elevatedPollInterval)
	}
	for IsRunning(exe) {
		time.Sleep(elevatedPollInterval)
	}
	logging.Debug("Elevated process exited", "exe", exe)
	return nil
}
