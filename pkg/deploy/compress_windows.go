//go:build windows

package deploy

import (
	"fmt"
	"os/exec"
	"syscall"

	"github.com/HaloSPV3/spv3/pkg/logging"
)

// compressDir enables NTFS compression on dir and everything below it.
func compressDir(dir string) error {
	cmd := exec.Command("compact.exe", "/C", "/S:"+dir, "/I", "/Q")
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("compact.exe: %w: %s", err, out)
	}
	logging.Debug("Compressed destination", "dir", dir)
	return nil
}
