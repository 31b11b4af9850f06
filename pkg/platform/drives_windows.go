//go:build windows

package platform

import (
	"fmt"

	"github.com/yusufpapurcu/wmi"
)

// Win32_LogicalDisk is the WMI projection used for drive enumeration.
type Win32_LogicalDisk struct {
	DeviceID  string
	DriveType uint32
}

// FixedDrives lists local fixed disks as drive roots, e.g. `C:\`.
func FixedDrives() ([]string, error) {
	var disks []Win32_LogicalDisk
	if err := wmi.Query("SELECT DeviceID, DriveType FROM Win32_LogicalDisk WHERE DriveType = 3", &disks); err != nil {
		return nil, fmt.Errorf("querying logical disks: %w", err)
	}

	drives := make([]string, 0, len(disks))
	for _, d := range disks {
		drives = append(drives, d.DeviceID+`\`)
	}
	return drives, nil
}
