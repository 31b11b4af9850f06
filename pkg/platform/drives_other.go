//go:build !windows

package platform

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// FixedDrives lists the mount points of physical partitions.
func FixedDrives() ([]string, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	drives := make([]string, 0, len(parts))
	for _, p := range parts {
		drives = append(drives, p.Mountpoint)
	}
	return drives, nil
}
