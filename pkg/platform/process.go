package platform

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/HaloSPV3/spv3/pkg/logging"
)

// GameProcess identifies which Halo build is running.
type GameProcess int

const (
	ProcessUnknown GameProcess = iota
	ProcessRetail
	ProcessHCE
	ProcessSteam
	ProcessStoreOld
)

func (g GameProcess) String() string {
	switch g {
	case ProcessRetail:
		return "Retail"
	case ProcessHCE:
		return "HCE"
	case ProcessSteam:
		return "Steam"
	case ProcessStoreOld:
		return "StoreOld"
	default:
		return "Unknown"
	}
}

// gameProcesses maps executable names to builds, checked in this order.
var gameProcesses = []struct {
	name string
	kind GameProcess
}{
	{"haloce.exe", ProcessHCE},
	{"halo.exe", ProcessRetail},
	{"mcc-win64-shipping.exe", ProcessSteam},
	{"mccwinstore-win64-shipping.exe", ProcessStoreOld},
}

// ProcessProber infers the running game from the process table.
type ProcessProber struct {
	list func() ([]string, error)
}

// NewProcessProber returns a prober backed by the live process list.
func NewProcessProber() *ProcessProber {
	return &ProcessProber{list: processNames}
}

func processNames() ([]string, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// InferRunningGame returns the first matching build, or ProcessUnknown.
func (p *ProcessProber) InferRunningGame() (GameProcess, error) {
	names, err := p.list()
	if err != nil {
		return ProcessUnknown, err
	}

	running := make(map[string]bool, len(names))
	for _, n := range names {
		running[strings.ToLower(n)] = true
	}
	for _, gp := range gameProcesses {
		if running[gp.name] {
			logging.Debug("Found running game", "process", gp.name, "kind", gp.kind.String())
			return gp.kind, nil
		}
	}
	return ProcessUnknown, nil
}

// IsRunning reports whether a process with the given executable name exists.
func IsRunning(exe string) bool {
	names, err := processNames()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return false
	}
	for _, n := range names {
		if strings.EqualFold(n, exe) {
			return true
		}
	}
	return false
}
