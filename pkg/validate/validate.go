// Package validate decides whether a directory is an acceptable install target.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/HaloSPV3/spv3/pkg/config"
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/platform"
)

// User facing results.
const (
	SSDAdvisory     = "SPV3 must be installed to an SSD. Otherwise, you will experience loading hitches."
	MsgInvalidPath  = "Enter a valid path."
	MsgProgramFiles = "The game does not function correctly when install to Program Files. Please choose a difference location."
	MsgReservedTree = "SPV3 does not run on MCC and it does not alter any game files within MCC.\nIt is a stand alone program built on top of Halo Custom Edition."
)

const (
	probeFileName     = "io.bin"
	probeFileLength   = 8
	tempSpaceFormat   = "Not enough disk space (%dGB required) on the %s drive. Clear junk files using Disk Cleanup or allocate more space to the volume"
	targetSpaceFormat = "Not enough disk space (%dGB required) at selected path: %s"
)

// Result is the outcome of a validation pass.
type Result struct {
	OK      bool
	Message string
}

func invalid(msg string) Result { return Result{Message: msg} }

// TextLog receives full error detail.
type TextLog interface {
	AppendText(text string)
}

// Env holds the host facts validation depends on.
type Env struct {
	FreeSpace     func(path string) (uint64, error)
	TempDir       string
	WorkingDir    string
	ProgramFiles  []string
	Reserved      []string
	MinTempFree   uint64
	MinTargetFree uint64
	Exceptions    TextLog
}

// FreeSpace returns the bytes available to the caller on the volume holding path.
func FreeSpace(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// DefaultEnv builds an Env for the running host from cfg.
func DefaultEnv(cfg *config.Configuration, exceptions TextLog) Env {
	cwd, _ := os.Getwd()
	programFiles := cfg.ProgramFilesDirs
	if len(programFiles) == 0 {
		programFiles = platform.ProgramFilesDirs()
	}
	return Env{
		FreeSpace:     FreeSpace,
		TempDir:       os.TempDir(),
		WorkingDir:    cwd,
		ProgramFiles:  programFiles,
		Reserved:      cfg.ReservedSubstrings,
		MinTempFree:   cfg.MinTempFreeBytes,
		MinTargetFree: cfg.MinTargetFreeBytes,
		Exceptions:    exceptions,
	}
}

// Validator checks candidate install targets.
type Validator struct {
	env Env
}

// New returns a Validator for env.
func New(env Env) *Validator {
	if env.FreeSpace == nil {
		env.FreeSpace = FreeSpace
	}
	if env.MinTempFree == 0 {
		env.MinTempFree = config.DefaultMinTempFree
	}
	if env.MinTargetFree == 0 {
		env.MinTargetFree = config.DefaultMinTargetFree
	}
	return &Validator{env: env}
}

// Validate applies the rules in order; the first failure wins.
func (v *Validator) Validate(path string) Result {
	if path == "" || !filepath.IsAbs(path) || !isDir(volumeRoot(path)) {
		return invalid(MsgInvalidPath)
	}

	path = filepath.Clean(path)
	if !isDir(path) {
		existing, ok := v.nearestExisting(path)
		if !ok {
			return invalid(MsgInvalidPath)
		}
		path = existing
	}

	if err := writeProbe(path); err != nil {
		msg := fmt.Sprintf("Installation not possible at selected path: %s\n Error: %v\n", path, err)
		v.exception(msg)
		logging.Warn("Target write probe failed", "path", path, "error", err)
		return invalid(msg)
	}

	for _, dir := range v.env.ProgramFiles {
		if dir != "" && hasPathPrefix(path, dir) {
			return invalid(MsgProgramFiles)
		}
	}

	for _, reserved := range v.env.Reserved {
		if reserved != "" && strings.Contains(strings.ToLower(path), strings.ToLower(reserved)) {
			return invalid(MsgReservedTree)
		}
	}

	return v.checkSpace(path)
}

// nearestExisting walks up from path until a directory exists. Reaching the
// working directory counts as failure.
func (v *Validator) nearestExisting(path string) (string, bool) {
	for !isDir(path) {
		parent := filepath.Dir(path)
		if parent == path {
			return "", false
		}
		path = parent
		if v.env.WorkingDir != "" && samePath(path, v.env.WorkingDir) {
			return "", false
		}
	}
	return path, true
}

func (v *Validator) checkSpace(path string) Result {
	tempRoot := volumeRoot(v.env.TempDir)
	free, err := v.env.FreeSpace(v.env.TempDir)
	if err != nil {
		return v.spaceError(err)
	}
	if free < v.env.MinTempFree {
		logging.Info("Insufficient temp space", "drive", tempRoot, "free", free, "required", v.env.MinTempFree)
		return invalid(fmt.Sprintf(tempSpaceFormat, gigabytes(v.env.MinTempFree), tempRoot))
	}

	free, err = v.env.FreeSpace(path)
	if err != nil {
		return v.spaceError(err)
	}
	if free < v.env.MinTargetFree {
		logging.Info("Insufficient target space", "path", path, "free", free, "required", v.env.MinTargetFree)
		return invalid(fmt.Sprintf(targetSpaceFormat, gigabytes(v.env.MinTargetFree), path))
	}

	return Result{OK: true, Message: SSDAdvisory}
}

func (v *Validator) spaceError(err error) Result {
	msg := fmt.Sprintf("Failed to get drive space.\n Error: %v\n", err)
	v.exception(msg)
	logging.Error("Failed to get drive space", "error", err)
	return invalid(msg)
}

func (v *Validator) exception(msg string) {
	if v.env.Exceptions != nil {
		v.env.Exceptions.AppendText(msg)
	}
}

func writeProbe(dir string) error {
	probe := filepath.Join(dir, probeFileName)
	if err := os.WriteFile(probe, make([]byte, probeFileLength), 0644); err != nil {
		return err
	}
	return os.Remove(probe)
}

func gigabytes(n uint64) uint64 {
	return n >> 30
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// volumeRoot returns `C:\` for Windows paths and `/` elsewhere.
func volumeRoot(path string) string {
	return filepath.VolumeName(path) + string(filepath.Separator)
}

func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

func hasPathPrefix(path, dir string) bool {
	path, dir = strings.ToLower(filepath.Clean(path)), strings.ToLower(filepath.Clean(dir))
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
