package install

import (
	"github.com/HaloSPV3/spv3/pkg/detect"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/progress"
	"github.com/HaloSPV3/spv3/pkg/validate"
)

// Deployer copies the source tree to the target.
type Deployer interface {
	Install(source, destination string, sink progress.Sink, compress bool) error
}

// Patcher edits the deployed game executable. A missing executable is
// reported as fs.ErrNotExist.
type Patcher interface {
	ApplyPatches(flags patch.Flags, exe string) error
}

// DependentPackage is an installer that must complete after deployment.
type DependentPackage interface {
	Execute() error
	Exists() bool
	Installed() bool
}

// GameProber infers the running Halo build.
type GameProber interface {
	InferRunningGame() (platform.GameProcess, error)
}

// ShortcutCreator writes shell shortcuts.
type ShortcutCreator interface {
	Create(platform.Shortcut) error
}

// TextLog is an append-only diagnostic sink.
type TextLog interface {
	AppendText(text string)
}

// TargetValidator judges install targets.
type TargetValidator interface {
	Validate(path string) validate.Result
}

// PlatformDetector finds the installed Halo build.
type PlatformDetector interface {
	SetHints(steamExe, halo1Path string)
	Detect() detect.State
	ProbeSteam(exe string) detect.Probe
	ProbeWinStore(drive string) detect.Probe
}

type nopLog struct{}

func (nopLog) AppendText(string) {}
