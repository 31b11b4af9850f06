// Package install drives an SPV3 installation: target validation, platform
// detection, DRM bypass activation and the asynchronous commit.
package install

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/HaloSPV3/spv3/pkg/config"
	"github.com/HaloSPV3/spv3/pkg/detect"
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/settings"
	"github.com/HaloSPV3/spv3/pkg/validate"
)

// ErrBusy is returned by calls that would reopen installation while a commit
// is in flight.
var ErrBusy = errors.New("installation in progress")

// Status lines not owned by a collaborator.
const (
	MsgManifestMissing = "Could not find manifest in the data directory."
	MsgNeedsLegalCopy  = "Please install a legal copy of Halo 1 before installing SPV3."
	MsgProcessHalo     = "Process Detection: Halo PC/CE Found"
	MsgProcessMCC      = "Process Detection: MCC CEA Found"
	MsgProcessNone     = "Process Detection: No Matching Processes\nNo MCC (with CEA), HPC, or HCE processes found."
	MsgProcessFailed   = "Failed to infer Halo process."
	MsgSetupFailed     = "Failed to install Halo Custom Edition."
	initialSteamStatus = "Find Steam.exe or its shortcut and we'll do the rest!"
)

// Options carries the collaborators of an Orchestrator.
type Options struct {
	Config     *config.Configuration
	Settings   settings.Store
	Validator  TargetValidator
	Detector   PlatformDetector
	Deployer   Deployer
	Patcher    Patcher
	Prober     GameProber
	Shortcuts  ShortcutCreator
	Prompter   platform.Prompter
	InstallLog TextLog
	Exceptions TextLog

	// NewPackage returns the dependent package for a target directory.
	NewPackage func(target string) DependentPackage
	// Start launches an executable without waiting.
	Start func(path string) error

	DesktopDir   string
	StartMenuDir string
}

// Orchestrator owns the install Status and serializes every change to it.
type Orchestrator struct {
	opts Options
	cfg  *config.Configuration

	probeMu sync.Mutex

	mu         sync.Mutex
	status     Status
	committing bool
	target     string
	steamExe   string
	halo1Path  string
	flags      patch.Flags
	observers  []Observer
}

// New returns an Orchestrator whose queued patch flags are loaded from the
// settings store.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, errors.New("install: configuration is required")
	}
	if opts.Validator == nil || opts.Detector == nil || opts.Deployer == nil {
		return nil, errors.New("install: validator, detector and deployer are required")
	}
	if opts.InstallLog == nil {
		opts.InstallLog = nopLog{}
	}
	if opts.Exceptions == nil {
		opts.Exceptions = nopLog{}
	}
	if opts.Prompter == nil {
		opts.Prompter = platform.SilentPrompter{}
	}
	if opts.Start == nil {
		opts.Start = platform.Start
	}

	o := &Orchestrator{
		opts:      opts,
		cfg:       opts.Config,
		target:    opts.Config.Target,
		steamExe:  opts.Config.SteamExe,
		halo1Path: opts.Config.Halo1Path,
		status: Status{
			Message:        validate.SSDAdvisory,
			View:           ViewMain,
			Phase:          PhaseIdle,
			SteamStatus:    initialSteamStatus,
			WinStoreStatus: detect.WinStoreStatusPrompt,
		},
	}

	if opts.Settings != nil {
		flags, err := opts.Settings.GetPatchFlags()
		if err != nil {
			logging.Warn("Failed to load queued patches", "error", err)
		}
		o.flags = flags
	}
	return o, nil
}

// Subscribe registers an observer for status snapshots.
func (o *Orchestrator) Subscribe(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, obs)
}

// Snapshot returns a copy of the current status.
func (o *Orchestrator) Snapshot() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Flags returns the queued patch flags.
func (o *Orchestrator) Flags() patch.Flags {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flags
}

// Target returns the current install target.
func (o *Orchestrator) Target() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.target
}

// update applies fn under the lock and notifies observers afterwards.
func (o *Orchestrator) update(fn func(s *Status)) {
	o.mu.Lock()
	fn(&o.status)
	snapshot := o.status
	observers := append([]Observer(nil), o.observers...)
	o.mu.Unlock()

	for _, obs := range observers {
		obs.StatusChanged(snapshot)
	}
}

// publish notifies observers of changes made directly under the lock.
func (o *Orchestrator) publish() {
	o.update(func(*Status) {})
}

// updateIdle is update for changes that must not land while a commit is in
// flight. It reports whether fn was applied.
func (o *Orchestrator) updateIdle(fn func(s *Status)) bool {
	applied := false
	o.update(func(s *Status) {
		if o.committing {
			return
		}
		fn(s)
		applied = true
	})
	return applied
}

func (o *Orchestrator) setMessage(msg string) {
	o.updateIdle(func(s *Status) { s.Message = msg })
}

// exception writes full detail to the exception log.
func (o *Orchestrator) exception(msg string) {
	o.opts.Exceptions.AppendText(msg)
}

// Initialize shows the main view, validates the current target and applies
// a fresh detection pass. It returns ErrBusy while a commit is in flight.
func (o *Orchestrator) Initialize() error {
	started := o.updateIdle(func(s *Status) {
		s.View = ViewMain
		s.Phase = PhaseValidating
	})
	if !started {
		return ErrBusy
	}
	o.revalidate(o.Target())

	o.probeMu.Lock()
	o.opts.Detector.SetHints(o.hints())
	state := o.opts.Detector.Detect()
	o.probeMu.Unlock()

	o.applyDetection(state)
	return nil
}

func (o *Orchestrator) hints() (string, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.steamExe, o.halo1Path
}

func (o *Orchestrator) applyDetection(state detect.State) {
	o.updateIdle(func(s *Status) {
		if state.SteamStatus != "" {
			s.SteamStatus = state.SteamStatus
		}
		if state.WinStoreStatus != "" {
			s.WinStoreStatus = state.WinStoreStatus
		}
	})

	switch {
	case state.Kind == detect.ManifestMissing:
		o.updateIdle(func(s *Status) {
			s.Message = MsgManifestMissing
			s.CanInstall = false
			s.LastError = &Failure{Kind: UnrecoverableFailure, Step: "detect", Err: detect.ErrManifestMissing}
		})
	case state.Activates():
		if state.Path != "" {
			o.mu.Lock()
			o.halo1Path = state.Path
			o.mu.Unlock()
		}
		o.Activate(state.Reason)
	case state.Kind == detect.NotFound:
		o.updateIdle(func(s *Status) {
			s.Message = MsgNeedsLegalCopy
			s.CanInstall = false
			s.View = ViewActivation
			s.Phase = PhaseActivationRequired
			s.LastError = &Failure{Kind: DetectionAmbiguous, Step: "detect", Err: platform.ErrNotFound}
		})
	}
}

// SetTarget changes the install target and revalidates it. Installation is
// disabled until the new target has been validated.
func (o *Orchestrator) SetTarget(path string) error {
	o.mu.Lock()
	if o.committing {
		o.mu.Unlock()
		return ErrBusy
	}
	o.target = path
	o.status.CanInstall = false
	o.status.Phase = PhaseValidating
	o.mu.Unlock()
	o.publish()

	o.revalidate(path)
	return nil
}

func (o *Orchestrator) revalidate(path string) {
	result := o.opts.Validator.Validate(path)
	logging.Debug("Validated target", "path", path, "ok", result.OK)

	o.updateIdle(func(s *Status) {
		s.Message = result.Message
		s.CanInstall = result.OK
		if result.OK {
			s.Phase = PhaseAwaitingCommit
			s.LastError = nil
		} else {
			s.Phase = PhaseValidating
			s.LastError = &Failure{Kind: ValidationFailure, Step: "validate", Err: errors.New(result.Message)}
		}
	})
}

// SetSteamExe records a steam.exe location and searches its libraries.
func (o *Orchestrator) SetSteamExe(path string) {
	o.mu.Lock()
	o.steamExe = path
	o.mu.Unlock()

	o.probeMu.Lock()
	probe := o.opts.Detector.ProbeSteam(path)
	o.probeMu.Unlock()

	o.updateIdle(func(s *Status) { s.SteamStatus = probe.Status })
	if probe.Found() {
		o.mu.Lock()
		o.halo1Path = probe.Path
		o.mu.Unlock()
		o.Activate(probe.Reason)
	}
}

// ProbeWinStore checks drive, or every fixed drive when empty, for the
// Windows Store build.
func (o *Orchestrator) ProbeWinStore(drive string) {
	o.probeMu.Lock()
	probe := o.opts.Detector.ProbeWinStore(drive)
	o.probeMu.Unlock()

	if !probe.Found() {
		o.updateIdle(func(s *Status) { s.WinStoreStatus = probe.Status })
		return
	}
	o.mu.Lock()
	o.halo1Path = probe.Path
	o.mu.Unlock()
	o.Activate(probe.Reason)
}

// DetectRunningGame activates when a legacy or MCC Halo process is running.
func (o *Orchestrator) DetectRunningGame() {
	if o.opts.Prober == nil {
		o.setMessage(MsgProcessNone)
		return
	}

	kind, err := o.opts.Prober.InferRunningGame()
	if err != nil {
		msg := fmt.Sprintf("%s\n Error: %v\n", MsgProcessFailed, err)
		o.exception(msg)
		o.opts.InstallLog.AppendText(msg)
		logging.Error("Failed to infer Halo process", "error", err)
		o.setMessage(fmt.Sprintf("%s\n Error: %v", MsgProcessFailed, err))
		return
	}

	switch kind {
	case platform.ProcessRetail, platform.ProcessHCE:
		o.Activate(MsgProcessHalo)
	case platform.ProcessSteam, platform.ProcessStoreOld:
		o.Activate(MsgProcessMCC)
	default:
		o.setMessage(MsgProcessNone)
	}
}

// ViewActivation switches to the activation panel.
func (o *Orchestrator) ViewActivation() {
	o.update(func(s *Status) { s.View = ViewActivation })
}

// ViewMain switches to the main panel.
func (o *Orchestrator) ViewMain() {
	o.update(func(s *Status) { s.View = ViewMain })
}

// InstallBaseGame starts the bundled Custom Edition installer.
func (o *Orchestrator) InstallBaseGame() error {
	setup := filepath.Join(o.cfg.Source, o.cfg.SetupExecutable)
	if err := o.opts.Start(setup); err != nil {
		msg := fmt.Sprintf("%s\n Error: %v\n", MsgSetupFailed, err)
		o.exception(msg)
		o.opts.InstallLog.AppendText(msg)
		o.setMessage(fmt.Sprintf("%s\n Error: %v", MsgSetupFailed, err))
		return err
	}
	return nil
}

// Launch starts the installed loader.
func (o *Orchestrator) Launch() error {
	loader := filepath.Join(o.Target(), o.cfg.Executable)
	logging.Info("Launching SPV3", "path", loader)
	return o.opts.Start(loader)
}
