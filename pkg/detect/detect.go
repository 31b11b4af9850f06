// Package detect works out which Halo installation, if any, the host has.
package detect

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/manifest"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/settings"
)

// ErrManifestMissing reports a source tree without a deployment manifest.
var ErrManifestMissing = errors.New("could not find manifest in the data directory")

// Activation reasons and probe statuses shown to the user.
const (
	ReasonRetail         = "Halo Retail located."
	ReasonSteamDefault   = "Steam MCC CEA found in default-ish location."
	ReasonSteamLibrary   = "Halo CEA Located via Steam."
	ReasonWinStore       = "Halo CEA Located via WinStore Mod."
	SteamStatusLocated   = "Steam located!"
	SteamStatusPrompt    = "Find Steam.exe or a Steam shortcut and we'll do the rest!"
	SteamStatusSearching = "Searching for and validating Halo CEA's files..."
	SteamStatusFailed    = "Failed to find CEA"
	SteamStatusNoCEA     = "Steam Located, but Halo CEA not found."
	WinStoreStatusPrompt = "Choose the drive where Halo MCC CEA is located!"
	WinStoreStatusFailed = "Failed to find CEA on the drive"
)

// TextLog is an append-only diagnostic sink.
type TextLog interface {
	AppendText(text string)
}

// Detector gathers the inputs of a detection pass. Zero-valued function
// fields fall back to the live platform probes.
type Detector struct {
	ManifestPath string
	Settings     settings.Store
	Flags        func() patch.Flags

	// SteamExe and Halo1Path are caller supplied hints.
	SteamExe  string
	Halo1Path string

	FindSteam    func(steamExe string) (string, error)
	ScanWinStore func() (string, error)

	InstallLog TextLog
	Exceptions TextLog
}

// SetHints replaces the caller supplied path hints.
func (d *Detector) SetHints(steamExe, halo1Path string) {
	d.SteamExe, d.Halo1Path = steamExe, halo1Path
}

func (d *Detector) flags() patch.Flags {
	if d.Flags == nil {
		return 0
	}
	return d.Flags()
}

// Detect runs one detection pass. Every outcome is written to the install log.
func (d *Detector) Detect() State {
	state := d.detect()
	d.audit(state)
	logging.Info("Detection finished", "state", state.Kind.String(), "path", state.Path, "version", state.Version)
	return state
}

func (d *Detector) detect() State {
	state := State{PatchQueued: d.flags().Has(patch.DisableDrmAndKeyChecks)}

	m, err := manifest.Load(d.ManifestPath)
	if err != nil {
		if manifest.Exists(d.ManifestPath) {
			d.exception(fmt.Sprintf("Invalid deployment manifest.\n Error: %v\n", err))
			logging.Error("Deployment manifest unreadable", "path", d.ManifestPath, "error", err)
		} else {
			logging.Error("Deployment manifest missing", "path", d.ManifestPath, "error", ErrManifestMissing)
		}
		state.Kind = ManifestMissing
		return state
	}
	state.Version = m.Version

	state.CustomActivated = d.activated(settings.EditionCustom)
	state.RetailActivated = d.activated(settings.EditionRetail)

	switch {
	case state.PatchQueued:
		state.Kind = PatchQueued
		return state
	case state.CustomActivated:
		state.Kind = CustomEditionActivated
		return state
	case state.RetailActivated:
		state.Kind = RetailActivated
		state.Reason = ReasonRetail
		return state
	}

	if platform.FileExists(d.SteamExe) {
		steam := d.ProbeSteam(d.SteamExe)
		state.SteamStatus = steam.Status
		if steam.Found() {
			state.Kind, state.Path, state.Reason = SteamMccFound, steam.Path, steam.Reason
			return state
		}
	}

	// A halo1.dll hint that already exists was not confirmed by either
	// launcher probe, so it does not activate on its own.
	if d.Halo1Path == "" || !platform.FileExists(d.Halo1Path) {
		store := d.ProbeWinStore("")
		state.WinStoreStatus = store.Status
		if store.Found() {
			state.Kind, state.Path, state.Reason = WinStoreMccFound, store.Path, store.Reason
			return state
		}
	}
	state.Kind = NotFound
	return state
}

func (d *Detector) activated(edition settings.Edition) bool {
	if d.Settings == nil {
		return false
	}
	ok, err := d.Settings.GetActivation(edition)
	if err != nil {
		logging.Warn("Failed to read activation", "edition", edition.String(), "error", err)
		return false
	}
	return ok
}

func (d *Detector) audit(s State) {
	if d.InstallLog == nil {
		return
	}
	var b strings.Builder
	if s.Version != "" {
		fmt.Fprintf(&b, "INFO -- SPV3 manifest version: %s\n", s.Version)
	}
	fmt.Fprintf(&b, "INFO -- DRM patch queued: %t\n", s.PatchQueued)
	fmt.Fprintf(&b, "INFO -- Custom Edition is activated: %t\n", s.CustomActivated)
	fmt.Fprintf(&b, "INFO -- Retail Edition is activated: %t\n", s.RetailActivated)
	fmt.Fprintf(&b, "INFO -- CEA found: %t\n", d.ceaFound(s))
	d.InstallLog.AppendText(b.String())
}

func (d *Detector) ceaFound(s State) bool {
	if s.Path != "" {
		return platform.FileExists(s.Path)
	}
	return platform.FileExists(d.Halo1Path)
}

func (d *Detector) exception(msg string) {
	if d.Exceptions != nil {
		d.Exceptions.AppendText(msg)
	}
}

// Probe is the outcome of an on-demand Steam or WinStore search.
type Probe struct {
	Path   string
	Reason string
	Status string
}

// Found reports whether halo1.dll was located.
func (p Probe) Found() bool {
	return p.Path != ""
}

// ProbeSteam looks for MCC's halo1.dll in the default and the additional
// libraries of the Steam installation owning exe.
func (d *Detector) ProbeSteam(exe string) Probe {
	if !platform.IsSteamExe(exe) {
		if platform.FileExists(exe) {
			return Probe{Status: SteamStatusLocated}
		}
		return Probe{Status: SteamStatusPrompt}
	}

	if dll := platform.SteamHalo1Path(filepath.Dir(exe)); platform.FileExists(dll) {
		return Probe{Path: dll, Reason: ReasonSteamDefault, Status: SteamStatusLocated}
	}

	logging.Info(SteamStatusSearching, "steam", exe)
	find := d.FindSteam
	if find == nil {
		find = platform.FindSteamHalo1
	}
	dll, err := find(exe)
	switch {
	case err == nil:
		return Probe{Path: dll, Reason: ReasonSteamLibrary, Status: SteamStatusLocated}
	case errors.Is(err, platform.ErrNotFound):
		return Probe{Status: SteamStatusNoCEA}
	default:
		d.exception(fmt.Sprintf("%s\n Error: %v\n", SteamStatusFailed, err))
		logging.Error("Steam library search failed", "steam", exe, "error", err)
		return Probe{Status: SteamStatusFailed}
	}
}

// ProbeWinStore checks drive for the Windows Store halo1.dll, or every fixed
// drive when drive is empty.
func (d *Detector) ProbeWinStore(drive string) Probe {
	var (
		dll string
		err error
	)
	if drive == "" {
		scan := d.ScanWinStore
		if scan == nil {
			scan = platform.ScanWinStore
		}
		dll, err = scan()
	} else {
		dll, err = platform.FindWinStoreHalo1([]string{drive})
	}

	if err == nil {
		return Probe{Path: dll, Reason: ReasonWinStore}
	}

	d.exception(fmt.Sprintf("%s\n Error: Could not find CEA for Winstore on %s\n", WinStoreStatusFailed, drive))
	if !errors.Is(err, platform.ErrNotFound) {
		logging.Warn("WinStore scan failed", "drive", drive, "error", err)
	}
	return Probe{Status: WinStoreStatusFailed}
}
