package install

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaloSPV3/spv3/pkg/detect"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/validate"
)

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestNewLoadsQueuedPatches(t *testing.T) {
	h := newHarness(t)
	h.store.flags = patch.EnableConsole
	h.build(t)

	assert.Equal(t, patch.EnableConsole, h.o.Flags())
	s := h.o.Snapshot()
	assert.Equal(t, validate.SSDAdvisory, s.Message)
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, ViewMain, s.View)
}

func TestActivateIsIdempotent(t *testing.T) {
	h := newHarness(t)

	h.o.Activate("Halo Retail located.")
	first := h.o.Snapshot()
	h.o.Activate("Halo Retail located.")
	second := h.o.Snapshot()

	assert.True(t, h.o.Flags().Has(patch.DisableDrmAndKeyChecks))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.store.writes)
	assert.True(t, second.CanInstall)
	assert.Equal(t, ViewMain, second.View)
	assert.Equal(t, "Halo Retail located.\n"+validate.SSDAdvisory, second.Message)
}

func TestActivatePreservesOtherPatches(t *testing.T) {
	h := newHarness(t)
	h.store.flags = patch.DisableScreensaver
	h.build(t)

	h.o.Activate("x")
	assert.Equal(t, patch.DisableScreensaver|patch.DisableDrmAndKeyChecks, h.store.flags)
}

func TestInitializeCustomEditionLeavesBypassUntouched(t *testing.T) {
	h := newHarness(t)
	h.detector.state = detect.State{Kind: detect.CustomEditionActivated, CustomActivated: true}

	h.o.Initialize()

	s := h.o.Snapshot()
	assert.False(t, h.o.Flags().Has(patch.DisableDrmAndKeyChecks))
	assert.Zero(t, h.store.writes)
	assert.True(t, s.CanInstall)
	assert.Equal(t, validate.SSDAdvisory, s.Message)
	assert.Equal(t, PhaseAwaitingCommit, s.Phase)
	assert.Equal(t, []string{h.cfg.Target}, h.validator.paths)
}

func TestInitializeRetailActivates(t *testing.T) {
	h := newHarness(t)
	h.detector.state = detect.State{Kind: detect.RetailActivated, RetailActivated: true, Reason: detect.ReasonRetail}

	h.o.Initialize()

	s := h.o.Snapshot()
	assert.True(t, h.o.Flags().Has(patch.DisableDrmAndKeyChecks))
	assert.Contains(t, s.Message, "Halo Retail located.")
	assert.True(t, s.CanInstall)
}

func TestInitializePassesHints(t *testing.T) {
	h := newHarness(t)
	h.cfg.SteamExe = `C:\Steam\steam.exe`
	h.cfg.Halo1Path = `E:\ModifiableWindowsApps\HaloMCC\halo1\halo1.dll`
	h.build(t)

	h.o.Initialize()
	assert.Equal(t, h.cfg.SteamExe, h.detector.steamExe)
	assert.Equal(t, h.cfg.Halo1Path, h.detector.halo1)
}

func TestInitializeMCCFound(t *testing.T) {
	for _, kind := range []detect.Kind{detect.SteamMccFound, detect.WinStoreMccFound} {
		h := newHarness(t)
		h.detector.state = detect.State{Kind: kind, Path: "halo1.dll", Reason: "found", SteamStatus: detect.SteamStatusLocated}

		h.o.Initialize()

		s := h.o.Snapshot()
		assert.True(t, h.o.Flags().Has(patch.DisableDrmAndKeyChecks), kind.String())
		assert.Equal(t, "found\n"+validate.SSDAdvisory, s.Message)
		assert.Equal(t, detect.SteamStatusLocated, s.SteamStatus)
	}
}

func TestInitializeManifestMissing(t *testing.T) {
	h := newHarness(t)
	h.detector.state = detect.State{Kind: detect.ManifestMissing}

	h.o.Initialize()

	s := h.o.Snapshot()
	assert.False(t, s.CanInstall)
	assert.Equal(t, MsgManifestMissing, s.Message)
	require.NotNil(t, s.LastError)
	assert.ErrorIs(t, s.LastError, detect.ErrManifestMissing)
	assert.False(t, h.o.Commit(context.Background()))
}

func TestInitializeNotFoundRequiresActivation(t *testing.T) {
	h := newHarness(t)
	h.detector.state = detect.State{Kind: detect.NotFound, WinStoreStatus: detect.WinStoreStatusFailed}

	h.o.Initialize()

	s := h.o.Snapshot()
	assert.False(t, s.CanInstall)
	assert.Equal(t, ViewActivation, s.View)
	assert.Equal(t, PhaseActivationRequired, s.Phase)
	assert.Equal(t, MsgNeedsLegalCopy, s.Message)
	assert.Equal(t, detect.WinStoreStatusFailed, s.WinStoreStatus)
	assert.Equal(t, DetectionAmbiguous, s.LastError.Kind)
}

func TestSetTargetCopiesValidation(t *testing.T) {
	h := newHarness(t)
	h.validator.result = validate.Result{Message: validate.MsgProgramFiles}

	require.NoError(t, h.o.SetTarget(`C:\Program Files\SPV3`))

	s := h.o.Snapshot()
	assert.False(t, s.CanInstall)
	assert.Equal(t, validate.MsgProgramFiles, s.Message)
	assert.Equal(t, ValidationFailure, s.LastError.Kind)
	assert.Equal(t, `C:\Program Files\SPV3`, h.o.Target())

	h.validator.result = validate.Result{OK: true, Message: validate.SSDAdvisory}
	require.NoError(t, h.o.SetTarget(`D:\Games\SPV3`))
	s = h.o.Snapshot()
	assert.True(t, s.CanInstall)
	assert.Nil(t, s.LastError)
}

func TestSetSteamExe(t *testing.T) {
	h := newHarness(t)
	h.detector.steam = detect.Probe{Status: detect.SteamStatusNoCEA}

	h.o.SetSteamExe(`C:\Steam\steam.exe`)
	assert.Equal(t, detect.SteamStatusNoCEA, h.o.Snapshot().SteamStatus)
	assert.False(t, h.o.Flags().Has(patch.DisableDrmAndKeyChecks))

	h.detector.steam = detect.Probe{Path: "halo1.dll", Reason: detect.ReasonSteamLibrary, Status: detect.SteamStatusLocated}
	h.o.SetSteamExe(`C:\Steam\steam.exe`)
	s := h.o.Snapshot()
	assert.Equal(t, detect.SteamStatusLocated, s.SteamStatus)
	assert.True(t, strings.HasPrefix(s.Message, detect.ReasonSteamLibrary))
	assert.True(t, h.o.Flags().Has(patch.DisableDrmAndKeyChecks))
}

func TestProbeWinStore(t *testing.T) {
	h := newHarness(t)
	h.detector.winStore = detect.Probe{Status: detect.WinStoreStatusFailed}

	h.o.ProbeWinStore(`E:\`)
	assert.Equal(t, []string{`E:\`}, h.detector.winStoreProbes)
	assert.Equal(t, detect.WinStoreStatusFailed, h.o.Snapshot().WinStoreStatus)
	assert.False(t, h.o.Flags().Has(patch.DisableDrmAndKeyChecks))

	h.detector.winStore = detect.Probe{Path: "halo1.dll", Reason: detect.ReasonWinStore}
	h.o.ProbeWinStore(`E:\`)
	assert.True(t, strings.HasPrefix(h.o.Snapshot().Message, detect.ReasonWinStore))
}

func TestDetectRunningGame(t *testing.T) {
	tests := []struct {
		kind     platform.GameProcess
		message  string
		activate bool
	}{
		{platform.ProcessRetail, MsgProcessHalo, true},
		{platform.ProcessHCE, MsgProcessHalo, true},
		{platform.ProcessSteam, MsgProcessMCC, true},
		{platform.ProcessStoreOld, MsgProcessMCC, true},
		{platform.ProcessUnknown, MsgProcessNone, false},
	}
	for _, tt := range tests {
		h := newHarness(t)
		h.o.opts.Prober = fakeProber{kind: tt.kind}

		h.o.DetectRunningGame()

		s := h.o.Snapshot()
		assert.True(t, strings.HasPrefix(s.Message, tt.message), tt.kind.String())
		assert.Equal(t, tt.activate, h.o.Flags().Has(patch.DisableDrmAndKeyChecks), tt.kind.String())
	}
}

func TestDetectRunningGameError(t *testing.T) {
	h := newHarness(t)
	h.o.opts.Prober = fakeProber{err: errBoom}

	h.o.DetectRunningGame()

	assert.Equal(t, MsgProcessFailed+"\n Error: boom", h.o.Snapshot().Message)
	assert.Len(t, h.exceptions.lines, 1)
	assert.Len(t, h.install.lines, 1)
}

func TestViews(t *testing.T) {
	h := newHarness(t)
	h.o.ViewActivation()
	assert.Equal(t, ViewActivation, h.o.Snapshot().View)
	h.o.ViewMain()
	assert.Equal(t, ViewMain, h.o.Snapshot().View)
}

func TestInstallBaseGameAndLaunch(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.o.InstallBaseGame())
	require.NoError(t, h.o.Launch())
	require.Len(t, h.started, 2)
	assert.True(t, strings.HasSuffix(h.started[0], "setup.exe"))
	assert.True(t, strings.HasSuffix(h.started[1], "spv3.exe"))

	h.o.opts.Start = func(string) error { return errBoom }
	assert.ErrorIs(t, h.o.InstallBaseGame(), errBoom)
	assert.True(t, strings.HasPrefix(h.o.Snapshot().Message, MsgSetupFailed))
}

func TestObserversReceiveSnapshots(t *testing.T) {
	h := newHarness(t)
	h.o.ViewActivation()
	h.o.ViewMain()

	statuses := h.rec.all()
	require.Len(t, statuses, 2)
	assert.Equal(t, ViewActivation, statuses[0].View)
	assert.Equal(t, ViewMain, statuses[1].View)
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "AwaitingCommit", PhaseAwaitingCommit.String())
	assert.Equal(t, "Phase(99)", Phase(99).String())
	assert.Equal(t, "Load", ViewLoad.String())
	f := &Failure{Kind: DeploymentFailure, Step: "deploy", Err: errBoom}
	assert.Equal(t, "deployment failure in deploy: boom", f.Error())
	assert.ErrorIs(t, f, errBoom)
}
