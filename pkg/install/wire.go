package install

import (
	"fmt"
	"path/filepath"

	"github.com/HaloSPV3/spv3/pkg/config"
	"github.com/HaloSPV3/spv3/pkg/deploy"
	"github.com/HaloSPV3/spv3/pkg/detect"
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/settings"
	"github.com/HaloSPV3/spv3/pkg/validate"
)

// NewDefault wires an Orchestrator to the host's real collaborators.
func NewDefault(cfg *config.Configuration, prompter platform.Prompter) (*Orchestrator, error) {
	installLog := logging.InstallLog(cfg.LogDir)
	exceptions := logging.ExceptionLog(cfg.LogDir)
	store := settings.Default(cfg)

	patcher, err := patch.NewPatcher(cfg.PatchTablePath())
	if err != nil {
		return nil, fmt.Errorf("loading patch table: %w", err)
	}

	steamExe := cfg.SteamExe
	if steamExe == "" {
		steamExe = platform.DefaultSteamExe()
	}
	cfg.SteamExe = steamExe

	detector := &detect.Detector{
		ManifestPath: cfg.ManifestPath(),
		Settings:     store,
		InstallLog:   installLog,
		Exceptions:   exceptions,
	}
	if drive := cfg.WinStoreDrive; drive != "" {
		detector.ScanWinStore = func() (string, error) {
			return platform.FindWinStoreHalo1([]string{drive})
		}
	}

	markers := cfg.DependentPackage.MarkerFiles
	o, err := New(Options{
		Config:     cfg,
		Settings:   store,
		Validator:  validate.New(validate.DefaultEnv(cfg, exceptions)),
		Detector:   detector,
		Deployer:   deploy.New(),
		Patcher:    patcher,
		Prober:     platform.NewProcessProber(),
		Shortcuts:  platform.ShellShortcuts{},
		Prompter:   prompter,
		InstallLog: installLog,
		Exceptions: exceptions,
		NewPackage: func(target string) DependentPackage {
			return platform.NewAmaiSosu(filepath.Join(target, cfg.DependentPackage.Executable), markers)
		},
		DesktopDir:   platform.DesktopDir(),
		StartMenuDir: platform.StartMenuProgramsDir(),
	})
	if err != nil {
		return nil, err
	}
	detector.Flags = o.Flags
	return o, nil
}
