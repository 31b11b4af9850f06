// cmd/spv3install/main.go - headless front end for the SPV3 installer.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/HaloSPV3/spv3/pkg/config"
	"github.com/HaloSPV3/spv3/pkg/install"
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/progress"
	"github.com/HaloSPV3/spv3/pkg/utils"
	"github.com/HaloSPV3/spv3/pkg/version"
)

var logger *logging.Console

func main() {
	utils.PatchWindowsArgs()

	configPath := pflag.String("config", config.DefaultPath(), "Path to the YAML configuration file.")
	source := pflag.String("source", "", "Directory holding the SPV3 data and manifest.")
	target := pflag.String("target", "", "Directory to install SPV3 into.")
	steamExe := pflag.String("steam-exe", "", "Path to steam.exe, used to find the MCC Halo 1 files.")
	halo1 := pflag.String("halo1", "", "Path to a known MCC halo1.dll.")
	winStoreDrive := pflag.String("winstore-drive", "", "Drive holding the Windows Store MCC, e.g. E:\\.")
	compress := pflag.Bool("compress", false, "Compress the installed files with NTFS compression.")
	debug := pflag.Bool("debug", false, "Tolerate missing data and game files.")
	commit := pflag.Bool("commit", false, "Install SPV3 when the checks pass.")
	detectProcess := pflag.Bool("detect-process", false, "Activate from a running Halo or MCC process.")
	installBase := pflag.Bool("install-base-game", false, "Run the bundled Halo Custom Edition installer.")
	launch := pflag.Bool("launch", false, "Start SPV3 after a successful install.")
	unattended := pflag.Bool("unattended", false, "Do not wait for the user at prompts.")
	showConfig := pflag.Bool("show-config", false, "Display the effective configuration and exit.")
	saveConfig := pflag.Bool("save-config", false, "Write the effective configuration to --config and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv, -vvv)")
	pflag.Parse()

	if *versionFlag {
		version.PrintFull()
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Command line values win over the file.
	if *source != "" {
		cfg.Source = *source
	}
	if *target != "" {
		cfg.Target = *target
	}
	if *steamExe != "" {
		cfg.SteamExe = *steamExe
	}
	if *halo1 != "" {
		cfg.Halo1Path = *halo1
	}
	if *winStoreDrive != "" {
		cfg.WinStoreDrive = *winStoreDrive
	}
	if pflag.CommandLine.Changed("compress") {
		cfg.Compress = *compress
	}
	if pflag.CommandLine.Changed("debug") {
		cfg.Debug = *debug
	}

	// 0 => WARN, 1 => INFO, 2+ => DEBUG
	switch {
	case verbosity >= 2 || cfg.Debug:
		cfg.LogLevel = "DEBUG"
	case verbosity == 1:
		cfg.LogLevel = "INFO"
	case !pflag.CommandLine.Changed("config"):
		cfg.LogLevel = "WARN"
	}

	logger = logging.New(verbosity > 0)
	if err := logging.Init(cfg); err != nil {
		logger.Fatal("Error initializing logger: %v", err)
	}
	defer logging.CloseLogger()

	if *showConfig {
		if cfgYaml, err := yaml.Marshal(cfg); err == nil {
			logger.Printf("Current configuration:\n%s", string(cfgYaml))
		}
		return
	}
	if *saveConfig {
		if err := config.SaveConfig(*configPath, cfg); err != nil {
			logger.Error("Failed to save configuration: %v", err)
			os.Exit(1)
		}
		logger.Success("Configuration written to %s", *configPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var prompter platform.Prompter = platform.SilentPrompter{}
	if !*unattended {
		prompter = platform.DefaultPrompter("SPV3")
	}

	orchestrator, err := install.NewDefault(cfg, prompter)
	if err != nil {
		logger.Error("Failed to prepare installer: %v", err)
		os.Exit(1)
	}
	orchestrator.Subscribe(newStatusPrinter(logger))

	logging.Info("Starting spv3install", "version", version.String(), "source", cfg.Source, "target", cfg.Target)
	if err := orchestrator.Initialize(); err != nil {
		logger.Error("Failed to initialize installer: %v", err)
		os.Exit(1)
	}

	if *installBase {
		if err := orchestrator.InstallBaseGame(); err != nil {
			os.Exit(1)
		}
	}
	if *detectProcess {
		orchestrator.DetectRunningGame()
	}
	if *winStoreDrive != "" {
		orchestrator.ProbeWinStore(*winStoreDrive)
	}

	if !*commit {
		report(orchestrator.Snapshot())
		return
	}

	if !orchestrator.Commit(ctx) {
		s := orchestrator.Snapshot()
		logger.Error("Installation is not possible: %s", s.Message)
		os.Exit(1)
	}

	s := orchestrator.Snapshot()
	report(s)
	if s.Phase != install.PhaseDone {
		os.Exit(1)
	}
	if *launch && s.View == install.ViewLoad {
		if err := orchestrator.Launch(); err != nil {
			logger.Error("Failed to start SPV3: %v", err)
			os.Exit(1)
		}
	}
}

func report(s install.Status) {
	logger.Printf("Phase: %s", s.Phase)
	logger.Printf("Steam: %s", s.SteamStatus)
	logger.Printf("WinStore: %s", s.WinStoreStatus)
	if s.Progress.Total > 0 {
		logger.Printf("Deployed: %s of %s", progress.FormatBytes(s.Progress.Current), progress.FormatBytes(s.Progress.Total))
	}
	if dir := logging.GetCurrentLogDir(); dir != "" {
		logger.Printf("Logs: %s", dir)
	}
	if s.LastError != nil {
		logger.Warning("Last error: %v", s.LastError)
	}
	if s.CanInstall {
		logger.Success("Ready to install.")
	}
}
