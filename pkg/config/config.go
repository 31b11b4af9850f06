// pkg/config/config.go - configuration settings for the SPV3 installer.

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RegistryPath is the HKLM key read when no configuration file exists.
const RegistryPath = `SOFTWARE\SPV3\Config`

// ConfigFileName is the file name looked up inside the user configuration directory.
const ConfigFileName = "config.yaml"

// Disk space requirements, in bytes.
const (
	DefaultMinTempFree   uint64 = 11811160064 // 11 GiB for extraction to %TEMP%
	DefaultMinTargetFree uint64 = 17179869184 // 16 GiB at the target
)

// Configuration holds the configurable options for the installer in YAML format
type Configuration struct {
	Source        string `yaml:"Source"`
	Target        string `yaml:"Target"`
	Compress      bool   `yaml:"Compress"`
	Debug         bool   `yaml:"Debug"`
	LogLevel      string `yaml:"LogLevel"`
	LogDir        string `yaml:"LogDir"`
	SettingsPath  string `yaml:"SettingsPath"`  // patch flags and activation overrides on non-Windows hosts
	SteamExe      string `yaml:"SteamExe"`      // hint: path to steam.exe
	Halo1Path     string `yaml:"Halo1Path"`     // hint: path to MCC's halo1.dll
	WinStoreDrive string `yaml:"WinStoreDrive"` // restrict the WinStore scan to one drive

	Executable      string `yaml:"Executable"`      // loader, relative to Target
	GameExecutable  string `yaml:"GameExecutable"`  // patched game executable, relative to Target
	ManifestFile    string `yaml:"ManifestFile"`    // relative to Source
	PatchTable      string `yaml:"PatchTable"`      // relative to Source
	SetupExecutable string `yaml:"SetupExecutable"` // Custom Edition installer, relative to Source

	ShortcutName        string `yaml:"ShortcutName"`
	ShortcutDescription string `yaml:"ShortcutDescription"`
	StartMenuFolder     string `yaml:"StartMenuFolder"`

	DependentPackage DependentPackage `yaml:"DependentPackage"`

	ProgramFilesDirs   []string `yaml:"ProgramFilesDirs"`   // overrides %ProgramFiles% detection
	ReservedSubstrings []string `yaml:"ReservedSubstrings"` // foreign launcher trees
	MinTempFreeBytes   uint64   `yaml:"MinTempFreeBytes"`
	MinTargetFreeBytes uint64   `yaml:"MinTargetFreeBytes"`
}

// DependentPackage configures the OpenSauce installation performed through AmaiSosu.
type DependentPackage struct {
	Executable      string   `yaml:"Executable"`  // relative to Target
	MarkerFiles     []string `yaml:"MarkerFiles"` // any one existing ends the retry loop
	MaxAttempts     int      `yaml:"MaxAttempts"` // 0 retries until cancelled
	IntervalSeconds int      `yaml:"IntervalSeconds"`
}

// Interval returns the pause between dependent package attempts.
func (d DependentPackage) Interval() time.Duration {
	return time.Duration(d.IntervalSeconds) * time.Second
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "SPV3", ConfigFileName)
}

// LoadConfig loads the configuration from a YAML file.
// If the file doesn't exist, it falls back to registry settings where those are available.
func LoadConfig(path string) (*Configuration, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Configuration file does not exist: %s", path)

		config, regErr := LoadConfigFromRegistry()
		if regErr == nil {
			log.Printf("Loaded configuration from registry: %s", RegistryPath)
			return config, nil
		}
		if !errors.Is(regErr, errRegistryUnsupported) {
			log.Printf("Failed to load from registry: %v", regErr)
		}
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s: %w", path, err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing configuration %s: %w", path, err)
	}
	config.applyDefaults()

	return config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Configuration) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = cwd
	}
	commonData := os.Getenv("ProgramData")
	if commonData == "" {
		commonData = filepath.Join(home, ".local", "share")
	}
	osDir := filepath.Join(commonData, "Kornner Studios", "Halo CE")

	return &Configuration{
		Source:              filepath.Join(cwd, "data"),
		Target:              filepath.Join(home, "Documents", "My Games", "Halo SPV3"),
		LogLevel:            "info",
		LogDir:              filepath.Join(cwd, "logs"),
		SettingsPath:        filepath.Join(filepath.Dir(DefaultPath()), "settings.yaml"),
		Executable:          "spv3.exe",
		GameExecutable:      "haloce.exe",
		ManifestFile:        "manifest.yaml",
		PatchTable:          "patches.yaml",
		SetupExecutable:     filepath.Join("setup", "setup.exe"),
		ShortcutName:        "SPV3",
		ShortcutDescription: "Single Player Version 3",
		StartMenuFolder:     "Single Player Version 3",
		DependentPackage: DependentPackage{
			Executable: "amai_sosu.exe",
			MarkerFiles: []string{
				filepath.Join(osDir, "OpenSauceUI.pak"),
				filepath.Join(osDir, "shaders", "gbuffer_shaders.shd"),
				filepath.Join(osDir, "shaders", "pp_shaders.shd"),
			},
			IntervalSeconds: 2,
		},
		ReservedSubstrings: []string{"Halo The Master Chief Collection"},
		MinTempFreeBytes:   DefaultMinTempFree,
		MinTargetFreeBytes: DefaultMinTargetFree,
	}
}

// applyDefaults refills values a partial YAML document zeroed out.
func (c *Configuration) applyDefaults() {
	def := GetDefaultConfig()
	if c.Source == "" {
		c.Source = def.Source
	}
	if c.Target == "" {
		c.Target = def.Target
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogDir == "" {
		c.LogDir = def.LogDir
	}
	if c.SettingsPath == "" {
		c.SettingsPath = def.SettingsPath
	}
	if c.Executable == "" {
		c.Executable = def.Executable
	}
	if c.GameExecutable == "" {
		c.GameExecutable = def.GameExecutable
	}
	if c.ManifestFile == "" {
		c.ManifestFile = def.ManifestFile
	}
	if c.PatchTable == "" {
		c.PatchTable = def.PatchTable
	}
	if c.SetupExecutable == "" {
		c.SetupExecutable = def.SetupExecutable
	}
	if c.ShortcutName == "" {
		c.ShortcutName = def.ShortcutName
	}
	if c.StartMenuFolder == "" {
		c.StartMenuFolder = def.StartMenuFolder
	}
	if c.DependentPackage.Executable == "" {
		c.DependentPackage.Executable = def.DependentPackage.Executable
	}
	if len(c.DependentPackage.MarkerFiles) == 0 {
		c.DependentPackage.MarkerFiles = def.DependentPackage.MarkerFiles
	}
	if len(c.ReservedSubstrings) == 0 {
		c.ReservedSubstrings = def.ReservedSubstrings
	}
	if c.MinTempFreeBytes == 0 {
		c.MinTempFreeBytes = def.MinTempFreeBytes
	}
	if c.MinTargetFreeBytes == 0 {
		c.MinTargetFreeBytes = def.MinTargetFreeBytes
	}
}

// ManifestPath returns the absolute path of the deployment manifest.
func (c *Configuration) ManifestPath() string {
	return filepath.Join(c.Source, c.ManifestFile)
}

// PatchTablePath returns the absolute path of the binary patch table.
func (c *Configuration) PatchTablePath() string {
	return filepath.Join(c.Source, c.PatchTable)
}
