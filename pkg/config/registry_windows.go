//go:build windows

package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

var errRegistryUnsupported = errors.New("registry configuration unsupported on this platform")

// LoadConfigFromRegistry loads configuration values from HKLM\SOFTWARE\SPV3\Config.
func LoadConfigFromRegistry() (*Configuration, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, RegistryPath, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry key %s: %w", RegistryPath, err)
	}
	defer key.Close()

	config := GetDefaultConfig()

	loadStringFromRegistry(key, "Source", &config.Source)
	loadStringFromRegistry(key, "Target", &config.Target)
	loadStringFromRegistry(key, "LogLevel", &config.LogLevel)
	loadStringFromRegistry(key, "LogDir", &config.LogDir)
	loadStringFromRegistry(key, "SteamExe", &config.SteamExe)
	loadStringFromRegistry(key, "Halo1Path", &config.Halo1Path)
	loadStringFromRegistry(key, "WinStoreDrive", &config.WinStoreDrive)

	loadBoolFromRegistry(key, "Compress", &config.Compress)
	loadBoolFromRegistry(key, "Debug", &config.Debug)

	loadIntFromRegistry(key, "DependentPackageMaxAttempts", &config.DependentPackage.MaxAttempts)

	loadStringArrayFromRegistry(key, "ProgramFilesDirs", &config.ProgramFilesDirs)
	loadStringArrayFromRegistry(key, "ReservedSubstrings", &config.ReservedSubstrings)

	return config, nil
}

func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("Registry: Loaded %s = %s", valueName, val)
	}
}

// loadBoolFromRegistry accepts "true"/"false", "1"/"0" and DWORD 1/0.
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			return
		}
	}
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
	}
}

func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
			*target = parsed
			return
		}
	}
	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
	}
}

// loadStringArrayFromRegistry reads REG_MULTI_SZ or a comma separated REG_SZ.
func loadStringArrayFromRegistry(key registry.Key, valueName string, target *[]string) {
	var raw []string
	if vals, _, err := key.GetStringsValue(valueName); err == nil {
		raw = vals
	} else if val, _, err := key.GetStringValue(valueName); err == nil {
		raw = strings.Split(val, ",")
	}

	filtered := make([]string, 0, len(raw))
	for _, v := range raw {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	if len(filtered) > 0 {
		*target = filtered
	}
}
