//go:build !windows

package settings

import "github.com/HaloSPV3/spv3/pkg/config"

// Default returns a file store at the configured settings path.
func Default(cfg *config.Configuration) Store {
	return NewFileStore(cfg.SettingsPath)
}
