//go:build windows

package settings

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/HaloSPV3/spv3/pkg/config"
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/patch"
)

const (
	patchesKey   = `SOFTWARE\SPV3`
	patchesValue = "Patches"
)

var editionKeys = map[Edition][]string{
	EditionCustom: {
		`SOFTWARE\WOW6432Node\Microsoft\Microsoft Games\Halo CE`,
		`SOFTWARE\Microsoft\Microsoft Games\Halo CE`,
	},
	EditionRetail: {
		`SOFTWARE\WOW6432Node\Microsoft\Microsoft Games\Halo`,
		`SOFTWARE\Microsoft\Microsoft Games\Halo`,
	},
}

// RegistryStore reads activation from the game's uninstall keys and keeps
// patch flags under HKCU\SOFTWARE\SPV3.
type RegistryStore struct{}

// GetActivation reports whether the edition's key carries a CD key and an EXE path.
func (RegistryStore) GetActivation(edition Edition) (bool, error) {
	paths, ok := editionKeys[edition]
	if !ok {
		return false, fmt.Errorf("unknown edition %d", edition)
	}
	for _, path := range paths {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		exe, _, exeErr := key.GetStringValue("EXE Path")
		_, _, keyErr := key.GetBinaryValue("CDKey")
		key.Close()

		if exeErr == nil && exe != "" && keyErr == nil {
			logging.Debug("Edition activated", "edition", edition.String(), "key", path)
			return true, nil
		}
	}
	return false, nil
}

// GetPatchFlags implements Store.
func (RegistryStore) GetPatchFlags() (patch.Flags, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, patchesKey, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", patchesKey, err)
	}
	defer key.Close()

	val, _, err := key.GetIntegerValue(patchesValue)
	if errors.Is(err, registry.ErrNotExist) {
		return 0, nil
	}
	return patch.Flags(val), err
}

// SetPatchFlags implements Store.
func (RegistryStore) SetPatchFlags(flags patch.Flags) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, patchesKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("creating %s: %w", patchesKey, err)
	}
	defer key.Close()
	return key.SetDWordValue(patchesValue, uint32(flags))
}

// Default returns the registry store.
func Default(_ *config.Configuration) Store {
	return RegistryStore{}
}
