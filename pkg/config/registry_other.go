//go:build !windows

package config

import "errors"

var errRegistryUnsupported = errors.New("registry configuration unsupported on this platform")

// LoadConfigFromRegistry is only meaningful on Windows.
func LoadConfigFromRegistry() (*Configuration, error) {
	return nil, errRegistryUnsupported
}
