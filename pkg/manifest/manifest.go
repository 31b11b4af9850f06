// pkg/manifest/manifest.go - the deployment manifest shipped in the data directory.

package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// ErrNoVersion is returned for manifests without a version field.
var ErrNoVersion = errors.New("manifest has no version")

// Package is one archive or directory listed in the manifest.
type Package struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	Size int64  `yaml:"size,omitempty"`
}

// Manifest describes an SPV3 data directory.
type Manifest struct {
	Name     string    `yaml:"name"`
	Version  string    `yaml:"version"`
	Packages []Package `yaml:"packages"`

	parsed *version.Version
}

// Exists reports whether a manifest file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoVersion)
	}
	m.parsed, err = version.NewVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: invalid version %q: %w", path, m.Version, err)
	}
	return &m, nil
}

// TotalSize sums the declared package sizes.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, p := range m.Packages {
		total += p.Size
	}
	return total
}

// NewerThan reports whether m is a newer release than other.
func (m *Manifest) NewerThan(other *Manifest) bool {
	if other == nil || other.parsed == nil {
		return true
	}
	return m.parsed.GreaterThan(other.parsed)
}
