// Package settings persists activation state and queued patch flags.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/HaloSPV3/spv3/pkg/patch"
)

// Edition identifies one of the legacy PC releases.
type Edition int

const (
	EditionCustom Edition = iota
	EditionRetail
)

func (e Edition) String() string {
	switch e {
	case EditionCustom:
		return "Custom Edition"
	case EditionRetail:
		return "Retail"
	default:
		return "Unknown"
	}
}

// Store is the key/value persistence the installer reads activation from and
// queues patches into.
type Store interface {
	GetActivation(edition Edition) (bool, error)
	GetPatchFlags() (patch.Flags, error)
	SetPatchFlags(flags patch.Flags) error
}

type fileDocument struct {
	Patches         uint32 `yaml:"Patches"`
	CustomActivated bool   `yaml:"CustomActivated"`
	RetailActivated bool   `yaml:"RetailActivated"`
}

// FileStore keeps settings in a YAML document. It stands in for the registry
// on hosts without one.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (fileDocument, error) {
	var doc fileDocument
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing settings %s: %w", s.path, err)
	}
	return doc, nil
}

// GetActivation implements Store.
func (s *FileStore) GetActivation(edition Edition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}
	switch edition {
	case EditionCustom:
		return doc.CustomActivated, nil
	case EditionRetail:
		return doc.RetailActivated, nil
	}
	return false, fmt.Errorf("unknown edition %d", edition)
}

// GetPatchFlags implements Store.
func (s *FileStore) GetPatchFlags() (patch.Flags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	return patch.Flags(doc.Patches), err
}

// SetPatchFlags implements Store.
func (s *FileStore) SetPatchFlags(flags patch.Flags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Patches = uint32(flags)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
