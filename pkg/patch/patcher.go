package patch

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HaloSPV3/spv3/pkg/logging"
)

// Edit replaces Original with Patched at Offset. Both are hex strings.
type Edit struct {
	Offset   int64  `yaml:"offset"`
	Original string `yaml:"original"`
	Patched  string `yaml:"patched"`
}

// Table maps flag names to the edits implementing them.
type Table map[string][]Edit

// LoadTable reads a YAML patch table.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patch table: %w", err)
	}
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing patch table %s: %w", path, err)
	}
	for name := range table {
		if _, ok := ParseFlag(name); !ok {
			return nil, fmt.Errorf("patch table %s: unknown flag %q", path, name)
		}
	}
	return table, nil
}

// Patcher applies the edits for every selected flag to an executable.
type Patcher struct {
	Table Table
}

// NewPatcher loads the table at path. A missing table yields a patcher with no edits.
func NewPatcher(path string) (*Patcher, error) {
	table, err := LoadTable(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Patch table not found, patches will be skipped", "path", path)
			return &Patcher{Table: Table{}}, nil
		}
		return nil, err
	}
	return &Patcher{Table: table}, nil
}

// ApplyPatches writes the selected patches into exe. The returned error wraps
// fs.ErrNotExist when exe is missing. Already patched bytes are left alone.
func (p *Patcher) ApplyPatches(flags Flags, exe string) error {
	f, err := os.OpenFile(exe, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s for patching: %w", exe, err)
	}
	defer f.Close()

	for _, fn := range flagNames {
		if !flags.Has(fn.flag) {
			continue
		}
		edits := p.lookup(fn.name)
		if len(edits) == 0 {
			logging.Debug("No edits for patch", "patch", fn.name)
			continue
		}
		for _, e := range edits {
			if err := applyEdit(f, e); err != nil {
				return fmt.Errorf("%s at 0x%X: %w", fn.name, e.Offset, err)
			}
		}
		logging.Info("Applied patch", "patch", fn.name, "exe", exe, "edits", len(edits))
	}
	return nil
}

func (p *Patcher) lookup(name string) []Edit {
	for k, v := range p.Table {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

func applyEdit(f *os.File, e Edit) error {
	original, err := hex.DecodeString(e.Original)
	if err != nil {
		return fmt.Errorf("bad original bytes: %w", err)
	}
	patched, err := hex.DecodeString(e.Patched)
	if err != nil {
		return fmt.Errorf("bad patched bytes: %w", err)
	}
	if len(original) != len(patched) {
		return fmt.Errorf("original and patched lengths differ")
	}

	current := make([]byte, len(original))
	if _, err := f.ReadAt(current, e.Offset); err != nil {
		return err
	}
	switch {
	case bytes.Equal(current, patched):
		return nil
	case !bytes.Equal(current, original):
		return fmt.Errorf("unexpected bytes %X", current)
	}
	_, err = f.WriteAt(patched, e.Offset)
	return err
}
