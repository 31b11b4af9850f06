//go:build !windows

package platform

import (
	"errors"
	"fmt"
)

func createShortcut(s Shortcut) error {
	return fmt.Errorf("creating %s: %w", s.Path, errors.ErrUnsupported)
}
