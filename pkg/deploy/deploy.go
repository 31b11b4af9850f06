// pkg/deploy/deploy.go - copies the SPV3 data tree into the target directory.

package deploy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/progress"
)

// ErrInvalidOperation reports a deployment that cannot start: missing or empty
// source, or a destination overlapping the source.
var ErrInvalidOperation = errors.New("invalid deployment operation")

// Installer copies a source tree to a destination, reporting byte progress.
type Installer struct {
	// Compressor enables filesystem compression on the destination. Nil uses
	// the platform default.
	Compressor func(dir string) error
}

// New returns an Installer using the platform compressor.
func New() *Installer {
	return &Installer{Compressor: compressDir}
}

type entry struct {
	rel  string
	size int64
	mode fs.FileMode
	dir  bool
}

// Install copies source into destination. sink receives monotonic snapshots
// ending with Current == Total. When compress is set, the destination is
// compressed after the copy.
func (in *Installer) Install(source, destination string, sink progress.Sink, compress bool) error {
	src, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	dst, err := filepath.Abs(destination)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	if overlaps(src, dst) {
		return fmt.Errorf("%w: destination %s overlaps source %s", ErrInvalidOperation, dst, src)
	}

	entries, total, err := scan(src)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: source %s is empty", ErrInvalidOperation, src)
	}

	logging.Info("Deploying", "source", src, "destination", dst, "files", len(entries), "bytes", total)

	tracker := progress.NewTracker(total, sink)
	tracker.Set(0)

	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	for _, e := range entries {
		target := filepath.Join(dst, e.rel)
		if e.dir {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := copyFile(filepath.Join(src, e.rel), target, e.mode, tracker); err != nil {
			return err
		}
	}
	tracker.Finish()

	if compress {
		c := in.Compressor
		if c == nil {
			c = compressDir
		}
		if err := c(dst); err != nil {
			return fmt.Errorf("compressing %s: %w", dst, err)
		}
	}
	return nil
}

func overlaps(src, dst string) bool {
	if strings.EqualFold(src, dst) {
		return true
	}
	rel, err := filepath.Rel(src, dst)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func scan(src string) ([]entry, int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: source %s is not a directory", ErrInvalidOperation, src)
	}

	var entries []entry
	var total int64
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			entries = append(entries, entry{rel: rel, dir: true})
		case fi.Mode().IsRegular():
			entries = append(entries, entry{rel: rel, size: fi.Size(), mode: fi.Mode().Perm()})
			total += fi.Size()
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scanning %s: %w", src, err)
	}
	return entries, total, nil
}

func copyFile(from, to string, mode fs.FileMode, tracker *progress.Tracker) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("opening %s: %w", from, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return err
	}
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(to, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode|0200)
	if err != nil {
		return fmt.Errorf("creating %s: %w", to, err)
	}

	if _, err := io.Copy(out, progress.NewReader(in, tracker)); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", from, err)
	}
	return out.Close()
}
