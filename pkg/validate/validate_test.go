package validate

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gib = uint64(1) << 30

type recordingLog struct{ lines []string }

func (r *recordingLog) AppendText(text string) { r.lines = append(r.lines, text) }

type space struct {
	temp, target uint64
	err          error
	probed       []string
}

func (s *space) env(t *testing.T) Env {
	tempDir := t.TempDir()
	return Env{
		FreeSpace: func(path string) (uint64, error) {
			s.probed = append(s.probed, path)
			if s.err != nil {
				return 0, s.err
			}
			if path == tempDir {
				return s.temp, nil
			}
			return s.target, nil
		},
		TempDir:  tempDir,
		Reserved: []string{"Halo The Master Chief Collection"},
	}
}

func TestValidateAcceptsRoomyTarget(t *testing.T) {
	s := &space{temp: 12 * gib, target: 20 * gib}
	target := t.TempDir()

	got := New(s.env(t)).Validate(target)
	assert.Equal(t, Result{OK: true, Message: SSDAdvisory}, got)
	assert.NoFileExists(t, filepath.Join(target, "io.bin"))
}

func TestValidateEmptyPath(t *testing.T) {
	s := &space{temp: 12 * gib, target: 20 * gib}
	got := New(s.env(t)).Validate("")
	assert.False(t, got.OK)
	assert.Equal(t, "Enter a valid path.", got.Message)
}

func TestValidateRelativePath(t *testing.T) {
	s := &space{temp: 12 * gib, target: 20 * gib}
	got := New(s.env(t)).Validate(filepath.Join("My Games", "Halo SPV3"))
	assert.Equal(t, MsgInvalidPath, got.Message)
}

func TestValidateProgramFilesRejected(t *testing.T) {
	s := &space{temp: 100 * gib, target: 100 * gib}
	programFiles := t.TempDir()
	env := s.env(t)
	env.ProgramFiles = []string{programFiles}

	target := filepath.Join(programFiles, "SPV3")
	require.NoError(t, os.Mkdir(target, 0755))

	got := New(env).Validate(target)
	assert.False(t, got.OK)
	assert.Equal(t, MsgProgramFiles, got.Message)

	// a sibling that merely shares the prefix is fine
	sibling := programFiles + "-games"
	require.NoError(t, os.Mkdir(sibling, 0755))
	t.Cleanup(func() { os.RemoveAll(sibling) })
	assert.True(t, New(env).Validate(sibling).OK)
}

func TestValidateReservedTreeRejected(t *testing.T) {
	s := &space{temp: 100 * gib, target: 100 * gib}
	target := filepath.Join(t.TempDir(), "Halo The Master Chief Collection", "spv3")
	require.NoError(t, os.MkdirAll(target, 0755))

	got := New(s.env(t)).Validate(target)
	assert.False(t, got.OK)
	assert.Equal(t, MsgReservedTree, got.Message)
}

func TestValidateTempSpace(t *testing.T) {
	s := &space{temp: 10 * gib, target: 100 * gib}
	env := s.env(t)

	got := New(env).Validate(t.TempDir())
	assert.False(t, got.OK)
	assert.True(t, strings.HasPrefix(got.Message, "Not enough disk space (11GB required) on the "), got.Message)
	assert.Contains(t, got.Message, volumeRoot(env.TempDir))
}

func TestValidateTargetSpace(t *testing.T) {
	s := &space{temp: 12 * gib, target: 15 * gib}
	target := t.TempDir()

	got := New(s.env(t)).Validate(target)
	assert.False(t, got.OK)
	assert.Equal(t, "Not enough disk space (16GB required) at selected path: "+target, got.Message)
}

func TestValidateSpaceThresholdsAreInclusive(t *testing.T) {
	s := &space{temp: 11 * gib, target: 16 * gib}
	assert.True(t, New(s.env(t)).Validate(t.TempDir()).OK)
}

func TestValidateSpaceProbeError(t *testing.T) {
	s := &space{err: errors.New("device not ready")}
	log := &recordingLog{}
	env := s.env(t)
	env.Exceptions = log

	got := New(env).Validate(t.TempDir())
	assert.False(t, got.OK)
	assert.True(t, strings.HasPrefix(got.Message, "Failed to get drive space."))
	require.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "device not ready")
}

func TestValidateWalksToExistingParent(t *testing.T) {
	s := &space{temp: 12 * gib, target: 20 * gib}
	existing := t.TempDir()
	target := filepath.Join(existing, "My Games", "Halo SPV3")

	got := New(s.env(t)).Validate(target)
	assert.True(t, got.OK)
	assert.Equal(t, existing, s.probed[len(s.probed)-1])
	assert.NoDirExists(t, target)
}

func TestValidateWalkStopsAtWorkingDirectory(t *testing.T) {
	s := &space{temp: 12 * gib, target: 20 * gib}
	env := s.env(t)
	env.WorkingDir = t.TempDir()

	got := New(env).Validate(filepath.Join(env.WorkingDir, "missing", "deeper"))
	assert.Equal(t, Result{Message: MsgInvalidPath}, got)
}

func TestValidateWriteProbeFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	s := &space{temp: 12 * gib, target: 20 * gib}
	log := &recordingLog{}
	env := s.env(t)
	env.Exceptions = log

	target := t.TempDir()
	require.NoError(t, os.Chmod(target, 0555))
	t.Cleanup(func() { os.Chmod(target, 0755) })

	got := New(env).Validate(target)
	assert.False(t, got.OK)
	assert.True(t, strings.HasPrefix(got.Message, "Installation not possible at selected path: "+target))
	assert.Len(t, log.lines, 1)
}

func TestHasPathPrefix(t *testing.T) {
	sep := string(filepath.Separator)
	pf := sep + filepath.Join("Program Files")
	assert.True(t, hasPathPrefix(pf, pf))
	assert.True(t, hasPathPrefix(filepath.Join(pf, "SPV3"), strings.ToUpper(pf)))
	assert.False(t, hasPathPrefix(pf+" (x86)", pf))
}
