package platform

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestIsSteamExe(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "Steam.exe")
	touch(t, exe)

	assert.True(t, IsSteamExe(exe))
	assert.False(t, IsSteamExe(filepath.Join(dir, "steam.exe.lnk")))
	assert.False(t, IsSteamExe(filepath.Join(t.TempDir(), "steam.exe")))
}

func TestSteamLibrariesCurrentLayout(t *testing.T) {
	root := t.TempDir()
	second := t.TempDir()
	vdf := `"libraryfolders"
{
	"0"
	{
		"path"		"` + strings.ReplaceAll(root, `\`, `\\`) + `"
		"label"		""
	}
	"1"
	{
		"path"		"` + strings.ReplaceAll(second, `\`, `\\`) + `"
		"apps"
		{
			"976730"		"12345"
		}
	}
}
`
	touch(t, filepath.Join(root, "steamapps", "libraryfolders.vdf"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "steamapps", "libraryfolders.vdf"), []byte(vdf), 0644))

	libs := SteamLibraries(filepath.Join(root, "steam.exe"))
	assert.Equal(t, []string{root, second}, libs)
}

func TestSteamLibrariesLegacyLayout(t *testing.T) {
	root := t.TempDir()
	vdf := "\"LibraryFolders\"\n{\n\t\"TimeNextStatsReport\"\t\t\"1561832478\"\n\t\"ContentStatsID\"\t\t\"-123\"\n\t\"1\"\t\t\"D:\\\\Games\\\\SteamLibrary\"\n}\n"
	path := filepath.Join(root, "steamapps", "libraryfolders.vdf")
	touch(t, path)
	require.NoError(t, os.WriteFile(path, []byte(vdf), 0644))

	libs := SteamLibraries(filepath.Join(root, "steam.exe"))
	assert.Equal(t, []string{root, `D:\Games\SteamLibrary`}, libs)
}

func TestFindSteamHalo1(t *testing.T) {
	root := t.TempDir()
	exe := filepath.Join(root, "steam.exe")
	touch(t, exe)

	_, err := FindSteamHalo1(exe)
	assert.ErrorIs(t, err, ErrNotFound)

	dll := SteamHalo1Path(root)
	touch(t, dll)
	found, err := FindSteamHalo1(exe)
	require.NoError(t, err)
	assert.Equal(t, dll, found)
	assert.Contains(t, found, filepath.Join("steamapps", "common", MccFolder, "halo1", "halo1.dll"))
}

func TestFindWinStoreHalo1(t *testing.T) {
	empty, drive := t.TempDir(), t.TempDir()
	dll := WinStoreHalo1Path(drive)
	touch(t, dll)

	found, err := FindWinStoreHalo1([]string{empty, drive})
	require.NoError(t, err)
	assert.Equal(t, dll, found)

	_, err = FindWinStoreHalo1([]string{empty})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInferRunningGame(t *testing.T) {
	tests := []struct {
		names []string
		want  GameProcess
	}{
		{[]string{"explorer.exe", "HaloCE.exe"}, ProcessHCE},
		{[]string{"halo.exe"}, ProcessRetail},
		{[]string{"MCC-Win64-Shipping.exe"}, ProcessSteam},
		{[]string{"MCCWinStore-Win64-Shipping.exe"}, ProcessStoreOld},
		{[]string{"MCC-Win64-Shipping.exe", "haloce.exe"}, ProcessHCE},
		{[]string{"notepad.exe"}, ProcessUnknown},
		{nil, ProcessUnknown},
	}
	for _, tt := range tests {
		names := tt.names
		p := &ProcessProber{list: func() ([]string, error) { return names, nil }}
		got, err := p.InferRunningGame()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "processes %v", tt.names)
	}

	boom := errors.New("access denied")
	p := &ProcessProber{list: func() ([]string, error) { return nil, boom }}
	got, err := p.InferRunningGame()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ProcessUnknown, got)
}

func TestAmaiSosu(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "amai_sosu.exe")
	marker := filepath.Join(dir, "Kornner Studios", "Halo CE", "OpenSauceUI.pak")

	var ran []string
	a := NewAmaiSosu(exe, []string{filepath.Join(dir, "missing.shd"), marker})
	a.run = func(path string) error {
		ran = append(ran, path)
		touch(t, marker)
		return nil
	}

	assert.False(t, a.Exists())
	assert.False(t, a.Installed())

	require.NoError(t, a.Execute())
	assert.Equal(t, []string{exe}, ran)
	assert.True(t, a.Installed())

	touch(t, exe)
	assert.True(t, a.Exists())
}

func TestCompact(t *testing.T) {
	assert.Equal(t, []string{"C:/Program Files", "C:/Program Files (x86)"},
		compact([]string{"", "C:/Program Files", "C:/Program Files (x86)", "C:/Program Files"}))
}

func TestConsolePrompter(t *testing.T) {
	var out bytes.Buffer
	ConsolePrompter{Out: &out, In: strings.NewReader("\n")}.Notify("Click OK after AmaiSosu is installed.")
	assert.Contains(t, out.String(), "Click OK after AmaiSosu is installed.")
}

func TestShortcutCreatesParentDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Start Menu", "Single Player Version 3")
	_ = ShellShortcuts{}.Create(Shortcut{Path: filepath.Join(dir, "SPV3.lnk")})
	assert.DirExists(t, dir)
}
