package platform

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/HaloSPV3/spv3/pkg/logging"
)

// vdfPair matches a single `"key"  "value"` line of a Valve KeyValues file.
var vdfPair = regexp.MustCompile(`^\s*"([^"]+)"\s+"((?:[^"\\]|\\.)*)"\s*$`)

var vdfNumericKey = regexp.MustCompile(`^\d+$`)

// IsSteamExe reports whether path is an existing steam.exe.
func IsSteamExe(path string) bool {
	return strings.EqualFold(filepath.Base(path), "steam.exe") && FileExists(path)
}

// SteamLibraries returns the library roots of the Steam installation owning
// steamExe. The installation directory always comes first.
func SteamLibraries(steamExe string) []string {
	root := filepath.Dir(steamExe)
	libraries := []string{root}
	seen := map[string]bool{strings.ToLower(filepath.Clean(root)): true}

	for _, vdf := range []string{
		filepath.Join(root, "steamapps", "libraryfolders.vdf"),
		filepath.Join(root, "config", "libraryfolders.vdf"),
	} {
		paths, err := parseLibraryFolders(vdf)
		if err != nil {
			if !os.IsNotExist(err) {
				logging.Warn("Failed to read Steam library folders", "file", vdf, "error", err)
			}
			continue
		}
		for _, p := range paths {
			key := strings.ToLower(filepath.Clean(p))
			if seen[key] {
				continue
			}
			seen[key] = true
			libraries = append(libraries, p)
		}
	}
	return libraries
}

// parseLibraryFolders extracts library paths from both the current
// ("path" entries) and the legacy (numbered entries) libraryfolders.vdf layouts.
func parseLibraryFolders(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := vdfPair.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		key, value := m[1], strings.ReplaceAll(m[2], `\\`, `\`)
		if strings.EqualFold(key, "path") || (vdfNumericKey.MatchString(key) && strings.ContainsAny(value, `/\`)) {
			paths = append(paths, value)
		}
	}
	return paths, scanner.Err()
}

// SteamHalo1Path returns where halo1.dll lives inside a Steam library.
func SteamHalo1Path(library string) string {
	return filepath.Join(library, "steamapps", "common", MccFolder, Halo1Dir, Halo1Dll)
}

// FindSteamHalo1 searches every library of the Steam installation for halo1.dll.
func FindSteamHalo1(steamExe string) (string, error) {
	for _, library := range SteamLibraries(steamExe) {
		candidate := SteamHalo1Path(library)
		if FileExists(candidate) {
			logging.Debug("Found Steam MCC Halo 1", "path", candidate)
			return candidate, nil
		}
	}
	return "", ErrNotFound
}
