package platform

import (
	"path/filepath"
	"strings"
)

// compact drops empty and duplicate entries, preserving order.
func compact(dirs []string) []string {
	out := dirs[:0]
	seen := map[string]bool{}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		key := strings.ToLower(filepath.Clean(d))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}
