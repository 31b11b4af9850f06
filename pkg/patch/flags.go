// Package patch holds the executable patch bitmask and a table-driven patcher.
package patch

import "strings"

// Flags is a bitmask of independent executable patches.
type Flags uint32

const (
	DisableDrmAndKeyChecks Flags = 1 << iota
	DisableScreensaver
	DisableSystemLanguageCheck
	DisableMainMenuMusic
	EnableConsole
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{DisableDrmAndKeyChecks, "DISABLE_DRM_AND_KEY_CHECKS"},
	{DisableScreensaver, "DISABLE_SCREENSAVER"},
	{DisableSystemLanguageCheck, "DISABLE_SYSTEM_LANGUAGE_CHECK"},
	{DisableMainMenuMusic, "DISABLE_MAIN_MENU_MUSIC"},
	{EnableConsole, "ENABLE_CONSOLE"},
}

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask && mask != 0
}

// With returns f with mask set.
func (f Flags) With(mask Flags) Flags {
	return f | mask
}

func (f Flags) String() string {
	if f == 0 {
		return "NONE"
	}
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// ParseFlag resolves a flag name as used in patch tables.
func ParseFlag(name string) (Flags, bool) {
	for _, fn := range flagNames {
		if strings.EqualFold(fn.name, name) {
			return fn.flag, true
		}
	}
	return 0, false
}
