//go:build !windows

// Package utils holds process level helpers shared by the commands.
package utils

// PatchWindowsArgs does nothing outside Windows.
func PatchWindowsArgs() {}
