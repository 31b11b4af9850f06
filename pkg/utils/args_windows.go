//go:build windows

// Package utils holds process level helpers shared by the commands.
package utils

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// PatchWindowsArgs rebuilds os.Args from the raw command line so quoted
// install paths with spaces and trailing backslashes survive intact.
// Call it before pflag.Parse.
func PatchWindowsArgs() {
	cmdLine := windows.GetCommandLine()
	if cmdLine == nil {
		return
	}

	var argc int32
	argv, err := windows.CommandLineToArgv(cmdLine, &argc)
	if err != nil || argv == nil || argc < 1 {
		return
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(argv))))

	raw := unsafe.Slice((**uint16)(unsafe.Pointer(argv)), argc)
	args := make([]string, 0, argc)
	for _, arg := range raw {
		if arg != nil {
			args = append(args, windows.UTF16PtrToString(arg))
		}
	}
	os.Args = args
}
