//go:build !windows

package platform

import "os"

// DefaultPrompter returns a console prompter on the standard streams.
func DefaultPrompter(_ string) Prompter {
	return ConsolePrompter{Out: os.Stdout, In: os.Stdin}
}
