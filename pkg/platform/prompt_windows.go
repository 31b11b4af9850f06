//go:build windows

package platform

import (
	"os"

	"github.com/gonutz/w32"
)

// MessageBoxPrompter shows a native message box.
type MessageBoxPrompter struct {
	Title string
}

// Notify implements Prompter.
func (m MessageBoxPrompter) Notify(message string) {
	w32.MessageBox(0, message, m.Title, w32.MB_OK|w32.MB_ICONINFORMATION)
}

// DefaultPrompter returns a message box prompter.
func DefaultPrompter(title string) Prompter {
	if os.Getenv("SPV3_CONSOLE_PROMPTS") != "" {
		return ConsolePrompter{Out: os.Stdout, In: os.Stdin}
	}
	return MessageBoxPrompter{Title: title}
}
