package platform

import (
	"bufio"
	"fmt"
	"io"
)

// Prompter shows a blocking informational message.
type Prompter interface {
	Notify(message string)
}

// ConsolePrompter prints the message and waits for Enter.
type ConsolePrompter struct {
	Out io.Writer
	In  io.Reader
}

// Notify implements Prompter.
func (c ConsolePrompter) Notify(message string) {
	fmt.Fprintf(c.Out, "%s\nPress Enter to continue...", message)
	if c.In != nil {
		_, _ = bufio.NewReader(c.In).ReadString('\n')
	}
	fmt.Fprintln(c.Out)
}

// SilentPrompter discards messages, for unattended runs.
type SilentPrompter struct{}

// Notify implements Prompter.
func (SilentPrompter) Notify(string) {}
