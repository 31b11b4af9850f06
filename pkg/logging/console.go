package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
)

// Console prints human-facing, timestamped lines for the CLI.
type Console struct {
	mu     sync.Mutex
	logger *log.Logger
}

// New creates a console printer. Verbose output goes to stdout, otherwise stderr.
func New(verbose bool) *Console {
	enableColors()

	output := os.Stdout
	if !verbose {
		output = os.Stderr
	}
	return &Console{logger: log.New(output, "", 0)}
}

// SetOutput changes the output destination.
func (c *Console) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.SetOutput(w)
}

func (c *Console) colorPrintf(color, format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05")
	c.logger.Printf("%s[%s] %s%s", color, ts, fmt.Sprintf(format, v...), colorReset)
}

// Printf prints a regular message.
func (c *Console) Printf(format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05")
	c.logger.Printf("[%s] %s", ts, fmt.Sprintf(format, v...))
}

// Success prints a message in green.
func (c *Console) Success(format string, v ...interface{}) {
	c.colorPrintf(colorGreen, format, v...)
}

// Error prints a message in red.
func (c *Console) Error(format string, v ...interface{}) {
	c.colorPrintf(colorRed, format, v...)
}

// Warning prints a message in yellow.
func (c *Console) Warning(format string, v ...interface{}) {
	c.colorPrintf(colorYellow, format, v...)
}

// Debug prints a message in blue.
func (c *Console) Debug(format string, v ...interface{}) {
	c.colorPrintf(colorBlue, format, v...)
}

// Fatal prints an error message in red and exits.
func (c *Console) Fatal(format string, v ...interface{}) {
	c.Error(format, v...)
	os.Exit(1)
}
