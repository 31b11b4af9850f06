package logging

import (
	"os"
	"path/filepath"
	"sync"
)

// Sink is an append-only plain-text log such as install.log or exception.log.
// Write failures are swallowed: a broken log must never abort an install.
type Sink struct {
	mu   sync.Mutex
	path string
}

// NewSink returns a Sink appending to path. The file is created lazily.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// Path returns the file the sink appends to.
func (s *Sink) Path() string {
	return s.path
}

// AppendText appends text verbatim.
func (s *Sink) AppendText(text string) {
	if s == nil || s.path == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(text)
}

// InstallLog returns the install audit sink inside dir.
func InstallLog(dir string) *Sink {
	return NewSink(filepath.Join(dir, "install.log"))
}

// ExceptionLog returns the exception trace sink inside dir.
func ExceptionLog(dir string) *Sink {
	return NewSink(filepath.Join(dir, "exception.log"))
}
