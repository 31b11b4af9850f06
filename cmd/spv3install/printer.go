package main

import (
	"sync"

	"github.com/HaloSPV3/spv3/pkg/install"
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/progress"
)

const barWidth = 40

// statusPrinter echoes status changes to the console, throttling progress
// to whole percent steps.
type statusPrinter struct {
	console *logging.Console

	mu          sync.Mutex
	lastMessage string
	lastPercent int
}

func newStatusPrinter(console *logging.Console) *statusPrinter {
	return &statusPrinter{console: console, lastPercent: -1}
}

func (p *statusPrinter) StatusChanged(s install.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Phase == install.PhaseInstalling && s.Progress.Total > 0 {
		pct := int(s.Progress.Fraction() * 100)
		if pct != p.lastPercent {
			p.lastPercent = pct
			p.console.Printf("%s", progress.Bar(s.Progress, barWidth))
		}
		p.lastMessage = s.Message
		return
	}

	if s.Message == p.lastMessage {
		return
	}
	p.lastMessage = s.Message

	switch {
	case s.LastError != nil && s.LastError.Kind != install.BestEffortFailure:
		p.console.Error("%s", s.Message)
	case s.LastError != nil:
		p.console.Warning("%s", s.Message)
	case s.Phase == install.PhaseDone:
		p.console.Success("%s", s.Message)
	default:
		p.console.Printf("%s", s.Message)
	}
}
