package install

import (
	"fmt"

	"github.com/HaloSPV3/spv3/pkg/progress"
)

// View selects which panel a front end shows.
type View int

const (
	ViewMain View = iota
	ViewActivation
	ViewLoad
)

func (v View) String() string {
	switch v {
	case ViewActivation:
		return "Activation"
	case ViewLoad:
		return "Load"
	default:
		return "Main"
	}
}

// Phase is the orchestrator's position in the install flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseAwaitingCommit
	PhaseActivationRequired
	PhaseInstalling
	PhasePostInstall
	PhaseDone
)

var phaseNames = [...]string{
	PhaseIdle:               "Idle",
	PhaseValidating:         "Validating",
	PhaseAwaitingCommit:     "AwaitingCommit",
	PhaseActivationRequired: "ActivationRequired",
	PhaseInstalling:         "Installing",
	PhasePostInstall:        "PostInstall",
	PhaseDone:               "Done",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// FailureKind classifies a Failure.
type FailureKind int

const (
	ValidationFailure FailureKind = iota
	DetectionAmbiguous
	DeploymentFailure
	BestEffortFailure
	UnrecoverableFailure
)

func (k FailureKind) String() string {
	switch k {
	case ValidationFailure:
		return "validation"
	case DetectionAmbiguous:
		return "detection"
	case DeploymentFailure:
		return "deployment"
	case BestEffortFailure:
		return "best-effort"
	case UnrecoverableFailure:
		return "unrecoverable"
	}
	return "unknown"
}

// Failure records the step that failed last.
type Failure struct {
	Kind FailureKind
	Step string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure in %s: %v", f.Kind, f.Step, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Status is the observable state of an Orchestrator.
type Status struct {
	Message        string
	CanInstall     bool
	View           View
	Phase          Phase
	Progress       progress.Progress
	SteamStatus    string
	WinStoreStatus string
	LastError      *Failure
}

// Observer is notified with a snapshot after every status change.
type Observer interface {
	StatusChanged(Status)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Status)

// StatusChanged implements Observer.
func (f ObserverFunc) StatusChanged(s Status) { f(s) }
