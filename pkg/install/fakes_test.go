package install

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HaloSPV3/spv3/pkg/config"
	"github.com/HaloSPV3/spv3/pkg/detect"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/progress"
	"github.com/HaloSPV3/spv3/pkg/settings"
	"github.com/HaloSPV3/spv3/pkg/validate"
)

type memStore struct {
	mu     sync.Mutex
	flags  patch.Flags
	writes int
}

func (m *memStore) GetActivation(settings.Edition) (bool, error) { return false, nil }

func (m *memStore) GetPatchFlags() (patch.Flags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags, nil
}

func (m *memStore) SetPatchFlags(f patch.Flags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags = f
	m.writes++
	return nil
}

// fakeValidator returns result. When entered and release are set, Validate
// signals entered and then blocks until release is closed.
type fakeValidator struct {
	mu      sync.Mutex
	result  validate.Result
	paths   []string
	entered chan struct{}
	release chan struct{}
}

func (v *fakeValidator) Validate(path string) validate.Result {
	v.mu.Lock()
	v.paths = append(v.paths, path)
	entered, release := v.entered, v.release
	v.entered = nil
	v.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if release != nil {
		<-release
	}
	return v.result
}

func (v *fakeValidator) block() (entered, release chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entered, v.release = make(chan struct{}), make(chan struct{})
	return v.entered, v.release
}

type fakeDetector struct {
	state           detect.State
	steam, winStore detect.Probe
	steamExe, halo1 string
	steamProbes     []string
	winStoreProbes  []string
}

func (d *fakeDetector) SetHints(steamExe, halo1 string) { d.steamExe, d.halo1 = steamExe, halo1 }
func (d *fakeDetector) Detect() detect.State            { return d.state }
func (d *fakeDetector) ProbeSteam(exe string) detect.Probe {
	d.steamProbes = append(d.steamProbes, exe)
	return d.steam
}
func (d *fakeDetector) ProbeWinStore(drive string) detect.Probe {
	d.winStoreProbes = append(d.winStoreProbes, drive)
	return d.winStore
}

// fakeDeployer reports progress in fixed steps and drops the loader into the
// target unless skipLoader is set.
type fakeDeployer struct {
	mu         sync.Mutex
	calls      int
	err        error
	skipLoader bool
	started    chan struct{}
	release    chan struct{}
}

func (d *fakeDeployer) Install(source, destination string, sink progress.Sink, compress bool) error {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.started != nil {
		close(d.started)
	}
	if d.release != nil {
		<-d.release
	}
	if d.err != nil {
		return d.err
	}
	for _, n := range []int64{0, 25, 50, 75, 100} {
		sink(progress.Progress{Current: n, Total: 100})
	}
	if d.skipLoader {
		return nil
	}
	if err := os.MkdirAll(destination, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(destination, "spv3.exe"), []byte("loader"), 0644)
}

func (d *fakeDeployer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type fakePatcher struct {
	err   error
	calls []string
}

func (p *fakePatcher) ApplyPatches(flags patch.Flags, exe string) error {
	p.calls = append(p.calls, exe)
	return p.err
}

type fakeShortcuts struct {
	err     error
	created []platform.Shortcut
}

func (s *fakeShortcuts) Create(sc platform.Shortcut) error {
	s.created = append(s.created, sc)
	return s.err
}

// fakePackage returns errs in order, then succeeds. A successful Execute
// installs the package.
type fakePackage struct {
	errs      []error
	calls     int
	installed bool
	exists    bool
}

func (p *fakePackage) Execute() error {
	p.calls++
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return err
	}
	p.installed = true
	return nil
}
func (p *fakePackage) Exists() bool    { return p.exists }
func (p *fakePackage) Installed() bool { return p.installed }

type fakeProber struct {
	kind platform.GameProcess
	err  error
}

func (p fakeProber) InferRunningGame() (platform.GameProcess, error) { return p.kind, p.err }

type countingPrompter struct {
	mu       sync.Mutex
	messages []string
}

func (c *countingPrompter) Notify(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

type textLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *textLog) AppendText(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, text)
}

type recorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *recorder) StatusChanged(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recorder) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

var errBoom = errors.New("boom")

type harness struct {
	o          *Orchestrator
	cfg        *config.Configuration
	store      *memStore
	validator  *fakeValidator
	detector   *fakeDetector
	deployer   *fakeDeployer
	patcher    *fakePatcher
	shortcuts  *fakeShortcuts
	pkg        *fakePackage
	prompter   *countingPrompter
	exceptions *textLog
	install    *textLog
	started    []string
	rec        *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Source = t.TempDir()
	cfg.Target = filepath.Join(t.TempDir(), "Halo SPV3")
	cfg.DependentPackage.IntervalSeconds = 0

	h := &harness{
		cfg:        cfg,
		store:      &memStore{},
		validator:  &fakeValidator{result: validate.Result{OK: true, Message: validate.SSDAdvisory}},
		detector:   &fakeDetector{state: detect.State{Kind: detect.CustomEditionActivated}},
		deployer:   &fakeDeployer{},
		patcher:    &fakePatcher{},
		shortcuts:  &fakeShortcuts{},
		pkg:        &fakePackage{exists: true},
		prompter:   &countingPrompter{},
		exceptions: &textLog{},
		install:    &textLog{},
		rec:        &recorder{},
	}
	h.build(t)
	return h
}

// build (re)creates the orchestrator from the harness collaborators.
func (h *harness) build(t *testing.T) {
	t.Helper()
	o, err := New(Options{
		Config:       h.cfg,
		Settings:     h.store,
		Validator:    h.validator,
		Detector:     h.detector,
		Deployer:     h.deployer,
		Patcher:      h.patcher,
		Prober:       fakeProber{},
		Shortcuts:    h.shortcuts,
		Prompter:     h.prompter,
		InstallLog:   h.install,
		Exceptions:   h.exceptions,
		NewPackage:   func(string) DependentPackage { return h.pkg },
		Start:        func(path string) error { h.started = append(h.started, path); return nil },
		DesktopDir:   filepath.Join(h.cfg.Source, "Desktop"),
		StartMenuDir: filepath.Join(h.cfg.Source, "Programs"),
	})
	require.NoError(t, err)
	o.Subscribe(h.rec)
	h.o = o
}
