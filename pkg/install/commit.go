package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/HaloSPV3/spv3/pkg/deploy"
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/manifest"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/platform"
	"github.com/HaloSPV3/spv3/pkg/progress"
	"github.com/HaloSPV3/spv3/pkg/retry"
)

// Commit and post-install status lines.
const (
	MsgProgressFormat  = "Installing SPV3. Please wait until this is finished! - %s"
	MsgOpenSaucePrompt = "Installation has been successful! Please install OpenSauce to the SPV3 folder OR Halo CE folder using AmaiSosu. Click OK to continue ..."
	MsgAmaiSosuPrompt  = "Click OK after AmaiSosu is installed."
	MsgFinished        = "Installation of SPV3 has successfully finished! Enjoy SPV3, and join our Discord and Reddit communities!"
	MsgLoaderMissing   = "SPV3 loader could not be found in the target directory. Please load manually."
	msgInstallFailed   = "Failed to install SPV3."
	msgShortcutFailed  = "Shortcut error."
	msgOpenSauceFailed = "Failed to install OpenSauce via Amai Sosu."
	shortcutExtension  = ".lnk"
)

// errNotInstalled keeps the dependent package loop going after a run that
// left no marker behind.
var errNotInstalled = errors.New("OpenSauce markers not found")

// run carries the values a single commit works with.
type run struct {
	id     string
	target string
	flags  patch.Flags
}

// Commit deploys SPV3 to the current target. It returns false without doing
// anything when installation is not currently allowed. Only one commit can
// pass the CanInstall check at a time.
func (o *Orchestrator) Commit(ctx context.Context) bool {
	o.mu.Lock()
	if !o.status.CanInstall || o.committing {
		o.mu.Unlock()
		return false
	}
	o.committing = true
	o.status.CanInstall = false
	o.status.Phase = PhaseInstalling
	o.status.LastError = nil
	o.status.Progress = progress.Progress{}
	r := run{id: uuid.NewString(), target: o.target, flags: o.flags}
	o.mu.Unlock()
	o.publish()

	logging.LogStructured(logging.LevelInfo, "Starting SPV3 installation", map[string]interface{}{
		"run_id":  r.id,
		"source":  o.cfg.Source,
		"target":  r.target,
		"patches": r.flags.String(),
	})

	o.recordRelease(r)
	if err := o.deploy(r); err != nil {
		o.fail(r, "deploy", err)
		return true
	}
	if err := o.patch(r); err != nil {
		o.fail(r, "patch", err)
		return true
	}
	o.createShortcuts(r)

	o.update(func(s *Status) { s.Phase = PhasePostInstall })
	o.opts.Prompter.Notify(MsgOpenSaucePrompt)
	pkgErr := o.installDependentPackage(ctx, r)

	o.finish(r, pkgErr)
	return true
}

// CommitAsync runs Commit on its own goroutine. The channel is closed when
// the commit has finished or was refused.
func (o *Orchestrator) CommitAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Commit(ctx)
	}()
	return done
}

// recordRelease notes the release being deployed and the one it replaces in
// the install log.
func (o *Orchestrator) recordRelease(r run) {
	source, err := manifest.Load(o.cfg.ManifestPath())
	if err != nil {
		logging.Warn("Failed to read source manifest", "run_id", r.id, "error", err)
		return
	}
	fields := map[string]interface{}{
		"run_id":  r.id,
		"version": source.Version,
		"size":    progress.FormatBytes(source.TotalSize()),
	}

	line := fmt.Sprintf("INFO -- Installing SPV3 %s\n", source.Version)
	installed, err := manifest.Load(filepath.Join(r.target, o.cfg.ManifestFile))
	if err == nil {
		fields["installed_version"] = installed.Version
		fields["upgrade"] = source.NewerThan(installed)
		if source.NewerThan(installed) {
			line = fmt.Sprintf("INFO -- Upgrading SPV3 %s to %s\n", installed.Version, source.Version)
		} else {
			line = fmt.Sprintf("INFO -- Reinstalling SPV3 %s over %s\n", source.Version, installed.Version)
		}
	}
	o.opts.InstallLog.AppendText(line)
	logging.LogStructured(logging.LevelInfo, "Deploying SPV3 release", fields)
}

func (o *Orchestrator) deploy(r run) error {
	sink := func(p progress.Progress) {
		o.update(func(s *Status) {
			s.Progress = p
			s.Message = fmt.Sprintf(MsgProgressFormat, p.Percent())
		})
	}

	err := o.opts.Deployer.Install(o.cfg.Source, r.target, sink, o.cfg.Compress)
	if errors.Is(err, deploy.ErrInvalidOperation) && o.cfg.Debug {
		logging.Warn("Ignoring invalid deployment in debug mode", "run_id", r.id, "error", err)
		return nil
	}
	return err
}

func (o *Orchestrator) patch(r run) error {
	if !r.flags.Has(patch.DisableDrmAndKeyChecks) || o.opts.Patcher == nil {
		return nil
	}
	exe := filepath.Join(r.target, o.cfg.GameExecutable)
	err := o.opts.Patcher.ApplyPatches(r.flags, exe)
	if errors.Is(err, fs.ErrNotExist) && o.cfg.Debug {
		logging.Warn("Game executable missing, skipping patches in debug mode", "run_id", r.id, "exe", exe)
		return nil
	}
	if err == nil {
		logging.Info("Applied queued patches", "run_id", r.id, "exe", exe, "patches", r.flags.String())
	}
	return err
}

func (o *Orchestrator) createShortcuts(r run) {
	if o.opts.Shortcuts == nil {
		return
	}
	dirs := []string{o.opts.DesktopDir}
	if o.opts.StartMenuDir != "" {
		dirs = append(dirs, filepath.Join(o.opts.StartMenuDir, o.cfg.StartMenuFolder))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		shortcut := platform.Shortcut{
			Path:             filepath.Join(dir, o.cfg.ShortcutName+shortcutExtension),
			Target:           filepath.Join(r.target, o.cfg.Executable),
			WorkingDirectory: r.target,
			Description:      o.cfg.ShortcutDescription,
		}
		if err := o.opts.Shortcuts.Create(shortcut); err != nil {
			msg := fmt.Sprintf("%s\n Error: %v\n", msgShortcutFailed, err)
			o.exception(msg)
			logging.Warn("Failed to create shortcut", "run_id", r.id, "path", shortcut.Path, "error", err)
			o.update(func(s *Status) {
				s.Message = msg
				s.LastError = &Failure{Kind: BestEffortFailure, Step: "shortcut", Err: err}
			})
			continue
		}
		logging.Debug("Created shortcut", "run_id", r.id, "path", shortcut.Path)
	}
}

// installDependentPackage runs the package until one of its markers exists.
// Declined elevation prompts are retried; any other error ends the loop.
func (o *Orchestrator) installDependentPackage(ctx context.Context, r run) error {
	if o.opts.NewPackage == nil {
		return nil
	}
	pkg := o.opts.NewPackage(r.target)
	policy := retry.RetryConfig{
		MaxRetries:      o.cfg.DependentPackage.MaxAttempts,
		InitialInterval: o.cfg.DependentPackage.Interval(),
		Multiplier:      1,
	}

	err := retry.Retry(ctx, policy, func(attempt int) error {
		if pkg.Installed() {
			return nil
		}
		logging.Info("Running dependent package", "run_id", r.id, "attempt", attempt)

		if err := pkg.Execute(); err != nil {
			if errors.Is(err, platform.ErrCancelledByUser) {
				return err
			}
			return retry.Permanent(err)
		}
		if !pkg.Exists() {
			o.opts.Prompter.Notify(MsgAmaiSosuPrompt)
		}
		if pkg.Installed() {
			return nil
		}
		return errNotInstalled
	})
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf("%s\n Error: %v\n", msgOpenSauceFailed, err)
	o.exception(msg)
	logging.Error("Failed to install dependent package", "run_id", r.id, "error", err)
	o.update(func(s *Status) {
		s.Message = msg
		s.LastError = &Failure{Kind: BestEffortFailure, Step: "dependent package", Err: err}
	})
	return err
}

func (o *Orchestrator) finish(r run, pkgErr error) {
	loader := filepath.Join(r.target, o.cfg.Executable)
	_, statErr := os.Stat(loader)
	loaderFound := statErr == nil

	o.update(func(s *Status) {
		o.committing = false
		s.Phase = PhaseDone
		s.CanInstall = true
		if pkgErr == nil {
			s.Message = MsgFinished
		}
		if loaderFound {
			s.View = ViewLoad
		} else if pkgErr == nil {
			s.Message = MsgLoaderMissing
		}
	})

	logging.LogStructured(logging.LevelInfo, "SPV3 installation finished", map[string]interface{}{
		"run_id":       r.id,
		"target":       r.target,
		"loader_found": loaderFound,
		"package_ok":   pkgErr == nil,
	})
}

// fail ends the commit at the failing step. The user may retry.
func (o *Orchestrator) fail(r run, step string, err error) {
	msg := fmt.Sprintf("%s\n Error: %v\n", msgInstallFailed, err)
	o.exception(msg)
	logging.Error("Installation failed", "run_id", r.id, "step", step, "error", err)

	o.update(func(s *Status) {
		o.committing = false
		s.Message = msg
		s.CanInstall = true
		s.LastError = &Failure{Kind: DeploymentFailure, Step: step, Err: err}
	})
}
