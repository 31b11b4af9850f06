package install

import (
	"github.com/HaloSPV3/spv3/pkg/logging"
	"github.com/HaloSPV3/spv3/pkg/patch"
	"github.com/HaloSPV3/spv3/pkg/validate"
)

// Activate queues the DRM and key check bypass, enables installation and
// shows reason above the SSD advisory. It is the only code that sets the bit.
// While a commit runs only the bit is queued.
func (o *Orchestrator) Activate(reason string) {
	o.mu.Lock()
	changed := !o.flags.Has(patch.DisableDrmAndKeyChecks)
	o.flags = o.flags.With(patch.DisableDrmAndKeyChecks)
	flags := o.flags
	o.mu.Unlock()

	if changed && o.opts.Settings != nil {
		if err := o.opts.Settings.SetPatchFlags(flags); err != nil {
			logging.Warn("Failed to persist queued patches", "flags", flags.String(), "error", err)
		}
	}
	logging.Info("Activated DRM bypass", "reason", reason, "changed", changed)

	o.updateIdle(func(s *Status) {
		s.Message = reason + "\n" + validate.SSDAdvisory
		s.CanInstall = true
		s.View = ViewMain
		s.Phase = PhaseAwaitingCommit
		s.LastError = nil
	})
}
