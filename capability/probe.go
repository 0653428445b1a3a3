package capability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/probelab/panelprobe/host"
)

// ProbeError records why an availability probe degraded to StatusError. It is
// never returned to callers; ProbeAvailability always resolves to a status.
// It exists so the failure reason can be logged with structure.
type ProbeError struct {
	ArgErr   error
	NoArgErr error
}

func (e *ProbeError) Error() string {
	if e.ArgErr != nil && e.NoArgErr != nil {
		return fmt.Sprintf("availability check failed with args (%v) and without (%v)", e.ArgErr, e.NoArgErr)
	}
	if e.NoArgErr != nil {
		return fmt.Sprintf("availability check failed: %v", e.NoArgErr)
	}
	return "availability check failed"
}

// ProbeAvailability normalizes a capability's readiness. It never fails:
// every outcome, including host-side throws and panics in the boundary layer,
// resolves to one of the enumerated statuses.
//
// The probe is two-phase. When args are supplied the check is called with
// them first; a throw there is logged and recovered by retrying with no
// arguments, because hosts have disagreed across revisions about which
// capabilities accept probe arguments. Only when no call succeeds does the
// probe report StatusError: with args supplied that signals a configuration
// mismatch, without them there is simply no recoverable path left.
func (r *Registry) ProbeAvailability(ctx context.Context, handle host.Handle, args host.Args) (status Status) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Availability probe panicked", "panic", rec)
			status = StatusError
		}
	}()

	if handle == nil {
		return StatusUnavailable
	}
	if !handle.HasAvailability(ctx) {
		return StatusUnknownMethods
	}

	var (
		result   host.Result
		resolved bool
		probeErr ProbeError
	)

	if args != nil {
		res, err := handle.Availability(ctx, args)
		if err != nil {
			probeErr.ArgErr = err
			r.logger.Warn("Availability check with args failed, retrying without",
				"error", err)
		} else {
			result = res
			resolved = true
		}
	}

	if !resolved {
		res, err := handle.Availability(ctx, nil)
		if err != nil {
			probeErr.NoArgErr = err
			r.logger.Warn("Availability probe failed", "error", probeErr.Error())
			return StatusError
		}
		result = res
	}

	return normalizeResult(result, r.logger)
}

// normalizeResult maps a host availability response onto the status
// enumeration. Plain tokens pass through unchanged so newer host revisions
// keep working; structured objects are inspected for an "available" field.
func normalizeResult(res host.Result, logger *slog.Logger) Status {
	if res.Token != "" {
		return Status(res.Token)
	}
	if res.Object != nil {
		if v, ok := res.Object["available"].(string); ok && v != "" {
			return Status(v)
		}
		return StatusAvailableObject
	}
	logger.Warn("Availability check returned nothing usable")
	return StatusError
}
