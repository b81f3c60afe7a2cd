package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

// AppliedHistoryName names the step that drops already-applied jobs.
const AppliedHistoryName = "applied_history"

type appliedHistoryFilter struct {
	enabled bool
	reason  string
}

// NewAppliedHistory creates a filter that removes jobs the talent already applied to.
func NewAppliedHistory(enabled bool) Filter {
	f := &appliedHistoryFilter{enabled: enabled}
	if !enabled {
		f.reason = "disabled in config"
	}
	return f
}

func (f *appliedHistoryFilter) Name() string { return AppliedHistoryName }

func (f *appliedHistoryFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *appliedHistoryFilter) IsEnabled() bool { return f.enabled }

func (f *appliedHistoryFilter) Validate(*Config) error { return nil }

func (f *appliedHistoryFilter) Apply(_ context.Context, deps Deps, jobs []scoutjar.Job) ([]scoutjar.Job, Step, error) {
	initial := len(jobs)
	if len(deps.Applied) == 0 {
		return jobs, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	applied := make(map[scoutjar.ID]struct{}, len(deps.Applied))
	for _, job := range deps.Applied {
		applied[job.JobID] = struct{}{}
	}

	kept, excluded := exclude(jobs, func(job scoutjar.Job) bool {
		_, ok := applied[job.JobID]
		return ok
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding jobs already applied to",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

func (f *appliedHistoryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"exclude_applied": strconv.FormatBool(f.enabled)},
	}
}
