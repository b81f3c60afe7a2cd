package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

type matchScoreFilter struct {
	minimum float64
	enabled bool
	reason  string
}

// NewMatchScore creates a filter that drops jobs scored below minimum.
// A minimum of zero disables it.
func NewMatchScore(minimum float64) Filter {
	f := &matchScoreFilter{minimum: minimum, enabled: minimum > 0}
	if !f.enabled {
		f.reason = "minimum score is not set"
	}
	return f
}

func (f *matchScoreFilter) Name() string { return "match_score" }

func (f *matchScoreFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *matchScoreFilter) IsEnabled() bool { return f.enabled }

func (f *matchScoreFilter) Validate(*Config) error {
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum match score must be between 0 and 100, got %v", f.minimum)
	}
	return nil
}

func (f *matchScoreFilter) Apply(_ context.Context, deps Deps, jobs []scoutjar.Job) ([]scoutjar.Job, Step, error) {
	initial := len(jobs)
	kept, excluded := exclude(jobs, func(job scoutjar.Job) bool {
		return job.MatchScore < f.minimum
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding jobs below minimum match score",
			zap.Strings("excluded_jobs", excluded),
			zap.Float64("minimum", f.minimum),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

func (f *matchScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"minimum": strconv.FormatFloat(f.minimum, 'f', -1, 64)},
	}
}
