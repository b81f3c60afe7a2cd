package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

// Filter represents a single filtering step applied to job candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, jobs []scoutjar.Job) ([]scoutjar.Job, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	// Applied is the talent's applied-jobs list from the same refresh.
	Applied []scoutjar.Job
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeApplied    bool     `mapstructure:"exclude-applied"`
	MinimumMatchScore float64  `mapstructure:"minimum-match-score"`
	ExcludeRecruiters []string `mapstructure:"exclude-recruiters"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Steps builds the pipeline for cfg. A nil cfg yields every step disabled,
// so matches pass through unchanged.
func Steps(cfg *Config) []Filter {
	if cfg == nil {
		cfg = &Config{}
	}

	return []Filter{
		NewAppliedHistory(cfg.ExcludeApplied),
		NewMatchScore(cfg.MinimumMatchScore),
		NewRecruiters(cfg.ExcludeRecruiters),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns what is left.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, jobs []scoutjar.Job) ([]scoutjar.Job, error) {
	log := logger.WithFields(deps.Logger)
	deps.Logger = log

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			log.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		jobs = next
	}

	return jobs, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// exclude returns the jobs for which drop is false, plus the ids it removed.
// The input slice is not modified.
func exclude(jobs []scoutjar.Job, drop func(scoutjar.Job) bool) ([]scoutjar.Job, []string) {
	kept := make([]scoutjar.Job, 0, len(jobs))
	var excluded []string
	for _, job := range jobs {
		if drop(job) {
			excluded = append(excluded, job.JobID.String())
			continue
		}
		kept = append(kept, job)
	}
	return kept, excluded
}
