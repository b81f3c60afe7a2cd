// Package bootstrap re-synchronises the session and the job feed with the
// backend every time the feed is shown.
package bootstrap

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scoutjar/scoutjar-talent/internal/feed"
	"github.com/scoutjar/scoutjar-talent/internal/filtering"
	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/session"
)

// CoreAPI is the part of *scoutjar.Core the bootstrapper reads from.
type CoreAPI interface {
	TalentProfile(ctx context.Context, userID scoutjar.ID) (*scoutjar.Talent, error)
	AppliedJobs(ctx context.Context, talentID scoutjar.ID) ([]scoutjar.Job, error)
	ApplicantCounts(ctx context.Context) ([]scoutjar.ApplicantCount, error)
}

// MatchingAPI is the part of *scoutjar.Matching the bootstrapper reads from.
type MatchingAPI interface {
	ActiveMatches(ctx context.Context, talentID scoutjar.ID) ([]scoutjar.Job, error)
	PassiveMatches(ctx context.Context, talentID scoutjar.ID) ([]scoutjar.Job, error)
}

type Deps struct {
	Core     CoreAPI
	Matching MatchingAPI
	Session  *session.Session
	Feed     *feed.Feed
	Counts   *feed.Counts
	Logger   *zap.Logger
	Filters  *filtering.Config
	// Steps builds the filter pipeline for each run. Defaults to filtering.Steps.
	Steps func(*filtering.Config) []filtering.Filter
}

// Result summarises one run. Errors are informational; a failed region
// keeps its previous value.
type Result struct {
	Idle       bool
	Stale      bool
	Generation uint64
	Mode       scoutjar.ProfileMode

	Jobs    int
	Applied int
	Counts  int

	JobsErr    error
	AppliedErr error
	CountsErr  error
}

type Bootstrapper struct {
	deps   Deps
	logger *zap.Logger
	gen    atomic.Uint64

	mu      sync.Mutex
	applied []scoutjar.Job
}

func New(deps Deps) *Bootstrapper {
	if deps.Steps == nil {
		deps.Steps = filtering.Steps
	}
	if deps.Counts == nil {
		deps.Counts = &feed.Counts{}
	}
	return &Bootstrapper{
		deps:   deps,
		logger: logger.WithFields(deps.Logger),
	}
}

// Generation returns the latest generation handed out.
func (b *Bootstrapper) Generation() uint64 { return b.gen.Load() }

// Applied returns the last successfully fetched applied-jobs list.
func (b *Bootstrapper) Applied() []scoutjar.Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]scoutjar.Job(nil), b.applied...)
}

func (b *Bootstrapper) Counts() *feed.Counts { return b.deps.Counts }

// Run reloads the session and, when a talent is signed in, refetches jobs,
// applied jobs and applicant counts concurrently. Results from a run that
// has been superseded by a newer one are discarded. Run never fails.
func (b *Bootstrapper) Run(ctx context.Context) Result {
	st, err := b.deps.Session.Load(ctx)
	if err != nil {
		b.logger.Warn("loading session failed, using in-memory state", zap.Error(err))
		st = b.deps.Session.Snapshot()
	}

	if !st.SignedIn() {
		b.logger.Debug("no talent in session, staying idle")
		return Result{Idle: true}
	}

	gen := b.gen.Add(1)
	talentID := st.TalentID()
	log := b.logger.With(zap.Uint64(logger.FieldGeneration, gen))
	log = log.With(logger.TalentFields(talentID.String(), "")...)

	mode := b.resolveMode(ctx, log, st)
	result := Result{Generation: gen, Mode: mode}

	var (
		jobs    []scoutjar.Job
		applied []scoutjar.Job
		counts  []scoutjar.ApplicantCount
		g       errgroup.Group
	)

	g.Go(func() error {
		if mode == scoutjar.ModePassive {
			jobs, result.JobsErr = b.deps.Matching.PassiveMatches(ctx, talentID)
		} else {
			jobs, result.JobsErr = b.deps.Matching.ActiveMatches(ctx, talentID)
		}
		if result.JobsErr != nil {
			log.Warn("fetching jobs failed", zap.String("mode", string(mode)), zap.Error(result.JobsErr))
		}
		return nil
	})
	g.Go(func() error {
		applied, result.AppliedErr = b.deps.Core.AppliedJobs(ctx, talentID)
		if result.AppliedErr != nil {
			log.Warn("fetching applied jobs failed", zap.Error(result.AppliedErr))
		}
		return nil
	})
	g.Go(func() error {
		counts, result.CountsErr = b.deps.Core.ApplicantCounts(ctx)
		if result.CountsErr != nil {
			log.Warn("fetching applicant counts failed", zap.Error(result.CountsErr))
		}
		return nil
	})
	_ = g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	if latest := b.gen.Load(); gen != latest {
		log.Info("discarding stale bootstrap results", zap.Uint64("latest_generation", latest))
		result.Stale = true
		return result
	}

	if result.AppliedErr == nil {
		b.applied = applied
	}
	result.Applied = len(b.applied)

	if result.CountsErr == nil {
		b.deps.Counts.Replace(counts)
	}
	result.Counts = b.deps.Counts.Len()

	if result.JobsErr == nil && b.deps.Feed != nil {
		b.deps.Feed.Load(b.filter(ctx, log, jobs))
	}
	if b.deps.Feed != nil {
		result.Jobs = b.deps.Feed.Len()
	}

	log.Info("bootstrap finished",
		zap.String("mode", string(mode)),
		zap.Int("jobs", result.Jobs),
		zap.Int("applied", result.Applied),
		zap.Int("counts", result.Counts),
	)

	return result
}

// resolveMode picks the effective profile mode and writes it back to the
// session. Order: server record, stored talent, stored mode key, active.
func (b *Bootstrapper) resolveMode(ctx context.Context, log *zap.Logger, st session.State) scoutjar.ProfileMode {
	var mode scoutjar.ProfileMode

	if userID := st.UserID(); !userID.IsZero() {
		profile, err := b.deps.Core.TalentProfile(ctx, userID)
		switch {
		case err != nil:
			log.Warn("fetching talent profile failed", zap.Error(err))
		case profile != nil:
			if parsed, ok := scoutjar.ParseProfileMode(string(profile.ProfileMode)); ok {
				mode = parsed
			}
		}
	}

	if mode == "" && st.Talent != nil {
		if parsed, ok := scoutjar.ParseProfileMode(string(st.Talent.ProfileMode)); ok {
			mode = parsed
		}
	}
	if mode == "" {
		mode = st.ProfileMode
	}
	if mode == "" {
		mode = scoutjar.ModeActive
	}

	_, err := b.deps.Session.Mutate(ctx, func(s *session.State) error {
		s.ProfileMode = mode
		if s.Talent != nil {
			s.Talent.ProfileMode = mode
		}
		return nil
	})
	if err != nil {
		log.Warn("persisting profile mode failed", zap.Error(err))
	}

	return mode
}

func (b *Bootstrapper) filter(ctx context.Context, log *zap.Logger, jobs []scoutjar.Job) []scoutjar.Job {
	deps := filtering.Deps{Logger: log, Applied: b.applied}

	filtered, err := filtering.Run(ctx, b.deps.Filters, deps, b.deps.Steps(b.deps.Filters), jobs)
	if err != nil {
		log.Warn("filtering jobs failed, showing unfiltered list", zap.Error(err))
		return jobs
	}

	return filtered
}
