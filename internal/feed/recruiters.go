package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

// RecruiterSource looks up the recruiter behind a job. *scoutjar.Matching
// implements it.
type RecruiterSource interface {
	RecruiterInfo(ctx context.Context, jobID scoutjar.ID) (*scoutjar.RecruiterInfo, error)
}

// Recruiters caches recruiter details per job for the lifetime of the
// process. Entries are never invalidated and failures are not cached.
type Recruiters struct {
	source RecruiterSource
	logger *zap.Logger
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[scoutjar.ID]scoutjar.RecruiterInfo
}

func NewRecruiters(source RecruiterSource, log *zap.Logger) *Recruiters {
	return &Recruiters{
		source: source,
		logger: logger.WithFields(log),
		cache:  make(map[scoutjar.ID]scoutjar.RecruiterInfo),
	}
}

func (r *Recruiters) Get(ctx context.Context, jobID scoutjar.ID) (scoutjar.RecruiterInfo, error) {
	if info, ok := r.Cached(jobID); ok {
		return info, nil
	}

	v, err, _ := r.group.Do(jobID.String(), func() (any, error) {
		if info, ok := r.Cached(jobID); ok {
			return info, nil
		}

		info, err := r.source.RecruiterInfo(ctx, jobID)
		if err == nil && info == nil {
			err = scoutjar.ErrNotFound
		}
		if err != nil {
			r.logger.Warn("recruiter lookup failed",
				zap.String(logger.FieldJobID, jobID.String()),
				zap.Error(err),
			)
			return scoutjar.RecruiterInfo{}, err
		}

		r.mu.Lock()
		r.cache[jobID] = *info
		r.mu.Unlock()

		return *info, nil
	})
	if err != nil {
		return scoutjar.RecruiterInfo{}, err
	}

	return v.(scoutjar.RecruiterInfo), nil
}

func (r *Recruiters) Cached(jobID scoutjar.ID) (scoutjar.RecruiterInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.cache[jobID]
	return info, ok
}
