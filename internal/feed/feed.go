// Package feed holds the in-memory job feed the talent swipes through,
// together with the applicant counts and recruiter details shown beside it.
package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

// Applier submits a job application. *scoutjar.Core implements it.
type Applier interface {
	Apply(ctx context.Context, talentID, jobID scoutjar.ID) error
}

// Outcome is the result of an apply or reject.
type Outcome struct {
	Job     scoutjar.Job
	Removed bool
	Notice  notice.Notice
}

// Feed is an ordered list of job candidates and the position of the one
// currently displayed. It is safe for concurrent use.
type Feed struct {
	applier Applier
	logger  *zap.Logger

	mu    sync.Mutex
	jobs  []scoutjar.Job
	index int
}

func New(applier Applier, log *zap.Logger) *Feed {
	return &Feed{
		applier: applier,
		logger:  logger.WithFields(log),
	}
}

// Load replaces the list. The position resets to the first job when it no
// longer fits or the feed was empty before.
func (f *Feed) Load(jobs []scoutjar.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wasEmpty := len(f.jobs) == 0
	f.jobs = append([]scoutjar.Job(nil), jobs...)

	if f.index >= len(f.jobs) || (wasEmpty && len(f.jobs) > 0) {
		f.index = 0
	}
}

// Apply submits job and removes it on success. A conflict keeps the job in
// the feed and any other failure leaves the feed unchanged.
func (f *Feed) Apply(ctx context.Context, talentID scoutjar.ID, job scoutjar.Job) Outcome {
	log := f.logger.With(logger.TalentFields(talentID.String(), job.JobID.String())...)

	err := f.applier.Apply(ctx, talentID, job.JobID)
	switch {
	case err == nil:
		f.remove(job.JobID)
		log.Info("applied to job")
		return Outcome{
			Job:     job,
			Removed: true,
			Notice:  notice.New(notice.TitleApplied, "You applied to %q", job.JobTitle),
		}
	case errors.Is(err, scoutjar.ErrAlreadyApplied):
		log.Info("job already applied")
		return Outcome{
			Job:    job,
			Notice: notice.New(notice.TitleAlreadyApplied, "You have already applied to %q", job.JobTitle),
		}
	default:
		log.Warn("apply failed", zap.Error(err))
		return Outcome{
			Job:    job,
			Notice: notice.Notice{Title: notice.TitleFailedToApply, Message: scoutjar.UserMessage(err)},
		}
	}
}

// Reject drops job from the feed without contacting the server. Rejecting
// a job that is no longer present does nothing.
func (f *Feed) Reject(job scoutjar.Job) Outcome {
	removed := f.remove(job.JobID)
	if removed {
		f.logger.Debug("rejected job", logger.TalentFields("", job.JobID.String())...)
	}

	return Outcome{
		Job:     job,
		Removed: removed,
		Notice:  notice.New(notice.TitleRejected, "You rejected %q", job.JobTitle),
	}
}

// remove deletes the job with id and keeps the current slot in range.
func (f *Feed) remove(id scoutjar.ID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	pos := -1
	for i, job := range f.jobs {
		if job.JobID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}

	f.jobs = append(f.jobs[:pos:pos], f.jobs[pos+1:]...)

	if pos < f.index {
		f.index--
	}
	if f.index >= len(f.jobs) {
		f.index = len(f.jobs) - 1
	}
	if f.index < 0 {
		f.index = 0
	}

	return true
}

func (f *Feed) Next() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.index+1 >= len(f.jobs) {
		return false
	}
	f.index++
	return true
}

func (f *Feed) Prev() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.index == 0 {
		return false
	}
	f.index--
	return true
}

// Current returns the displayed job, or false when the feed is empty.
func (f *Feed) Current() (scoutjar.Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.jobs) == 0 {
		return scoutjar.Job{}, false
	}
	return f.jobs[f.index], true
}

func (f *Feed) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs) == 0
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

// Jobs returns a copy of the list.
func (f *Feed) Jobs() []scoutjar.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scoutjar.Job(nil), f.jobs...)
}

func (f *Feed) Index() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}
