package bootstrap

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/feed"
	"github.com/scoutjar/scoutjar-talent/internal/filtering"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/session"
)

type fakeCore struct {
	mu          sync.Mutex
	profileMode scoutjar.ProfileMode
	profileErr  error
	applied     []scoutjar.Job
	appliedErr  error
	counts      []scoutjar.ApplicantCount
	countsErr   error
	calls       atomic.Int32
}

func (c *fakeCore) TalentProfile(_ context.Context, userID scoutjar.ID) (*scoutjar.Talent, error) {
	c.calls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profileErr != nil {
		return nil, c.profileErr
	}
	return &scoutjar.Talent{UserID: userID, ProfileMode: c.profileMode}, nil
}

func (c *fakeCore) AppliedJobs(context.Context, scoutjar.ID) ([]scoutjar.Job, error) {
	c.calls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied, c.appliedErr
}

func (c *fakeCore) ApplicantCounts(context.Context) ([]scoutjar.ApplicantCount, error) {
	c.calls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts, c.countsErr
}

type fakeMatching struct {
	mu      sync.Mutex
	jobs    []scoutjar.Job
	err     error
	active  atomic.Int32
	passive atomic.Int32
	gate    chan struct{}
}

func (m *fakeMatching) result() ([]scoutjar.Job, error) {
	m.mu.Lock()
	jobs, err, gate := m.jobs, m.err, m.gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return jobs, err
}

func (m *fakeMatching) ActiveMatches(context.Context, scoutjar.ID) ([]scoutjar.Job, error) {
	m.active.Add(1)
	return m.result()
}

func (m *fakeMatching) PassiveMatches(context.Context, scoutjar.ID) ([]scoutjar.Job, error) {
	m.passive.Add(1)
	return m.result()
}

type fixture struct {
	core     *fakeCore
	matching *fakeMatching
	store    *session.FileStore
	session  *session.Session
	feed     *feed.Feed
	counts   *feed.Counts
	boot     *Bootstrapper
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		core:     &fakeCore{profileErr: errors.New("not reachable")},
		matching: &fakeMatching{},
		store:    session.NewFileStore(afero.NewMemMapFs(), "/session.json"),
		counts:   &feed.Counts{},
	}
	f.session = session.New(f.store, zap.NewNop())
	f.feed = feed.New(nil, zap.NewNop())
	f.boot = New(Deps{
		Core:     f.core,
		Matching: f.matching,
		Session:  f.session,
		Feed:     f.feed,
		Counts:   f.counts,
		Logger:   zap.NewNop(),
	})
	return f
}

func (f *fixture) withFilters(cfg *filtering.Config) {
	f.boot = New(Deps{
		Core:     f.core,
		Matching: f.matching,
		Session:  f.session,
		Feed:     f.feed,
		Counts:   f.counts,
		Logger:   zap.NewNop(),
		Filters:  cfg,
	})
}

func (f *fixture) signIn(t *testing.T, mode scoutjar.ProfileMode) {
	t.Helper()
	_, err := f.session.Mutate(context.Background(), func(st *session.State) error {
		st.User = &scoutjar.User{UserID: "7"}
		st.Talent = &scoutjar.Talent{TalentID: "42", UserID: "7", ProfileMode: mode}
		return nil
	})
	require.NoError(t, err)
}

func TestRunIdleWithoutTalent(t *testing.T) {
	f := newFixture(t)

	res := f.boot.Run(context.Background())

	assert.True(t, res.Idle)
	assert.Zero(t, f.core.calls.Load())
	assert.Zero(t, f.matching.active.Load()+f.matching.passive.Load())
}

func TestRunActiveModeByDefault(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "")
	f.matching.jobs = []scoutjar.Job{{JobID: "5"}, {JobID: "6"}}
	f.core.counts = []scoutjar.ApplicantCount{{JobID: "5", ApplicantCount: 3}}

	res := f.boot.Run(context.Background())

	assert.Equal(t, scoutjar.ModeActive, res.Mode)
	assert.Equal(t, int32(1), f.matching.active.Load())
	assert.Zero(t, f.matching.passive.Load())
	assert.Equal(t, 2, res.Jobs)
	assert.Equal(t, 3, f.counts.Count("5"))

	stored, ok, err := f.store.Get(context.Background(), session.KeyProfileMode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "active", stored)
}

func TestRunPublishesApplicantCounts(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "")
	f.matching.jobs = []scoutjar.Job{{JobID: "5", JobTitle: "Go Developer"}}
	f.core.counts = []scoutjar.ApplicantCount{{JobID: "5", ApplicantCount: 3}}

	res := f.boot.Run(context.Background())

	require.NoError(t, res.CountsErr)
	assert.Equal(t, 1, res.Counts)

	current, ok := f.feed.Current()
	require.True(t, ok)
	assert.Equal(t, 3, f.boot.Counts().Count(current.JobID))
	assert.Equal(t, 3, f.boot.Counts().Count("5"))
	assert.Equal(t, 0, f.boot.Counts().Count("6"))
}

func TestRunUsesStoredTalentMode(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, scoutjar.ModePassive)

	res := f.boot.Run(context.Background())

	assert.Equal(t, scoutjar.ModePassive, res.Mode)
	assert.Equal(t, int32(1), f.matching.passive.Load())
	assert.Zero(t, f.matching.active.Load())
}

func TestRunServerModeWins(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, scoutjar.ModeActive)
	f.core.profileErr = nil
	f.core.profileMode = scoutjar.ModePassive

	res := f.boot.Run(context.Background())

	assert.Equal(t, scoutjar.ModePassive, res.Mode)
	assert.Equal(t, int32(1), f.matching.passive.Load())

	st := f.session.Snapshot()
	assert.Equal(t, scoutjar.ModePassive, st.ProfileMode)
	assert.Equal(t, scoutjar.ModePassive, st.Talent.ProfileMode)
}

func TestRunFailureKeepsPreviousValues(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "")
	f.matching.jobs = []scoutjar.Job{{JobID: "5"}}
	f.core.counts = []scoutjar.ApplicantCount{{JobID: "5", ApplicantCount: 3}}
	f.core.applied = []scoutjar.Job{{JobID: "9"}}

	f.boot.Run(context.Background())

	f.matching.err = errors.New("matching down")
	f.core.countsErr = errors.New("core down")
	f.core.appliedErr = errors.New("core down")

	res := f.boot.Run(context.Background())

	assert.Error(t, res.JobsErr)
	assert.Error(t, res.CountsErr)
	assert.Error(t, res.AppliedErr)
	assert.Equal(t, 1, res.Jobs)
	assert.Equal(t, 3, f.counts.Count("5"))
	assert.Len(t, f.boot.Applied(), 1)
}

func TestRunKeepsAppliedJobsByDefault(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "")
	f.matching.jobs = []scoutjar.Job{{JobID: "5"}, {JobID: "9"}}
	f.core.applied = []scoutjar.Job{{JobID: "9"}}

	res := f.boot.Run(context.Background())

	assert.Equal(t, 2, res.Jobs)
	assert.Equal(t, f.matching.jobs, f.feed.Jobs())
	assert.Len(t, f.boot.Applied(), 1)
}

func TestRunExcludesAppliedJobsWhenConfigured(t *testing.T) {
	f := newFixture(t)
	f.withFilters(&filtering.Config{ExcludeApplied: true})
	f.signIn(t, "")
	f.matching.jobs = []scoutjar.Job{{JobID: "5"}, {JobID: "9"}}
	f.core.applied = []scoutjar.Job{{JobID: "9"}}

	res := f.boot.Run(context.Background())

	assert.Equal(t, 1, res.Jobs)
	current, ok := f.feed.Current()
	require.True(t, ok)
	assert.Equal(t, scoutjar.ID("5"), current.JobID)
}

func TestRunDiscardsStaleGeneration(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "")

	gate := make(chan struct{})
	f.matching.jobs = []scoutjar.Job{{JobID: "old"}}
	f.matching.gate = gate

	first := make(chan Result, 1)
	go func() { first <- f.boot.Run(context.Background()) }()

	require.Eventually(t, func() bool { return f.matching.active.Load() == 1 }, time.Second, 5*time.Millisecond)

	f.matching.mu.Lock()
	f.matching.jobs = []scoutjar.Job{{JobID: "new"}}
	f.matching.gate = nil
	f.matching.mu.Unlock()

	second := f.boot.Run(context.Background())
	require.False(t, second.Stale)

	close(gate)
	stale := <-first

	assert.True(t, stale.Stale)
	assert.Less(t, stale.Generation, second.Generation)

	current, ok := f.feed.Current()
	require.True(t, ok)
	assert.Equal(t, scoutjar.ID("new"), current.JobID)
}
