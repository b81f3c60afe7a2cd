package filtering

import (
	"context"
	"sort"
	"strings"

	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/utils"
)

type recruitersFilter struct {
	recruiters map[scoutjar.ID]struct{}
	enabled    bool
	reason     string
}

// NewRecruiters creates a filter that removes jobs posted by the given recruiters.
func NewRecruiters(ids []string) Filter {
	set := make(map[scoutjar.ID]struct{})
	for _, id := range ids {
		for _, part := range utils.SplitList(id) {
			set[scoutjar.ID(part)] = struct{}{}
		}
	}

	f := &recruitersFilter{recruiters: set, enabled: len(set) > 0}
	if !f.enabled {
		f.reason = "no recruiters excluded"
	}
	return f
}

func (f *recruitersFilter) Name() string { return "recruiters" }

func (f *recruitersFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *recruitersFilter) IsEnabled() bool { return f.enabled }

func (f *recruitersFilter) Validate(*Config) error { return nil }

func (f *recruitersFilter) Apply(_ context.Context, _ Deps, jobs []scoutjar.Job) ([]scoutjar.Job, Step, error) {
	initial := len(jobs)
	kept, excluded := exclude(jobs, func(job scoutjar.Job) bool {
		_, ok := f.recruiters[job.RecruiterID]
		return ok
	})

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

func (f *recruitersFilter) Status() Status {
	ids := make([]string, 0, len(f.recruiters))
	for id := range f.recruiters {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"recruiters": strings.Join(ids, ",")},
	}
}
