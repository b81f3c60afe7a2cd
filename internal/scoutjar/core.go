package scoutjar

import (
	"context"
	"fmt"
	"net/url"
	"sort"
)

const (
	loginPath             = "/login-talent"
	talentProfilePath     = "/get-talent-profile/"
	appliedJobsPath       = "/job-applicants/talent/"
	applicantCountsPath   = "/job-applicants/job-counts"
	applyPath             = "/job-applicants/apply"
	messageHistoryPath    = "/messages/history"
	sendMessagePath       = "/messages/send"
	updateProfilePath     = "/talent-profiles/update-talent-profile"
	updateProfileModePath = "/talent-profiles/update-profile-mode"
	recruiterProfilePath  = "/recruiter-profile"
)

func (c *Core) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result LoginResult
	if err := c.postJSON(ctx, loginPath, body, &result); err != nil {
		return nil, err
	}

	if result.User == nil && result.Talent == nil {
		return nil, fmt.Errorf("login: %w: missing user and talent", ErrMalformedResponse)
	}

	return &result, nil
}

// TalentProfile fetches the server copy of the talent record owned by userID.
func (c *Core) TalentProfile(ctx context.Context, userID ID) (*Talent, error) {
	var talent Talent
	if err := c.getJSON(ctx, talentProfilePath+url.PathEscape(userID.String()), nil, &talent); err != nil {
		return nil, err
	}

	return &talent, nil
}

func (c *Core) AppliedJobs(ctx context.Context, talentID ID) ([]Job, error) {
	var items []any
	if err := c.getJSON(ctx, appliedJobsPath+url.PathEscape(talentID.String()), nil, &items); err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(items))
	if err := decodeItems(items, &jobs); err != nil {
		return nil, fmt.Errorf("applied jobs: %w", err)
	}

	return jobs, nil
}

func (c *Core) ApplicantCounts(ctx context.Context) ([]ApplicantCount, error) {
	var items []any
	if err := c.getJSON(ctx, applicantCountsPath, nil, &items); err != nil {
		return nil, err
	}

	counts := make([]ApplicantCount, 0, len(items))
	if err := decodeItems(items, &counts); err != nil {
		return nil, fmt.Errorf("applicant counts: %w", err)
	}

	return counts, nil
}

// Apply submits an application. A 409 answer satisfies
// errors.Is(err, ErrAlreadyApplied).
func (c *Core) Apply(ctx context.Context, talentID, jobID ID) error {
	body := map[string]ID{
		"talent_id": talentID,
		"job_id":    jobID,
	}

	return c.postJSON(ctx, applyPath, body, nil)
}

// Messages returns the thread between the two users ordered by sent_at.
func (c *Core) Messages(ctx context.Context, senderID, recipientID ID) ([]Message, error) {
	q := url.Values{}
	q.Set("sender_id", senderID.String())
	q.Set("recipient_id", recipientID.String())

	var messages []Message
	if err := c.getJSON(ctx, messageHistoryPath, q, &messages); err != nil {
		return nil, err
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SentAt.Before(messages[j].SentAt)
	})

	return messages, nil
}

func (c *Core) SendMessage(ctx context.Context, senderID, recipientID ID, content string) (*SentMessage, error) {
	body := map[string]any{
		"sender_id":    senderID,
		"recipient_id": recipientID,
		"content":      content,
	}

	var sent SentMessage
	if err := c.postJSON(ctx, sendMessagePath, body, &sent); err != nil {
		return nil, err
	}

	if sent.MessageID.IsZero() {
		return nil, fmt.Errorf("send message: %w: missing message_id", ErrMalformedResponse)
	}

	return &sent, nil
}

// UpdateProfile saves the editable fields and returns the server's record.
func (c *Core) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Talent, error) {
	var talent Talent
	if err := c.postJSON(ctx, updateProfilePath, update, &talent); err != nil {
		return nil, err
	}

	if talent.TalentID.IsZero() {
		talent.TalentID = update.TalentID
	}

	return &talent, nil
}

func (c *Core) UpdateProfileMode(ctx context.Context, talentID ID, mode ProfileMode) error {
	body := map[string]any{
		"talent_id":    talentID,
		"profile_mode": mode,
	}

	return c.postJSON(ctx, updateProfileModePath, body, nil)
}

func (c *Core) RecruiterProfile(ctx context.Context, recruiterID ID) (*RecruiterInfo, error) {
	body := map[string]ID{"recruiter_id": recruiterID}

	var resp struct {
		Recruiter *RecruiterInfo `json:"recruiter"`
	}
	if err := c.postJSON(ctx, recruiterProfilePath, body, &resp); err != nil {
		return nil, err
	}

	if resp.Recruiter == nil {
		return nil, fmt.Errorf("recruiter %s: %w", recruiterID, ErrNotFound)
	}

	if resp.Recruiter.RecruiterID.IsZero() {
		resp.Recruiter.RecruiterID = recruiterID
	}

	return resp.Recruiter, nil
}
