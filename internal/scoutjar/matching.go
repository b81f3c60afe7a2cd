package scoutjar

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
)

const (
	passiveMatchesPath      = "/passive-matches/"
	recruiterInfoPath       = "/recruiter-info/"
	getPreferencesPath      = "/get-passive-preferences"
	savePreferencesPath     = "/save-passive-preferences"
	uploadResumePath        = "/upload-resume"
	resumeFileField         = "file"
	matchesResponseFieldKey = "matches"
)

type matchesResponse struct {
	Matches []any `json:"matches"`
}

// ActiveMatches runs an on-demand match for the talent.
func (m *Matching) ActiveMatches(ctx context.Context, talentID ID) ([]Job, error) {
	path := m.ActiveMatchPath
	if path == "" {
		path = ActiveMatchPath
	}

	var resp matchesResponse
	if err := m.postJSON(ctx, path, map[string]ID{"talent_id": talentID}, &resp); err != nil {
		return nil, err
	}

	return decodeMatches(resp)
}

// PassiveMatches returns the jobs matched against stored passive preferences.
func (m *Matching) PassiveMatches(ctx context.Context, talentID ID) ([]Job, error) {
	var resp matchesResponse
	if err := m.getJSON(ctx, passiveMatchesPath+url.PathEscape(talentID.String()), nil, &resp); err != nil {
		return nil, err
	}

	return decodeMatches(resp)
}

func decodeMatches(resp matchesResponse) ([]Job, error) {
	if resp.Matches == nil {
		return nil, fmt.Errorf("%w: missing %q field", ErrMalformedResponse, matchesResponseFieldKey)
	}

	jobs := make([]Job, 0, len(resp.Matches))
	if err := decodeItems(resp.Matches, &jobs); err != nil {
		return nil, fmt.Errorf("matches: %w", err)
	}

	return jobs, nil
}

func (m *Matching) RecruiterInfo(ctx context.Context, jobID ID) (*RecruiterInfo, error) {
	var info RecruiterInfo
	if err := m.getJSON(ctx, recruiterInfoPath+url.PathEscape(jobID.String()), nil, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// PassivePreferences returns the stored preferences, or the defaults when
// the talent has none yet.
func (m *Matching) PassivePreferences(ctx context.Context, talentID ID) (*PassivePreferences, error) {
	var resp struct {
		Data *PassivePreferences `json:"data"`
	}
	if err := m.postJSON(ctx, getPreferencesPath, map[string]ID{"talent_id": talentID}, &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return DefaultPreferences(talentID), nil
	}

	if resp.Data.TalentID.IsZero() {
		resp.Data.TalentID = talentID
	}

	return resp.Data, nil
}

func (m *Matching) SavePassivePreferences(ctx context.Context, prefs PassivePreferences) error {
	return m.postJSON(ctx, savePreferencesPath, prefs, nil)
}

func (m *Matching) UploadResume(ctx context.Context, talentID ID, filename string, file io.Reader) error {
	fields := map[string]string{"talent_id": talentID.String()}

	return m.postMultipart(ctx, uploadResumePath, fields, resumeFileField, filepath.Base(filename), file)
}
