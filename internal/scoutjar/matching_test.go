package scoutjar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestMatching(t *testing.T, handler http.HandlerFunc) *Matching {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewMatching(zap.NewNop(), srv.URL)
}

func TestActiveMatchesUsesConfiguredPath(t *testing.T) {
	m := newTestMatching(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != SemanticMatchPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"matches":[{"job_id":1,"job_title":"Backend","match_score":"0.87"}]}`)
	})
	m.ActiveMatchPath = SemanticMatchPath

	jobs, err := m.ActiveMatches(context.Background(), "42")
	if err != nil {
		t.Fatalf("active matches: %v", err)
	}
	if len(jobs) != 1 || jobs[0].MatchScore != 0.87 {
		t.Fatalf("unexpected jobs %+v", jobs)
	}
}

func TestMatchesWithoutFieldIsMalformed(t *testing.T) {
	m := newTestMatching(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[]}`)
	})

	_, err := m.PassiveMatches(context.Background(), "42")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestEmptyMatchesIsNotAnError(t *testing.T) {
	m := newTestMatching(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != passiveMatchesPath+"42" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"matches":[]}`)
	})

	jobs, err := m.PassiveMatches(context.Background(), "42")
	if err != nil {
		t.Fatalf("passive matches: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
}

func TestPassivePreferencesDefaults(t *testing.T) {
	m := newTestMatching(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	})

	prefs, err := m.PassivePreferences(context.Background(), "42")
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if prefs.TalentID != "42" || prefs.MatchThreshold != DefaultMatchThreshold || !prefs.RemotePreference {
		t.Fatalf("unexpected defaults %+v", prefs)
	}
}

func TestPassivePreferencesStored(t *testing.T) {
	m := newTestMatching(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"talent_id":42,"salary_min":"50000","salary_max":90000,"match_threshold":65,"dream_companies":["Acme"]}}`)
	})

	prefs, err := m.PassivePreferences(context.Background(), "42")
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if prefs.SalaryMin != 50000 || prefs.SalaryMax != 90000 || prefs.MatchThreshold != 65 {
		t.Fatalf("unexpected preferences %+v", prefs)
	}
	if len(prefs.DreamCompanies) != 1 || prefs.DreamCompanies[0] != "Acme" {
		t.Fatalf("unexpected dream companies %v", prefs.DreamCompanies)
	}
}

func TestUploadResumeMultipart(t *testing.T) {
	m := newTestMatching(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("talent_id") != "42" {
			t.Fatalf("unexpected talent id %q", r.FormValue("talent_id"))
		}

		file, header, err := r.FormFile(resumeFileField)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		if header.Filename != "cv.pdf" || string(data) != "%PDF" {
			t.Fatalf("unexpected upload %q %q", header.Filename, data)
		}
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	})

	if err := m.UploadResume(context.Background(), "42", "/tmp/docs/cv.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("upload: %v", err)
	}
}
