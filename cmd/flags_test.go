package cmd

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/scoutjar/scoutjar-talent/internal/export"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

func TestApplyProfileFlagsOnlyChangesGivenFlags(t *testing.T) {
	flags := pflag.NewFlagSet("update", pflag.ContinueOnError)
	flags.AddFlagSet(profileUpdateCmd.Flags())

	if err := flags.Parse([]string{"--bio", "Backend engineer", "--skills", "Go, go ,Postgres", "--desired-salary", "120000"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	update := scoutjar.ProfileUpdate{
		TalentID: "5",
		Location: "Berlin",
		Bio:      "old",
	}
	if err := applyProfileFlags(flags, &update); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if update.Bio != "Backend engineer" {
		t.Fatalf("bio = %q", update.Bio)
	}
	if update.Location != "Berlin" {
		t.Fatalf("location changed to %q", update.Location)
	}
	if !reflect.DeepEqual(update.Skills, []string{"Go", "Postgres"}) {
		t.Fatalf("skills = %#v", update.Skills)
	}
	if update.DesiredSalary != 120000 {
		t.Fatalf("desired salary = %v", update.DesiredSalary)
	}
}

func TestApplyPreferenceFlags(t *testing.T) {
	flags := pflag.NewFlagSet("preferences", pflag.ContinueOnError)
	flags.AddFlagSet(settingsPreferencesCmd.Flags())

	if err := flags.Parse([]string{"--salary-min", "50000", "--remote=false", "--roles", "Backend, SRE"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	prefs := scoutjar.DefaultPreferences("5")
	if err := applyPreferenceFlags(flags, prefs); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if prefs.SalaryMin != 50000 {
		t.Fatalf("salary min = %v", prefs.SalaryMin)
	}
	if prefs.RemotePreference {
		t.Fatal("remote preference should be off")
	}
	if prefs.MatchThreshold != scoutjar.DefaultMatchThreshold {
		t.Fatalf("match threshold = %d", prefs.MatchThreshold)
	}
	if !reflect.DeepEqual(prefs.PreferredRoles, []string{"Backend", "SRE"}) {
		t.Fatalf("roles = %#v", prefs.PreferredRoles)
	}
}

func TestPrintApplied(t *testing.T) {
	var out bytes.Buffer
	printApplied(&out, nil)
	if !strings.Contains(out.String(), "not applied") {
		t.Fatalf("unexpected empty output: %q", out.String())
	}

	out.Reset()
	printApplied(&out, []export.Row{{JobID: "7", JobTitle: "Go Developer", Applicants: 3, Recruiter: "Dana", Company: "Acme"}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out.String())
	}
	for _, want := range []string{"7", "Go Developer", "3", "Dana", "Acme"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row %q misses %q", lines[1], want)
		}
	}
}

func TestPrintJobRoundsMatchScore(t *testing.T) {
	var out bytes.Buffer
	printJob(&out, scoutjar.Job{JobID: "7", JobTitle: "Go Developer", MatchScore: 86.6}, 4,
		&scoutjar.RecruiterInfo{FullName: "Dana", Organization: "Acme"})

	got := out.String()
	for _, want := range []string{"Go Developer  [87% match]", "applicants: 4", "recruiter: Dana (Acme)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q misses %q", got, want)
		}
	}
}
