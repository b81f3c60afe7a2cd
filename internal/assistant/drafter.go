// Package assistant drafts a first message to a recruiter with Gemini.
// Matching and ranking stay on the server; this package only writes text.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

type Drafter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewDrafter(generator contentGenerator, log *zap.Logger, maxLogLength int) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Drafter{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// talentPayload is the subset of the profile sent to the model. Contact
// details stay local.
type talentPayload struct {
	Skills          []string `json:"skills,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	Education       string   `json:"education,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	WorkPreferences string   `json:"work_preferences,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty"`
	Availability    string   `json:"availability,omitempty"`
}

type recruiterPayload struct {
	FullName     string `json:"full_name,omitempty"`
	Company      string `json:"company,omitempty"`
	Organization string `json:"organization,omitempty"`
}

func (d *Drafter) Draft(ctx context.Context, talent *scoutjar.Talent, job scoutjar.Job, recruiter *scoutjar.RecruiterInfo) (string, error) {
	if talent == nil {
		return "", errors.New("talent profile is required")
	}
	if job.JobID.IsZero() && strings.TrimSpace(job.JobTitle) == "" {
		return "", errors.New("job is required")
	}

	talentJSON, err := json.MarshalIndent(talentPayload{
		Skills:          talent.Skills,
		Experience:      talent.Experience,
		Education:       talent.Education,
		Bio:             talent.Bio,
		WorkPreferences: talent.WorkPreferences,
		EmploymentType:  talent.EmploymentType,
		Availability:    talent.Availability,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal talent payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	var rp recruiterPayload
	if recruiter != nil {
		rp = recruiterPayload{FullName: recruiter.FullName, Company: recruiter.Company, Organization: recruiter.Organization}
	}
	recruiterJSON, err := json.MarshalIndent(rp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal recruiter payload: %w", err)
	}

	prompt := buildPrompt(string(talentJSON), string(jobJSON), string(recruiterJSON))
	jobID := zap.String(logger.FieldJobID, job.JobID.String())

	d.logger.Debug("gemini generate content request",
		jobID,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, d.maxLogLen)),
	)

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	d.logger.Debug("gemini generate content response",
		jobID,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, d.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(talentJSON, jobJSON, recruiterJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate:\n{{TALENT_JSON}}\n\nRole:\n{{JOB_JSON}}\n\nRecruiter:\n{{RECRUITER_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{TALENT_JSON}}", talentJSON)
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", jobJSON)
	prompt = strings.ReplaceAll(prompt, "{{RECRUITER_JSON}}", recruiterJSON)
	return prompt
}

// parseResponse accepts the requested JSON shape and falls back to the raw
// text when the model answers in prose.
func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		text := strings.TrimSpace(cleaned)
		if text == "" {
			return "", errors.New("empty draft")
		}
		return text, nil
	}

	message := coerceString(data["message"])
	if message == "" {
		return "", fmt.Errorf("parse gemini response: missing message")
	}
	return message, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
