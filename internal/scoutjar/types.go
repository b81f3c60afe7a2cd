package scoutjar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a server-assigned identifier. The backend emits some ids as JSON
// numbers and others as strings; both decode to the same ID.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers so the backend sees the
// same type it produced.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if isNumeric(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func isNumeric(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Number accepts JSON numbers and numeric strings, which is how the record
// API serialises NUMERIC columns.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*n = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(f)
	return nil
}

type ProfileMode string

const (
	ModeActive  ProfileMode = "active"
	ModePassive ProfileMode = "passive"
)

// ParseProfileMode returns the mode named by s, or false for anything else.
func ParseProfileMode(s string) (ProfileMode, bool) {
	switch ProfileMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeActive:
		return ModeActive, true
	case ModePassive:
		return ModePassive, true
	default:
		return "", false
	}
}

type User struct {
	UserID   ID     `json:"user_id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

type Talent struct {
	TalentID        ID          `json:"talent_id"`
	UserID          ID          `json:"user_id"`
	Bio             string      `json:"bio,omitempty"`
	Resume          string      `json:"resume,omitempty"`
	Skills          []string    `json:"skills,omitempty"`
	Experience      string      `json:"experience,omitempty"`
	Education       string      `json:"education,omitempty"`
	DesiredSalary   Number      `json:"desired_salary,omitempty"`
	Location        string      `json:"location,omitempty"`
	WorkPreferences string      `json:"work_preferences,omitempty"`
	EmploymentType  string      `json:"employment_type,omitempty"`
	Availability    string      `json:"availability,omitempty"`
	ProfileMode     ProfileMode `json:"profile_mode,omitempty"`
}

type LoginResult struct {
	User   *User   `json:"user"`
	Talent *Talent `json:"talent"`
}

// Job is a job candidate produced by a match fetch or the applied-jobs list.
type Job struct {
	JobID          ID       `json:"job_id" mapstructure:"job_id"`
	JobTitle       string   `json:"job_title" mapstructure:"job_title"`
	JobDescription string   `json:"job_description,omitempty" mapstructure:"job_description"`
	RequiredSkills []string `json:"required_skills,omitempty" mapstructure:"required_skills"`
	MatchScore     float64  `json:"match_score" mapstructure:"match_score"`
	RecruiterID    ID       `json:"recruiter_id,omitempty" mapstructure:"recruiter_id"`
}

type ApplicantCount struct {
	JobID          ID  `json:"job_id" mapstructure:"job_id"`
	ApplicantCount int `json:"applicant_count" mapstructure:"applicant_count"`
}

// Counts turns the applicant-count list into a lookup by job id.
func Counts(list []ApplicantCount) map[ID]int {
	counts := make(map[ID]int, len(list))
	for _, c := range list {
		counts[c.JobID] = c.ApplicantCount
	}
	return counts
}

type Message struct {
	MessageID   ID        `json:"message_id"`
	SenderID    ID        `json:"sender_id"`
	RecipientID ID        `json:"recipient_id"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`
}

type SentMessage struct {
	MessageID ID        `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

type RecruiterInfo struct {
	RecruiterID  ID     `json:"recruiter_id,omitempty"`
	FullName     string `json:"full_name"`
	Company      string `json:"company,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Email        string `json:"email,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// ProfileUpdate carries the editable talent fields.
type ProfileUpdate struct {
	TalentID        ID       `json:"talent_id" validate:"required"`
	Bio             string   `json:"bio"`
	Resume          string   `json:"resume"`
	Skills          []string `json:"skills"`
	Experience      string   `json:"experience" validate:"omitempty,oneof=Senior Intermediate Junior"`
	Education       string   `json:"education"`
	WorkPreferences string   `json:"work_preferences" validate:"omitempty,oneof=Remote Hybrid On-site"`
	DesiredSalary   float64  `json:"desired_salary" validate:"gte=0"`
	Location        string   `json:"location"`
	EmploymentType  string   `json:"employment_type" validate:"omitempty,oneof=Full-time Part-time Contract Freelancer Internship"`
	Availability    string   `json:"availability"`
}

// ProfileUpdateFrom seeds an update with the current talent record.
func ProfileUpdateFrom(t *Talent) ProfileUpdate {
	if t == nil {
		return ProfileUpdate{}
	}
	return ProfileUpdate{
		TalentID:        t.TalentID,
		Bio:             t.Bio,
		Resume:          t.Resume,
		Skills:          append([]string(nil), t.Skills...),
		Experience:      t.Experience,
		Education:       t.Education,
		WorkPreferences: t.WorkPreferences,
		DesiredSalary:   float64(t.DesiredSalary),
		Location:        t.Location,
		EmploymentType:  t.EmploymentType,
		Availability:    t.Availability,
	}
}

const DefaultMatchThreshold = 80

// PassivePreferences are the criteria the matching service uses while the
// talent is in passive mode.
type PassivePreferences struct {
	TalentID            ID       `json:"talent_id" validate:"required"`
	SalaryMin           Number   `json:"salary_min" validate:"gte=0"`
	SalaryMax           Number   `json:"salary_max" validate:"gte=0"`
	DreamCompanies      []string `json:"dream_companies"`
	MatchThreshold      int      `json:"match_threshold" validate:"gte=0,lte=100"`
	RemotePreference    bool     `json:"remote_preference"`
	PreferredIndustries []string `json:"preferred_industries"`
	PreferredRoles      []string `json:"preferred_roles"`
}

func DefaultPreferences(talentID ID) *PassivePreferences {
	return &PassivePreferences{
		TalentID:         talentID,
		MatchThreshold:   DefaultMatchThreshold,
		RemotePreference: true,
	}
}
