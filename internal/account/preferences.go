package account

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

var ErrSalaryRange = errors.New("salary_max must not be below salary_min")

// Preferences returns the signed-in talent's passive preferences, or the
// defaults when none are stored.
func (s *Service) Preferences(ctx context.Context) (*scoutjar.PassivePreferences, error) {
	st, err := s.signedIn()
	if err != nil {
		return nil, err
	}
	return s.matching.PassivePreferences(ctx, st.TalentID())
}

func (s *Service) SavePreferences(ctx context.Context, prefs scoutjar.PassivePreferences) (notice.Notice, error) {
	st, err := s.signedIn()
	if err != nil {
		return notice.Notice{Title: notice.TitleError, Message: notice.MessageNotSignedIn}, err
	}

	prefs.TalentID = st.TalentID()
	prefs.DreamCompanies = NormalizeSkills(prefs.DreamCompanies)
	prefs.PreferredIndustries = NormalizeSkills(prefs.PreferredIndustries)
	prefs.PreferredRoles = NormalizeSkills(prefs.PreferredRoles)

	if err := s.validate.Struct(prefs); err != nil {
		return notice.Notice{Title: notice.TitleError, Message: validationMessage(err)}, err
	}
	if prefs.SalaryMin > 0 && prefs.SalaryMax > 0 && prefs.SalaryMax < prefs.SalaryMin {
		return notice.Notice{Title: notice.TitleError, Message: ErrSalaryRange.Error()}, ErrSalaryRange
	}

	if err := s.matching.SavePassivePreferences(ctx, prefs); err != nil {
		s.logger.Warn("saving passive preferences failed", zap.Error(err))
		return notice.Notice{Title: notice.TitleError, Message: scoutjar.UserMessage(err)}, err
	}

	return notice.Notice{Title: notice.TitleSaved, Message: "Passive preferences updated."}, nil
}
