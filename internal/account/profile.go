package account

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/session"
	"github.com/scoutjar/scoutjar-talent/internal/utils"
)

// ParseSkills splits a comma separated skills field.
func ParseSkills(s string) []string {
	return NormalizeSkills(utils.SplitList(s))
}

// NormalizeSkills trims entries, converts them to NFC, and drops blanks and
// case-insensitive duplicates while keeping order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = norm.NFC.String(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

// SaveProfile posts update for the signed-in talent. The server's record
// replaces the stored talent.
func (s *Service) SaveProfile(ctx context.Context, update scoutjar.ProfileUpdate) (notice.Notice, error) {
	st, err := s.signedIn()
	if err != nil {
		return notice.Notice{Title: notice.TitleError, Message: notice.MessageNotSignedIn}, err
	}

	update.TalentID = st.TalentID()
	update.Skills = NormalizeSkills(update.Skills)

	if err := s.validate.Struct(update); err != nil {
		return notice.Notice{Title: notice.TitleError, Message: validationMessage(err)}, err
	}

	log := s.logger.With(logger.TalentFields(update.TalentID.String(), "")...)

	updated, err := s.core.UpdateProfile(ctx, update)
	if err != nil {
		log.Warn("updating profile failed", zap.Error(err))
		return notice.Notice{Title: notice.TitleError, Message: scoutjar.UserMessage(err)}, err
	}

	_, err = s.session.Mutate(ctx, func(next *session.State) error {
		if updated.ProfileMode == "" && next.Talent != nil {
			updated.ProfileMode = next.Talent.ProfileMode
		}
		if updated.UserID.IsZero() && next.Talent != nil {
			updated.UserID = next.Talent.UserID
		}
		next.Talent = updated
		return nil
	})
	if err != nil {
		log.Warn("storing updated profile failed", zap.Error(err))
		return notice.Notice{Title: notice.TitleError, Message: err.Error()}, err
	}

	log.Info("profile updated")
	return notice.Notice{Title: notice.TitleSaved, Message: "Profile updated."}, nil
}

// SetMode stores mode locally first, then tells the server. The stored
// talent's profile_mode only changes once the server accepts it.
func (s *Service) SetMode(ctx context.Context, mode scoutjar.ProfileMode) (notice.Notice, error) {
	st, err := s.signedIn()
	if err != nil {
		return notice.Notice{Title: notice.TitleError, Message: notice.MessageNotSignedIn}, err
	}

	parsed, ok := scoutjar.ParseProfileMode(string(mode))
	if !ok {
		err := ErrInvalidMode
		return notice.Notice{Title: notice.TitleModeFailed, Message: err.Error()}, err
	}

	log := s.logger.With(logger.TalentFields(st.TalentID().String(), "")...)

	_, err = s.session.Mutate(ctx, func(next *session.State) error {
		next.ProfileMode = parsed
		return nil
	})
	if err != nil {
		log.Warn("storing profile mode failed", zap.Error(err))
		return notice.Notice{Title: notice.TitleModeFailed, Message: err.Error()}, err
	}

	if err := s.core.UpdateProfileMode(ctx, st.TalentID(), parsed); err != nil {
		log.Warn("updating profile mode failed", zap.Error(err))
		return notice.Notice{Title: notice.TitleModeFailed, Message: scoutjar.UserMessage(err)}, err
	}

	_, err = s.session.Mutate(ctx, func(next *session.State) error {
		if next.Talent != nil {
			next.Talent.ProfileMode = parsed
		}
		return nil
	})
	if err != nil {
		log.Warn("storing talent profile mode failed", zap.Error(err))
	}

	log.Info("profile mode updated", zap.String("mode", string(parsed)))
	return notice.New(notice.TitleSaved, "Profile mode set to %s.", parsed), nil
}
